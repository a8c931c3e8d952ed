// Package pdf genera el reporte PDF del snapshot de inventario.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + aplicación │  Fecha de corte             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Stock | Último movimiento          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Productos / Unidades                              │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// SnapshotReport implementa inventory.SnapshotRenderer usando Maroto v2.
type SnapshotReport struct {
	appName string
}

// NewSnapshotReport construye el generador; appName va en cabecera y metadatos.
func NewSnapshotReport(appName string) *SnapshotReport {
	return &SnapshotReport{appName: appName}
}

// RenderSnapshot genera el PDF y devuelve sus bytes.
func (g *SnapshotReport) RenderSnapshot(_ context.Context, snap *dto.SnapshotResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Snapshot de inventario", true).
		WithAuthor(g.appName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.appName, snap.GeneratedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(snap.Items)...)
	if len(snap.Items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin productos registrados.", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 2}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(snap.Items))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(appName, generatedAt string) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("SNAPSHOT DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(appName, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("Corte (UTC)", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(generatedAt, props.Text{Size: 9, Align: align.Right, Top: 7}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("SKU", 3, align.Left),
		h("Producto", 4, align.Left),
		h("Stock", 2, align.Right),
		h("Último movimiento", 3, align.Right),
	)
}

// tableRows una fila por producto; stock en cero resaltado.
func tableRows(items []dto.SnapshotItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		stock := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if it.CurrentStock <= 0 {
			stock.Style = fontstyle.Bold
			stock.Color = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(it.SKU, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(it.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatUnits(it.CurrentStock), stock)),
			col.New(3).Add(text.New(it.LastTransactionTimestamp, props.Text{
				Size: 7, Align: align.Right, Top: 1, Right: 1, Color: colorGray,
			})),
		))
	}
	return result
}

func totalsRow(items []dto.SnapshotItem) core.Row {
	var units, empty int64
	for _, it := range items {
		units += it.CurrentStock
		if it.CurrentStock <= 0 {
			empty++
		}
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(label("Productos:"), label("Sin stock:"), label("Unidades:")),
		col.New(3).Add(
			value(formatUnits(int64(len(items)))),
			value(formatUnits(empty)),
			value(formatUnits(units)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatUnits inserta puntos de miles. Ej: 1000000 → "1.000.000", -2500 → "-2.500".
func formatUnits(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	l := len(s)
	if l <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
