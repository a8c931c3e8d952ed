// Package catalog lee catálogos de productos en XML (UTF-8 o ISO-8859-1) y los
// registra en el ledger.
//
// Formato esperado:
//
//	<catalogo>
//	  <producto sku="CAF-500" precio="12500,50" cantidad="40" categoria="abarrotes" proveedor="Andes">
//	    <nombre>Café molido 500 g</nombre>
//	    <descripcion>Tostión media</descripcion>
//	  </producto>
//	</catalogo>
//
// nombre y descripcion pueden venir también como atributos.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Item producto leído del catálogo con su posición (1-based) para los reportes.
type Item struct {
	Position int
	Request  dto.CreateProductRequest
}

// Parse lee el documento completo. Un valor numérico mal formado invalida el catálogo.
func Parse(r io.Reader) ([]Item, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("catalog: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("catalog: documento sin raíz")
	}

	var items []Item
	for i, el := range root.SelectElements("producto") {
		req, err := toRequest(el)
		if err != nil {
			return nil, fmt.Errorf("catalog: producto %d: %w", i+1, err)
		}
		items = append(items, Item{Position: i + 1, Request: req})
	}
	return items, nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	switch strings.ToUpper(charset) {
	case "ISO-8859-1", "ISO8859-1", "LATIN1":
		return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
	case "WINDOWS-1252", "CP1252":
		return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
	case "", "UTF-8":
		return input, nil
	}
	return nil, fmt.Errorf("codificación no soportada: %s", charset)
}

func toRequest(el *etree.Element) (dto.CreateProductRequest, error) {
	req := dto.CreateProductRequest{
		SKU:         field(el, "sku"),
		Name:        field(el, "nombre"),
		Description: field(el, "descripcion"),
		Category:    field(el, "categoria"),
		Supplier:    field(el, "proveedor"),
	}

	if raw := field(el, "precio"); raw != "" {
		price, err := parsePrice(raw)
		if err != nil {
			return req, fmt.Errorf("precio %q inválido", raw)
		}
		req.Price = &price
	}
	if raw := field(el, "cantidad"); raw != "" {
		qty, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, fmt.Errorf("cantidad %q inválida", raw)
		}
		req.Quantity = qty
	}
	return req, nil
}

// field busca primero el atributo y luego un hijo con el mismo nombre.
func field(el *etree.Element, name string) string {
	if v := el.SelectAttrValue(name, ""); v != "" {
		return strings.TrimSpace(v)
	}
	if child := el.SelectElement(name); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

// parsePrice acepta coma o punto decimal; con ambos presentes el punto es separador de miles.
func parsePrice(raw string) (decimal.Decimal, error) {
	s := raw
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// ProductAdder registra un producto; lo implementa el caso de uso de inventario.
type ProductAdder interface {
	AddProduct(ctx context.Context, in dto.CreateProductRequest, actor string) (*dto.ProductCreatedResponse, error)
}

// Failure producto rechazado durante la carga.
type Failure struct {
	Position int
	SKU      string
	Err      error
}

// Report resultado de una carga.
type Report struct {
	Created    int
	Duplicates int
	Failures   []Failure
}

// Load registra cada producto en orden. Los SKU existentes se cuentan como duplicados
// y los rechazos de validación se reportan sin detener la carga; un error de
// almacenamiento o de contexto la corta.
func Load(ctx context.Context, adder ProductAdder, items []Item, actor string, log *logger.Logger) (Report, error) {
	var rep Report
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		_, err := adder.AddProduct(ctx, it.Request, actor)
		switch {
		case err == nil:
			rep.Created++
		case errors.Is(err, domain.ErrDuplicateSKU):
			rep.Duplicates++
			log.Warn().Int("position", it.Position).Str("sku", it.Request.SKU).Msg("SKU ya registrado, se omite")
		case errors.Is(err, domain.ErrInvalidInput):
			rep.Failures = append(rep.Failures, Failure{Position: it.Position, SKU: it.Request.SKU, Err: err})
			log.Warn().Err(err).Int("position", it.Position).Str("sku", it.Request.SKU).Msg("producto rechazado")
		default:
			return rep, fmt.Errorf("catalog: producto %d (%s): %w", it.Position, it.Request.SKU, err)
		}
	}
	return rep, nil
}
