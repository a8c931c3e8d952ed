package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
)

func TestRenderSnapshot_GeneraPDF(t *testing.T) {
	snap := &dto.SnapshotResponse{
		GeneratedAt: "2024-06-01T10:00:00.000Z",
		Total:       2,
		Items: []dto.SnapshotItem{
			{SKU: "A-1", Name: "Café molido", CurrentStock: 1200, LastTransactionTimestamp: "2024-05-30T08:00:00.000Z"},
			{SKU: "B-2", Name: "Azúcar", CurrentStock: 0, LastTransactionTimestamp: "2024-05-31T08:00:00.000Z"},
		},
	}

	out, err := NewSnapshotReport("inventario-ledger").RenderSnapshot(context.Background(), snap)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderSnapshot_SinProductos(t *testing.T) {
	out, err := NewSnapshotReport("x").RenderSnapshot(context.Background(), &dto.SnapshotResponse{GeneratedAt: "2024-06-01T10:00:00.000Z"})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "0", formatUnits(0))
	assert.Equal(t, "999", formatUnits(999))
	assert.Equal(t, "1.000", formatUnits(1000))
	assert.Equal(t, "1.000.000", formatUnits(1000000))
	assert.Equal(t, "-2.500", formatUnits(-2500))
}
