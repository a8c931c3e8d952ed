package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestParseTransactionType_IgnoraMayusculas(t *testing.T) {
	tests := []struct {
		in   string
		want entity.TransactionType
		ok   bool
	}{
		{"IN", entity.TransactionIN, true},
		{"out", entity.TransactionOUT, true},
		{" Adjustment ", entity.TransactionADJUSTMENT, true},
		{"TRANSFER", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := entity.ParseTransactionType(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSignedChange(t *testing.T) {
	assert.Equal(t, int64(4), entity.TransactionIN.SignedChange(4))
	assert.Equal(t, int64(-4), entity.TransactionOUT.SignedChange(4))
	// ADJUSTMENT se suma tal cual, igual que IN
	assert.Equal(t, int64(4), entity.TransactionADJUSTMENT.SignedChange(4))
}

func TestTimestamps_MilisegundosUTC(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	ts := time.Date(2024, 3, 1, 7, 30, 15, 123456789, loc)

	assert.Equal(t, "2024-03-01T12:30:15.123Z", entity.FormatTimestamp(ts))

	parsed, err := entity.ParseTimestamp("2024-03-01T07:30:15.123456-05:00")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(entity.TruncateTimestamp(ts)))
	assert.Equal(t, time.UTC, parsed.Location())

	_, err = entity.ParseTimestamp("ayer")
	assert.Error(t, err)
}
