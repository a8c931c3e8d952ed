// Package inventory contiene el fold de proyección de stock (servicio de dominio puro, sin I/O).
package inventory

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Entry transacción anotada con el saldo acumulado tras aplicarla.
type Entry struct {
	Transaction    *entity.Transaction
	RunningBalance int64
}

// Projection resultado de plegar las transacciones de un SKU hasta un corte.
type Projection struct {
	Balance           int64
	LastTransactionAt time.Time // created_at del producto si no hay transacciones incluidas
	Count             int
	Entries           []Entry
}

// Project filtra las transacciones con timestamp <= asOf, las ordena y acumula el saldo.
// No modifica txs. Un asOf cero significa sin corte.
func Project(createdAt time.Time, txs []*entity.Transaction, asOf time.Time) Projection {
	included := make([]*entity.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx == nil {
			continue
		}
		if !asOf.IsZero() && tx.Timestamp.After(asOf) {
			continue
		}
		included = append(included, tx)
	}
	SortTransactions(included)

	p := Projection{
		LastTransactionAt: createdAt,
		Count:             len(included),
		Entries:           make([]Entry, 0, len(included)),
	}
	for _, tx := range included {
		p.Balance += tx.QuantityChange
		p.Entries = append(p.Entries, Entry{Transaction: tx, RunningBalance: p.Balance})
	}
	if n := len(included); n > 0 {
		p.LastTransactionAt = included[n-1].Timestamp
	}
	return p
}

// Apply suma change al saldo; false si el resultado no cabe en int64.
func Apply(balance, change int64) (int64, bool) {
	if change > 0 && balance > math.MaxInt64-change {
		return balance, false
	}
	if change < 0 && balance < math.MinInt64-change {
		return balance, false
	}
	return balance + change, true
}

// SortTransactions orden total: timestamp ascendente, desempate por transaction_id.
func SortTransactions(txs []*entity.Transaction) {
	slices.SortFunc(txs, func(a, b *entity.Transaction) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// NormalizeSKU recorta espacios y normaliza a NFC para que dos grafías del mismo SKU
// no terminen en claves distintas del ledger.
func NormalizeSKU(sku string) string {
	return norm.NFC.String(strings.TrimSpace(sku))
}
