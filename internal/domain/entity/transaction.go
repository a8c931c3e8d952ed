package entity

import (
	"strings"
	"time"
)

// TransactionType tipo de movimiento del ledger.
type TransactionType string

// Tipos de transacción.
const (
	TransactionIN         TransactionType = "IN"         // entrada
	TransactionOUT        TransactionType = "OUT"        // salida
	TransactionADJUSTMENT TransactionType = "ADJUSTMENT" // ajuste
)

// MaxQuantity tope de unidades por producto o movimiento (debe coincidir con los tags lte de los DTO).
const MaxQuantity int64 = 1_000_000_000_000

// InitialStockReason razón de la transacción semilla creada junto con el producto.
const InitialStockReason = "Initial Stock"

// ParseTransactionType acepta el tipo sin distinguir mayúsculas. ok=false si no es IN, OUT ni ADJUSTMENT.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TransactionIN, TransactionOUT, TransactionADJUSTMENT:
		return t, true
	}
	return "", false
}

// SignedChange convierte una cantidad positiva en el cambio con signo que se guarda.
// OUT resta; IN y ADJUSTMENT suman la cantidad tal cual.
func (t TransactionType) SignedChange(quantity int64) int64 {
	if t == TransactionOUT {
		return -quantity
	}
	return quantity
}

// Transaction movimiento inmutable (write-once) de un SKU.
type Transaction struct {
	ID             string
	SKU            string
	Type           TransactionType
	QuantityChange int64
	Reason         string
	PerformedBy    string
	Timestamp      time.Time
	Proof          *Proof
}
