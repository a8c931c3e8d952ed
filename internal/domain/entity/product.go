package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product ficha inmutable de un SKU. Se registra una sola vez; no hay update ni delete.
type Product struct {
	SKU             string
	Name            string
	Description     string
	Price           decimal.Decimal
	Category        string
	Supplier        string
	InitialQuantity int64
	CreatedAt       time.Time
	Proof           *Proof // prueba del ledger para el registro leído o escrito
}
