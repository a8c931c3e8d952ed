package dto

import "github.com/shopspring/decimal"

// CreateProductRequest entrada para registrar un producto con su stock inicial.
type CreateProductRequest struct {
	SKU         string           `json:"sku" validate:"trimmed_required,max=128"`
	Name        string           `json:"name" validate:"trimmed_required,max=255"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"required,decimal_gte0"`
	Quantity    int64            `json:"quantity" validate:"gte=0,lte=1000000000000"`
	Category    string           `json:"category" validate:"max=128"`
	Supplier    string           `json:"supplier" validate:"max=255"`
}

// ProductResponse ficha del producto.
type ProductResponse struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category"`
	Supplier        string          `json:"supplier"`
	InitialQuantity int64           `json:"initial_quantity"`
	CreatedAt       string          `json:"created_at"`
}

// ProductCreatedResponse resultado de addProduct.
type ProductCreatedResponse struct {
	Product           ProductResponse `json:"product"`
	Proof             ProofResponse   `json:"proof"`
	SeedTransactionID string          `json:"seed_transaction_id"`
}

// ProductDetailsResponse resultado de getProductDetails.
type ProductDetailsResponse struct {
	Product                  ProductResponse `json:"product"`
	CurrentStock             int64           `json:"current_stock"`
	LastTransactionTimestamp string          `json:"last_transaction_timestamp"`
	TransactionCount         int             `json:"transaction_count"`
}

// HistoryEntry transacción con el saldo acumulado y su referencia de integridad.
type HistoryEntry struct {
	TransactionID  string        `json:"transaction_id"`
	Type           string        `json:"type"`
	QuantityChange int64         `json:"quantity_change"`
	Reason         string        `json:"reason"`
	PerformedBy    string        `json:"performed_by"`
	Timestamp      string        `json:"timestamp"`
	RunningBalance int64         `json:"running_balance"`
	Integrity      ProofResponse `json:"integrity"`
}

// HistoryResponse resultado de getHistory.
type HistoryResponse struct {
	SKU          string         `json:"sku"`
	CurrentStock int64          `json:"current_stock"`
	Transactions []HistoryEntry `json:"transactions"`
}

// SnapshotItem stock actual de un producto.
type SnapshotItem struct {
	SKU                      string `json:"sku"`
	Name                     string `json:"name"`
	CurrentStock             int64  `json:"current_stock"`
	LastTransactionTimestamp string `json:"last_transaction_timestamp"`
}

// SnapshotResponse resultado de getSnapshot, ordenado por SKU.
type SnapshotResponse struct {
	GeneratedAt string         `json:"generated_at"`
	Total       int            `json:"total"`
	Items       []SnapshotItem `json:"items"`
}

// TimeTravelResponse resultado de timeTravel.
type TimeTravelResponse struct {
	Product                    ProductResponse `json:"product"`
	AsOf                       string          `json:"as_of"`
	HistoricalStockAtTimestamp int64           `json:"historical_stock_at_timestamp"`
	LastTransactionTimestamp   string          `json:"last_transaction_timestamp"`
	TransactionsIncluded       int             `json:"transactions_included"`
}
