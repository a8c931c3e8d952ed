package dto

// RecordTransactionRequest entrada para registrar un movimiento. Type sin distinguir mayúsculas.
type RecordTransactionRequest struct {
	SKU      string `json:"sku" validate:"trimmed_required,max=128"`
	Type     string `json:"type" validate:"trimmed_required"`
	Quantity int64  `json:"quantity" validate:"gt=0,lte=1000000000000"`
	Reason   string `json:"reason" validate:"trimmed_required,max=500"`
}

// TransactionResponse transacción del ledger.
type TransactionResponse struct {
	TransactionID  string `json:"transaction_id"`
	SKU            string `json:"sku"`
	Type           string `json:"type"`
	QuantityChange int64  `json:"quantity_change"`
	Reason         string `json:"reason"`
	PerformedBy    string `json:"performed_by"`
	Timestamp      string `json:"timestamp"`
}

// TransactionRecordedResponse resultado de recordTransaction.
type TransactionRecordedResponse struct {
	Transaction    TransactionResponse `json:"transaction"`
	Proof          ProofResponse       `json:"proof"`
	ResultingStock int64               `json:"resulting_stock"`
}

// VerifyTransactionResponse resultado de verifyTransaction.
type VerifyTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Proof       ProofResponse       `json:"proof"`
	Verified    bool                `json:"verified"`
}

// LedgerEvent evento difundido por WebSocket al registrar una transacción.
type LedgerEvent struct {
	Event          string `json:"event"`
	TransactionID  string `json:"transaction_id"`
	SKU            string `json:"sku"`
	Type           string `json:"type"`
	QuantityChange int64  `json:"quantity_change"`
	ResultingStock int64  `json:"resulting_stock"`
	PerformedBy    string `json:"performed_by"`
	Timestamp      string `json:"timestamp"`
}

// Nombres de evento del feed.
const (
	EventProductCreated      = "product.created"
	EventTransactionRecorded = "transaction.recorded"
)
