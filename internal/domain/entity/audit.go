package entity

import "time"

// Resultados posibles de una entrada de auditoría.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEntry registro append-only de una acción sobre el inventario.
type AuditEntry struct {
	ID         string
	Action     string // product.create, transaction.record, user.register, auth.login
	Resource   string
	ResourceID string
	Actor      string
	Outcome    string
	Metadata   map[string]string
	Timestamp  time.Time
}

// Acciones auditadas.
const (
	ActionProductCreate     = "product.create"
	ActionTransactionRecord = "transaction.record"
	ActionUserRegister      = "user.register"
	ActionAuthLogin         = "auth.login"
)
