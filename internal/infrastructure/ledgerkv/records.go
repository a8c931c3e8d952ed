// Package ledgerkv implementa los repositorios del dominio sobre una sesión del ledger:
// cada entidad es un documento JSON bajo una clave con prefijo.
package ledgerkv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Prefijos del keyspace.
const (
	productPrefix = "product:"
	txPrefix      = "tx:"
	txIDPrefix    = "txid:"
	userPrefix    = "user:"
	auditPrefix   = "audit:"
)

func productKey(sku string) string  { return productPrefix + sku }
func txSKUPrefix(sku string) string { return txPrefix + sku + ":" }
func txKey(sku, id string) string   { return txSKUPrefix(sku) + id }
func txIDKey(id string) string      { return txIDPrefix + id }
func userKey(email string) string   { return userPrefix + strings.ToLower(email) }
func auditKey(id string) string     { return auditPrefix + id }

type productRecord struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Category        string          `json:"category,omitempty"`
	Supplier        string          `json:"supplier,omitempty"`
	InitialQuantity int64           `json:"initial_quantity"`
	CreatedAt       string          `json:"created_at"`
}

type transactionRecord struct {
	ID             string `json:"transaction_id"`
	SKU            string `json:"sku"`
	Type           string `json:"type"`
	QuantityChange int64  `json:"quantity_change"`
	Reason         string `json:"reason"`
	PerformedBy    string `json:"performed_by"`
	Timestamp      string `json:"timestamp"`
}

type userRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type auditRecord struct {
	ID         string            `json:"id"`
	Action     string            `json:"action"`
	Resource   string            `json:"resource"`
	ResourceID string            `json:"resource_id"`
	Actor      string            `json:"actor"`
	Outcome    string            `json:"outcome"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

func encodeProduct(p *entity.Product) ([]byte, error) {
	return json.Marshal(productRecord{
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Category:        p.Category,
		Supplier:        p.Supplier,
		InitialQuantity: p.InitialQuantity,
		CreatedAt:       entity.FormatTimestamp(p.CreatedAt),
	})
}

func decodeProduct(b []byte) (*entity.Product, error) {
	var r productRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.SKU == "" {
		return nil, fmt.Errorf("producto sin sku")
	}
	createdAt, err := entity.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	return &entity.Product{
		SKU:             r.SKU,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		Category:        r.Category,
		Supplier:        r.Supplier,
		InitialQuantity: r.InitialQuantity,
		CreatedAt:       createdAt,
	}, nil
}

func encodeTransaction(tx *entity.Transaction) ([]byte, error) {
	return json.Marshal(transactionRecord{
		ID:             tx.ID,
		SKU:            tx.SKU,
		Type:           string(tx.Type),
		QuantityChange: tx.QuantityChange,
		Reason:         tx.Reason,
		PerformedBy:    tx.PerformedBy,
		Timestamp:      entity.FormatTimestamp(tx.Timestamp),
	})
}

func decodeTransaction(b []byte) (*entity.Transaction, error) {
	var r transactionRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.ID == "" || r.SKU == "" {
		return nil, fmt.Errorf("transacción sin id o sku")
	}
	typ, ok := entity.ParseTransactionType(r.Type)
	if !ok {
		return nil, fmt.Errorf("tipo desconocido %q", r.Type)
	}
	ts, err := entity.ParseTimestamp(r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	return &entity.Transaction{
		ID:             r.ID,
		SKU:            r.SKU,
		Type:           typ,
		QuantityChange: r.QuantityChange,
		Reason:         r.Reason,
		PerformedBy:    r.PerformedBy,
		Timestamp:      ts,
	}, nil
}

func encodeUser(u *entity.User) ([]byte, error) {
	return json.Marshal(userRecord{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         u.Role,
		Status:       u.Status,
		CreatedAt:    entity.FormatTimestamp(u.CreatedAt),
	})
}

func decodeUser(b []byte) (*entity.User, error) {
	var r userRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Email == "" {
		return nil, fmt.Errorf("usuario sin email")
	}
	createdAt, err := entity.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	return &entity.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Role:         r.Role,
		Status:       r.Status,
		CreatedAt:    createdAt,
	}, nil
}

func encodeAudit(a *entity.AuditEntry) ([]byte, error) {
	return json.Marshal(auditRecord{
		ID:         a.ID,
		Action:     a.Action,
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		Actor:      a.Actor,
		Outcome:    a.Outcome,
		Metadata:   a.Metadata,
		Timestamp:  entity.FormatTimestamp(a.Timestamp),
	})
}

func decodeAudit(b []byte) (*entity.AuditEntry, error) {
	var r auditRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	ts, err := entity.ParseTimestamp(r.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	return &entity.AuditEntry{
		ID:         r.ID,
		Action:     r.Action,
		Resource:   r.Resource,
		ResourceID: r.ResourceID,
		Actor:      r.Actor,
		Outcome:    r.Outcome,
		Metadata:   r.Metadata,
		Timestamp:  ts,
	}, nil
}
