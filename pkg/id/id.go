// Package id genera identificadores TypeID ("prefijo_sufijo", UUIDv7 ordenable por tiempo).
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifica la entidad codificada en el TypeID.
type Prefix string

// Prefijos usados por el ledger.
const (
	PrefixTransaction Prefix = "txn"
	PrefixAudit       Prefix = "audit"
)

// New genera un ID nuevo con el prefijo dado. Un prefijo inválido es un error de programación.
func New(prefix Prefix) string {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: prefijo inválido %q: %v", prefix, err))
	}
	return tid.String()
}

// NewTransactionID id para una transacción del ledger.
func NewTransactionID() string { return New(PrefixTransaction) }

// NewAuditID id para una entrada de auditoría.
func NewAuditID() string { return New(PrefixAudit) }

// Validate comprueba que s sea un TypeID con el prefijo esperado.
func Validate(s string, expected Prefix) error {
	tid, err := typeid.Parse(s)
	if err != nil {
		return fmt.Errorf("id: parse %q: %w", s, err)
	}
	if Prefix(tid.Prefix()) != expected {
		return fmt.Errorf("id: se esperaba prefijo %q, llegó %q", expected, tid.Prefix())
	}
	return nil
}
