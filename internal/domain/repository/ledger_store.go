package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// KVEntry par clave/valor leído del ledger junto con su prueba de integridad.
type KVEntry struct {
	Key   string
	Value []byte
	Proof entity.Proof
}

// LedgerSession operaciones sobre una conexión/sesión adquirida del ledger.
// Get devuelve domain.ErrNotFound si la clave no existe; Scan no garantiza orden.
type LedgerSession interface {
	Put(ctx context.Context, key string, value []byte) (*entity.Proof, error)
	Get(ctx context.Context, key string) (*KVEntry, error)
	Scan(ctx context.Context, prefix string) ([]KVEntry, error)
}

// LedgerStore almacén append-only con cadena de hashes.
// Session adquiere la conexión, ejecuta fn y la libera en todos los caminos de salida.
type LedgerStore interface {
	Session(ctx context.Context, fn func(LedgerSession) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
