package ledgerstore

import (
	"context"
	"strings"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.LedgerStore = (*MemoryStore)(nil)

type record struct {
	seq      int64
	key      string
	value    []byte
	prevHash string
	hash     string
}

// MemoryStore ledger append-only en memoria. Un Put sobre una clave existente agrega
// una versión nueva; Get y Scan devuelven la última.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []record
	latest  map[string]int // clave -> posición en entries
}

// NewMemoryStore construye un ledger vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: make(map[string]int)}
}

// Session no hay conexión que adquirir; solo respeta la cancelación del contexto.
func (s *MemoryStore) Session(ctx context.Context, fn func(repository.LedgerSession) error) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapStorage("session", err)
	}
	return fn(memorySession{s})
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) Close(context.Context) error { return nil }

// Len cantidad total de entradas (incluye versiones anteriores).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// VerifyChain recorre todo el ledger y devuelve la primera secuencia rota (0 si la cadena es íntegra).
func (s *MemoryStore) VerifyChain() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prev := GenesisHash
	for _, r := range s.entries {
		if r.prevHash != prev || ChainHash(r.prevHash, r.key, r.value) != r.hash {
			return r.seq
		}
		prev = r.hash
	}
	return 0
}

type memorySession struct{ s *MemoryStore }

func (m memorySession) Put(ctx context.Context, key string, value []byte) (*entity.Proof, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStorage("put", err)
	}
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := GenesisHash
	if n := len(s.entries); n > 0 {
		prev = s.entries[n-1].hash
	}
	r := record{
		seq:      int64(len(s.entries)) + 1,
		key:      key,
		value:    append([]byte(nil), value...),
		prevHash: prev,
	}
	r.hash = ChainHash(prev, key, r.value)
	s.entries = append(s.entries, r)
	s.latest[key] = len(s.entries) - 1

	proof := NewProof(r.seq, r.key, r.value, r.prevHash, r.hash)
	return &proof, nil
}

func (m memorySession) Get(ctx context.Context, key string) (*repository.KVEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStorage("get", err)
	}
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.latest[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e := toEntry(s.entries[pos])
	return &e, nil
}

// Scan recorre el índice (mapa), así que el orden es arbitrario.
func (m memorySession) Scan(ctx context.Context, prefix string) ([]repository.KVEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.WrapStorage("scan", err)
	}
	s := m.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []repository.KVEntry
	for key, pos := range s.latest {
		if strings.HasPrefix(key, prefix) {
			out = append(out, toEntry(s.entries[pos]))
		}
	}
	return out, nil
}

func toEntry(r record) repository.KVEntry {
	return repository.KVEntry{
		Key:   r.key,
		Value: append([]byte(nil), r.value...),
		Proof: NewProof(r.seq, r.key, r.value, r.prevHash, r.hash),
	}
}
