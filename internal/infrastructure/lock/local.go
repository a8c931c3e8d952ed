// Package lock serializa las operaciones de un mismo SKU: en proceso con semáforos
// o entre réplicas con Redis.
package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

type keyed struct {
	sem  *semaphore.Weighted
	refs int
}

// LocalLocker un semáforo de peso 1 por clave. Las entradas se liberan cuando nadie las usa.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]*keyed
}

// NewLocalLocker construye el locker en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]*keyed)}
}

// Lock bloquea hasta obtener la clave o hasta que ctx termine. unlock es idempotente.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	k, ok := l.keys[key]
	if !ok {
		k = &keyed{sem: semaphore.NewWeighted(1)}
		l.keys[key] = k
	}
	k.refs++
	l.mu.Unlock()

	if err := k.sem.Acquire(ctx, 1); err != nil {
		l.release(key, k)
		return nil, &domain.StorageError{Op: "lock", Err: err}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			k.sem.Release(1)
			l.release(key, k)
		})
	}, nil
}

func (l *LocalLocker) release(key string, k *keyed) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.keys, key)
	}
}

// size claves vivas; solo para tests.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
