//go:build integration

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Ejecutar con: go test -tags integration ./internal/infrastructure/lock/...

func setupRedis(t *testing.T) *RedisLocker {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisLocker(rdb, 2*time.Second, 5*time.Millisecond, logger.NewNop())
}

func TestRedisLocker_Exclusion(t *testing.T) {
	l := setupRedis(t)
	var inside, violations int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			unlock, err := l.Lock(ctx, "SKU-1")
			require.NoError(t, err)
			defer unlock()
			if atomic.AddInt32(&inside, 1) > 1 {
				atomic.AddInt32(&violations, 1)
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Zero(t, violations)
}

func TestRedisLocker_TimeoutMientrasOtroLoTiene(t *testing.T) {
	l := setupRedis(t)
	unlock, err := l.Lock(context.Background(), "SKU-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "SKU-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_RenuevaMientrasSeSostiene(t *testing.T) {
	l := setupRedis(t)
	unlock, err := l.Lock(context.Background(), "SKU-1")
	require.NoError(t, err)

	// el contendiente espera más que el TTL de 2s: sin renovación obtendría la clave
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = l.Lock(ctx, "SKU-1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	pttl, err := l.rdb.PTTL(context.Background(), l.prefix+"SKU-1").Result()
	require.NoError(t, err)
	assert.Greater(t, pttl, time.Duration(0))

	unlock()
	exists, err := l.rdb.Exists(context.Background(), l.prefix+"SKU-1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "liberar debe borrar la clave y detener la renovación")

	unlock2, err := l.Lock(context.Background(), "SKU-1")
	require.NoError(t, err)
	unlock2()
}
