//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerkv"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/...

func setupStore(t *testing.T) (*postgres.LedgerStore, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("ledger"),
		tcPostgres.WithUsername("ledger"),
		tcPostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, pool))
	// las migraciones se pueden repetir
	require.NoError(t, postgres.Migrate(ctx, pool))

	store := postgres.NewLedgerStore(pool)
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store, pool
}

// ──────────────────────────────────────────────────────────────────────────────
// Store
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerStore_PutGetScan(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	err := store.Session(ctx, func(s repository.LedgerSession) error {
		p1, err := s.Put(ctx, "product:SKU_1", []byte("v1"))
		require.NoError(t, err)
		p2, err := s.Put(ctx, "tx:SKU_1:txn_1", []byte("t1"))
		require.NoError(t, err)
		_, err = s.Put(ctx, "tx:SKUX1:txn_2", []byte("t2"))
		require.NoError(t, err)
		assert.Equal(t, p1.Hash, p2.PrevHash)
		assert.Equal(t, p1.Sequence+1, p2.Sequence)

		got, err := s.Get(ctx, "product:SKU_1")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(got.Value))
		assert.True(t, got.Proof.Verified)

		// una clave repetida agrega una versión nueva; Get devuelve la última
		p4, err := s.Put(ctx, "product:SKU_1", []byte("v2"))
		require.NoError(t, err)
		got, err = s.Get(ctx, "product:SKU_1")
		require.NoError(t, err)
		assert.Equal(t, "v2", string(got.Value))
		assert.Equal(t, p4.Sequence, got.Proof.Sequence)

		_, err = s.Get(ctx, "product:nada")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// "_" no actúa como comodín del LIKE
		entries, err := s.Scan(ctx, "tx:SKU_1:")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "tx:SKU_1:txn_1", entries[0].Key)
		return nil
	})
	require.NoError(t, err)
}

func TestLedgerStore_TablaAppendOnly(t *testing.T) {
	store, pool := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Session(ctx, func(s repository.LedgerSession) error {
		_, err := s.Put(ctx, "product:A", []byte("v"))
		return err
	}))

	_, err := pool.Exec(ctx, `UPDATE ledger_entries SET value = 'x' WHERE key = 'product:A'`)
	assert.ErrorContains(t, err, "append-only")
	_, err = pool.Exec(ctx, `DELETE FROM ledger_entries`)
	assert.ErrorContains(t, err, "append-only")
}

func TestLedgerStore_AppendsConcurrentesNoRompenLaCadena(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Session(ctx, func(s repository.LedgerSession) error {
				_, err := s.Put(ctx, "k:"+string(rune('a'+i)), []byte("v"))
				assert.NoError(t, err)
				return err
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.Session(ctx, func(s repository.LedgerSession) error {
		entries, err := s.Scan(ctx, "k:")
		require.NoError(t, err)
		assert.Len(t, entries, 20)
		seqs := map[int64]bool{}
		for _, e := range entries {
			assert.True(t, e.Proof.Verified)
			assert.False(t, seqs[e.Proof.Sequence], "secuencia repetida")
			seqs[e.Proof.Sequence] = true
		}
		return nil
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario sobre Postgres
// ──────────────────────────────────────────────────────────────────────────────

func TestInventario_FlujoCompletoSobrePostgres(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	log := logger.NewNop()
	uc := inventory.NewUseCase(ledgerkv.NewRunner(store, log), lock.NewLocalLocker(), log)

	price := decimal.RequireFromString("4200.00")
	created, err := uc.AddProduct(ctx, dto.CreateProductRequest{
		SKU: "ARZ-1", Name: "Arroz", Price: &price, Quantity: 10,
	}, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, created.Proof.Verified)

	in, err := uc.RecordTransaction(ctx, dto.RecordTransactionRequest{
		SKU: "ARZ-1", Type: "IN", Quantity: 5, Reason: "compra",
	}, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(15), in.ResultingStock)

	// 20 salidas de 1 concurrentes sobre 15 unidades
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordTransaction(ctx, dto.RecordTransactionRequest{
				SKU: "ARZ-1", Type: "OUT", Quantity: 1, Reason: "venta",
			}, "ana@example.com")
			mu.Lock()
			defer mu.Unlock()
			var insufficient *domain.InsufficientStockError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &insufficient):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 15, ok)
	assert.Equal(t, 5, rejected)

	details, err := uc.GetProductDetails(ctx, "ARZ-1")
	require.NoError(t, err)
	assert.Zero(t, details.CurrentStock)
	assert.Equal(t, 17, details.TransactionCount)

	tt, err := uc.TimeTravel(ctx, "ARZ-1", created.Product.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(10), tt.HistoricalStockAtTimestamp)
	assert.Equal(t, 1, tt.TransactionsIncluded)

	verify, err := uc.VerifyTransaction(ctx, in.Transaction.TransactionID)
	require.NoError(t, err)
	assert.True(t, verify.Verified)
}
