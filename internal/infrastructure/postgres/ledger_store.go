package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerstore"
)

var _ repository.LedgerStore = (*LedgerStore)(nil)

// appendLockKey clave del advisory lock que serializa los appends (la cadena es lineal).
const appendLockKey int64 = 0x1ed6e5

// LedgerStore ledger sobre la tabla ledger_entries.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore construye el store con el pool.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Session adquiere una conexión del pool, ejecuta fn y la devuelve al pool siempre.
func (s *LedgerStore) Session(ctx context.Context, fn func(repository.LedgerSession) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return domain.WrapStorage("acquire", err)
	}
	defer conn.Release()
	return fn(&pgSession{conn: conn})
}

func (s *LedgerStore) Ping(ctx context.Context) error {
	return domain.WrapStorage("ping", s.pool.Ping(ctx))
}

func (s *LedgerStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

type pgSession struct {
	conn *pgxpool.Conn
}

// Put inserta la entrada enlazándola con el último hash bajo un advisory lock de transacción.
func (p *pgSession) Put(ctx context.Context, key string, value []byte) (*entity.Proof, error) {
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return nil, domain.WrapStorage("put", fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
		return nil, domain.WrapStorage("put", err)
	}

	prev := ledgerstore.GenesisHash
	err = tx.QueryRow(ctx, `SELECT hash FROM ledger_entries ORDER BY seq DESC LIMIT 1`).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.WrapStorage("put", err)
	}

	hash := ledgerstore.ChainHash(prev, key, value)
	var seq int64
	err = tx.QueryRow(ctx,
		`INSERT INTO ledger_entries (key, value, prev_hash, hash) VALUES ($1, $2, $3, $4) RETURNING seq`,
		key, value, prev, hash,
	).Scan(&seq)
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("hash repetido en la cadena: %w", err)
		}
		return nil, domain.WrapStorage("put", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.WrapStorage("put", fmt.Errorf("commit transaction: %w", err))
	}

	proof := ledgerstore.NewProof(seq, key, value, prev, hash)
	return &proof, nil
}

func (p *pgSession) Get(ctx context.Context, key string) (*repository.KVEntry, error) {
	row := p.conn.QueryRow(ctx,
		`SELECT seq, key, value, prev_hash, hash FROM ledger_entries WHERE key = $1 ORDER BY seq DESC LIMIT 1`, key)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStorage("get", err)
	}
	return &e, nil
}

// Scan última versión de cada clave con el prefijo; el orden (por clave) no forma parte del contrato.
func (p *pgSession) Scan(ctx context.Context, prefix string) ([]repository.KVEntry, error) {
	rows, err := p.conn.Query(ctx,
		`SELECT DISTINCT ON (key) seq, key, value, prev_hash, hash
		   FROM ledger_entries
		  WHERE key LIKE $1
		  ORDER BY key, seq DESC`, likePrefix(prefix))
	if err != nil {
		return nil, domain.WrapStorage("scan", err)
	}
	defer rows.Close()

	var out []repository.KVEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, domain.WrapStorage("scan", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStorage("scan", err)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (repository.KVEntry, error) {
	var (
		seq             int64
		key, prev, hash string
		value           []byte
	)
	if err := row.Scan(&seq, &key, &value, &prev, &hash); err != nil {
		return repository.KVEntry{}, err
	}
	return repository.KVEntry{
		Key:   key,
		Value: value,
		Proof: ledgerstore.NewProof(seq, key, value, prev, hash),
	}, nil
}
