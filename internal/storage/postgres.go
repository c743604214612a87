package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/vidmark/vidmark/internal/database"
)

// Postgres stores the document as one row of kv_store.
type Postgres struct {
	db  database.DBTX
	key string
}

func NewPostgres(db database.DBTX, rootKey string) *Postgres {
	if rootKey == "" {
		rootKey = DefaultRootKey
	}
	return &Postgres{db: db, key: rootKey}
}

func (p *Postgres) Load(ctx context.Context) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, p.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("select document", err)
	}
	return value, nil
}

// Update seeds the row when it is missing so that FOR UPDATE always has a
// row to lock, then rewrites it inside the same transaction.
func (p *Postgres) Update(ctx context.Context, fn func([]byte) ([]byte, error)) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return wrap("begin transaction", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO kv_store (key, value) VALUES ($1, '{}'::jsonb) ON CONFLICT (key) DO NOTHING`,
		p.key,
	); err != nil {
		_ = tx.Rollback(ctx)
		return wrap("seed document", err)
	}

	var current []byte
	if err := tx.QueryRow(ctx,
		`SELECT value FROM kv_store WHERE key = $1 FOR UPDATE`,
		p.key,
	).Scan(&current); err != nil {
		_ = tx.Rollback(ctx)
		return wrap("lock document", err)
	}

	next, err := fn(current)
	if err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE kv_store SET value = $2, updated_at = now() WHERE key = $1`,
		p.key, next,
	); err != nil {
		_ = tx.Rollback(ctx)
		return wrap("write document", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}
