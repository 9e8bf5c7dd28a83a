package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Postgres stores values in a table of a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url, verifies the connection and creates the table.
func OpenPostgres(ctx context.Context, url string, log zerolog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS skiptrack_kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	cfg := pool.Config().ConnConfig
	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Msg("PostgreSQL connected")

	return &Postgres{pool: pool}, nil
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	return pgGet(ctx, p.pool, key)
}

// Set implements Store.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	return pgPut(ctx, p.pool, key, value)
}

// Clear implements Store.
func (p *Postgres) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM skiptrack_kv`)
	return err
}

// Update implements Updater. A transaction-scoped advisory lock on the key
// serializes writers, including the first insert of a missing key.
func (p *Postgres) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return err
		}
		current, ok, err := pgGet(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(current, ok)
		if err != nil {
			return err
		}
		return pgPut(ctx, tx, key, next)
	})
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgGet(ctx context.Context, conn pgConn, key string) (string, bool, error) {
	var value string
	err := conn.QueryRow(ctx, `SELECT value FROM skiptrack_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func pgPut(ctx context.Context, conn pgConn, key, value string) error {
	_, err := conn.Exec(ctx,
		`INSERT INTO skiptrack_kv (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}
