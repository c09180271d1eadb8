package report

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink mirrors reconciliation entries into an audit table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to Postgres and ensures the audit table exists.
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reconcile_audit (
			id bigserial PRIMARY KEY,
			mode text NOT NULL,
			chain text NOT NULL,
			vault_address text NOT NULL,
			detail text NOT NULL,
			created_at timestamptz NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure audit table: %w", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Write inserts a batch of audit rows.
func (s *PostgresSink) Write(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(`
			INSERT INTO reconcile_audit (mode, chain, vault_address, detail, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`,
			entry.Mode,
			entry.Chain,
			entry.VaultAddress,
			entry.Detail,
			entry.At,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
