package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/r2x-tools/reedsmap/internal/config"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS harmonize_runs (
	id          UUID PRIMARY KEY,
	dataset     TEXT NOT NULL,
	fname       TEXT NOT NULL,
	row_count   BIGINT NOT NULL,
	bytes_read  BIGINT NOT NULL,
	unmapped    TEXT[],
	duration_ms BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS harmonize_runs_created_at_idx
	ON harmonize_runs (created_at DESC);
`

// PostgresStore persists runs in PostgreSQL via a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the configured database, verifies the connection
// and ensures the runs table exists.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, runsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure runs table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) RecordRun(ctx context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO harmonize_runs
			(id, dataset, fname, row_count, bytes_read, unmapped, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Dataset, run.Fname, run.Rows, run.BytesRead,
		run.Unmapped, run.Duration.Milliseconds(), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, dataset, fname, row_count, bytes_read, unmapped, duration_ms, created_at
		FROM harmonize_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Dataset, &r.Fname, &r.Rows, &r.BytesRead,
			&r.Unmapped, &durationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
