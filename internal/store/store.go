// Package store persists harmonization run history.
//
// Two implementations are provided: a PostgreSQL store backed by pgx for
// deployments that configure DATABASE_URL, and an in-memory ring buffer
// used when no database is available. Both satisfy Store.
package store

import (
	"context"
	"time"
)

// Run is one completed harmonization job.
type Run struct {
	ID        string        `json:"id"`
	Dataset   string        `json:"dataset"`
	Fname     string        `json:"fname"`
	Rows      int64         `json:"rows"`
	BytesRead int64         `json:"bytes_read"`
	Unmapped  []string      `json:"unmapped,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store records and retrieves harmonization runs.
type Store interface {
	// RecordRun persists one run. CreatedAt is set by the store if zero.
	RecordRun(ctx context.Context, run Run) error

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases store resources.
	Close()
}

// DefaultRecentLimit bounds RecentRuns when callers pass limit <= 0.
const DefaultRecentLimit = 50
