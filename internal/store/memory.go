package store

import (
	"context"
	"sync"
	"time"
)

// memoryCapacity bounds the in-memory run buffer.
const memoryCapacity = 500

// MemoryStore keeps recent runs in a fixed-size ring buffer.
// It is the fallback when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run // newest last
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) RecordRun(_ context.Context, run Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = append(m.runs, run)
	if len(m.runs) > memoryCapacity {
		m.runs = m.runs[len(m.runs)-memoryCapacity:]
	}
	return nil
}

func (m *MemoryStore) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.runs)
	if limit > n {
		limit = n
	}

	out := make([]Run, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *MemoryStore) Close() {}
