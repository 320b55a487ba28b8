package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStore_RecordAndRecent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run := Run{
			ID:        fmt.Sprintf("run-%d", i),
			Dataset:   "tx_cap",
			Fname:     "tran_out.csv",
			Rows:      int64(100 * i),
			CreatedAt: time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		}
		if err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	runs, err := s.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() returned %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Errorf("RecentRuns() order = [%s %s], want [run-2 run-1]", runs[0].ID, runs[1].ID)
	}
}

func TestMemoryStore_DefaultLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.RecordRun(ctx, Run{ID: "a", Dataset: "cf"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := s.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("RecentRuns(0) returned %d runs, want 1", len(runs))
	}
}

func TestMemoryStore_SetsCreatedAt(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.RecordRun(ctx, Run{ID: "a", Dataset: "cf"}); err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, _ := s.RecentRuns(ctx, 1)
	if runs[0].CreatedAt.IsZero() {
		t.Error("RecordRun() should set CreatedAt when zero")
	}
}

func TestMemoryStore_CapacityBound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < memoryCapacity+10; i++ {
		if err := s.RecordRun(ctx, Run{ID: fmt.Sprintf("run-%d", i), Dataset: "load"}); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	runs, err := s.RecentRuns(ctx, memoryCapacity*2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != memoryCapacity {
		t.Errorf("store holds %d runs, want capped at %d", len(runs), memoryCapacity)
	}
	if runs[0].ID != fmt.Sprintf("run-%d", memoryCapacity+9) {
		t.Errorf("newest run = %s, want run-%d", runs[0].ID, memoryCapacity+9)
	}
}
