package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"onebit/internal/sim"
	"onebit/internal/stats"
)

func testBatchResult(protocol string, agents int, seed int64, days []int32) *sim.BatchResult {
	return &sim.BatchResult{
		Protocol: protocol,
		Agents:   agents,
		Sims:     len(days),
		Seed:     seed,
		Days:     days,
		Summary:  stats.Summarize(days),
		Elapsed:  42 * time.Millisecond,
	}
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	// Verify .onebit directory was created
	onebitDir := filepath.Join(tmpDir, ".onebit")
	if _, err := os.Stat(onebitDir); os.IsNotExist(err) {
		t.Error(".onebit directory was not created")
	}

	// Verify database file was created
	dbPath := filepath.Join(onebitDir, "runs.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("runs.db was not created")
	}
}

func TestRunStore_RecordAndGet(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	res := testBatchResult("counter", 4, 7, []int32{9, 12, 10})

	id, err := store.RecordBatch(ctx, res)
	if err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}
	if id == "" {
		t.Fatal("RecordBatch() returned empty id")
	}

	got, err := store.GetBatch(ctx, id)
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetBatch() returned nil")
	}
	if got.Protocol != "counter" {
		t.Errorf("Protocol = %v, want counter", got.Protocol)
	}
	if got.Agents != 4 {
		t.Errorf("Agents = %v, want 4", got.Agents)
	}
	if got.Simulations != 3 {
		t.Errorf("Simulations = %v, want 3", got.Simulations)
	}
	if got.Seed != 7 {
		t.Errorf("Seed = %v, want 7", got.Seed)
	}
	if got.Min != 9 || got.Max != 12 {
		t.Errorf("Min/Max = %v/%v, want 9/12", got.Min, got.Max)
	}
	if got.Elapsed != 42*time.Millisecond {
		t.Errorf("Elapsed = %v, want 42ms", got.Elapsed)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestRunStore_GetBatchNotFound(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	got, err := store.GetBatch(context.Background(), "no-such-batch")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetBatch() = %v, want nil for missing batch", got)
	}
}

func TestRunStore_BatchDays(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	days := []int32{15, 8, 23, 8}
	id, err := store.RecordBatch(ctx, testBatchResult("token", 5, 1, days))
	if err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	got, err := store.BatchDays(ctx, id)
	if err != nil {
		t.Fatalf("BatchDays() error = %v", err)
	}
	if len(got) != len(days) {
		t.Fatalf("BatchDays() returned %d runs, want %d", len(got), len(days))
	}
	for i := range days {
		if got[i] != days[i] {
			t.Errorf("run %d = %d, want %d", i, got[i], days[i])
		}
	}
}

func TestRunStore_ListNewestFirst(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first, err := store.RecordBatch(ctx, testBatchResult("counter", 2, 1, []int32{3}))
	if err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}
	second, err := store.RecordBatch(ctx, testBatchResult("counter", 2, 2, []int32{5}))
	if err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	batches, err := store.ListBatches(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("ListBatches() returned %d batches, want 2", len(batches))
	}
	if batches[0].ID != second || batches[1].ID != first {
		t.Errorf("batch order = [%s, %s], want newest first [%s, %s]",
			batches[0].ID, batches[1].ID, second, first)
	}
}

func TestRunStore_ListFiltersByProtocol(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.RecordBatch(ctx, testBatchResult("counter", 2, 1, []int32{3})); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}
	if _, err := store.RecordBatch(ctx, testBatchResult("token", 2, 1, []int32{4})); err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}

	batches, err := store.ListBatches(ctx, ListOptions{Protocol: "token"})
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("ListBatches(token) returned %d batches, want 1", len(batches))
	}
	if batches[0].Protocol != "token" {
		t.Errorf("Protocol = %v, want token", batches[0].Protocol)
	}
}

func TestRunStore_ListLimit(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := int64(0); i < 5; i++ {
		if _, err := store.RecordBatch(ctx, testBatchResult("counter", 2, i, []int32{3})); err != nil {
			t.Fatalf("RecordBatch() error = %v", err)
		}
	}

	batches, err := store.ListBatches(ctx, ListOptions{Limit: 3})
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(batches) != 3 {
		t.Errorf("ListBatches(limit 3) returned %d batches, want 3", len(batches))
	}

	// The newest batches survive the cut.
	if batches[0].Seed != 4 {
		t.Errorf("newest batch seed = %d, want 4", batches[0].Seed)
	}
}

func TestRunStore_PersistsAcrossReopen(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	store, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	id, err := store.RecordBatch(ctx, testBatchResult("token", 3, 9, []int32{6, 7}))
	if err != nil {
		t.Fatalf("RecordBatch() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetBatch(ctx, id)
	if err != nil {
		t.Fatalf("GetBatch() after reopen error = %v", err)
	}
	if got == nil {
		t.Fatal("batch missing after reopen")
	}
	days, err := reopened.BatchDays(ctx, id)
	if err != nil {
		t.Fatalf("BatchDays() after reopen error = %v", err)
	}
	if len(days) != 2 {
		t.Errorf("got %d runs after reopen, want 2", len(days))
	}
}
