// Package store persists completed simulation batches to SQLite so past
// results stay queryable across invocations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"onebit/internal/sim"
)

// Batch is one recorded simulation batch.
type Batch struct {
	ID          string        `json:"id"`
	Protocol    string        `json:"protocol"`
	Agents      int           `json:"agents"`
	Simulations int           `json:"simulations"`
	Seed        int64         `json:"seed"`
	Mean        float64       `json:"mean"`
	Std         float64       `json:"std"`
	Min         int32         `json:"min"`
	Max         int32         `json:"max"`
	Elapsed     time.Duration `json:"elapsed"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ListOptions filters and limits a batch listing.
type ListOptions struct {
	// Protocol restricts the listing to one protocol. Empty means all.
	Protocol string

	// Limit caps the number of batches returned, newest first.
	// Zero or negative means no limit.
	Limit int
}

// RunStore records simulation batches in a SQLite database.
type RunStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open creates a RunStore rooted at projectRoot. The database lives at
// .onebit/runs.db and is created on first use.
func Open(projectRoot string) (*RunStore, error) {
	dir := filepath.Join(projectRoot, ".onebit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .onebit directory: %w", err)
	}

	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &RunStore{db: db}, nil
}

// RecordBatch stores a completed batch with its per-run day counts and
// returns the generated batch id.
func (s *RunStore) RecordBatch(ctx context.Context, res *sim.BatchResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (
			id, protocol, agents, simulations, seed,
			days_mean, days_std, days_min, days_max,
			elapsed_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, res.Protocol, res.Agents, res.Sims, res.Seed,
		res.Summary.Mean, res.Summary.Std, res.Summary.Min, res.Summary.Max,
		res.Elapsed.Milliseconds(), now)
	if err != nil {
		return "", fmt.Errorf("failed to insert batch: %w", err)
	}

	for i, days := range res.Days {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO runs (batch_id, run_index, days) VALUES (?, ?, ?)
		`, id, i, days); err != nil {
			return "", fmt.Errorf("failed to insert run %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit batch: %w", err)
	}

	return id, nil
}

// ListBatches returns recorded batches, newest first.
func (s *RunStore) ListBatches(ctx context.Context, opts ListOptions) ([]Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, protocol, agents, simulations, seed,
		       days_mean, days_std, days_min, days_max,
		       elapsed_ms, created_at
		FROM batches
	`
	var args []interface{}
	if opts.Protocol != "" {
		query += ` WHERE protocol = ?`
		args = append(args, opts.Protocol)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b         Batch
			elapsedMS int64
			createdAt string
		)
		if err := rows.Scan(&b.ID, &b.Protocol, &b.Agents, &b.Simulations, &b.Seed,
			&b.Mean, &b.Std, &b.Min, &b.Max, &elapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		b.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			b.CreatedAt = t
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batches: %w", err)
	}

	return batches, nil
}

// GetBatch returns one recorded batch by id. Returns nil if not found.
func (s *RunStore) GetBatch(ctx context.Context, id string) (*Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		b         Batch
		elapsedMS int64
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, protocol, agents, simulations, seed,
		       days_mean, days_std, days_min, days_max,
		       elapsed_ms, created_at
		FROM batches WHERE id = ?
	`, id).Scan(&b.ID, &b.Protocol, &b.Agents, &b.Simulations, &b.Seed,
		&b.Mean, &b.Std, &b.Min, &b.Max, &elapsedMS, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	b.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		b.CreatedAt = t
	}
	return &b, nil
}

// BatchDays returns the per-run day counts of one batch, in run order.
func (s *RunStore) BatchDays(ctx context.Context, batchID string) ([]int32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT days FROM runs WHERE batch_id = ? ORDER BY run_index
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var days []int32
	for rows.Next() {
		var d int32
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return days, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}
