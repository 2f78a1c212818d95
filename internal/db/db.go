// Package db provides PostgreSQL persistence for pipeline runs and job postings.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun inserts a new run in the queued state and returns it
func (db *DB) CreateRun(ctx context.Context, query string, locations, sources []string) (*Run, error) {
	run := &Run{
		Query:     query,
		Locations: locations,
		Sources:   sources,
		Status:    StatusQueued,
		Stage:     StageDiscover,
		Counts:    Counts{},
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO runs (query, locations, sources, status, stage, counts)
		 VALUES ($1, $2, $3, $4, $5, '{}')
		 RETURNING id, created_at`,
		query, locations, sources, run.Status, run.Stage,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetRun retrieves a run by ID. Returns nil without error when not found.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	var countsJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, query, locations, sources, status, stage, counts, error,
		        created_at, started_at, finished_at
		 FROM runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Query, &run.Locations, &run.Sources, &run.Status, &run.Stage,
		&countsJSON, &run.Error, &run.CreatedAt, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Counts = Counts{}
	if len(countsJSON) > 0 {
		_ = json.Unmarshal(countsJSON, &run.Counts)
	}
	return &run, nil
}

// UpdateRunState persists the mutable run fields (status, stage, counts,
// error, timestamps). The run state tracker is the only caller.
func (db *DB) UpdateRunState(ctx context.Context, run *Run) error {
	countsJSON, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal counts: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE runs
		 SET status = $1, stage = $2, counts = $3, error = $4,
		     started_at = $5, finished_at = $6
		 WHERE id = $7`,
		run.Status, run.Stage, countsJSON, run.Error,
		run.StartedAt, run.FinishedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run state: %w", err)
	}
	return nil
}

// ListRuns retrieves recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, query, locations, sources, status, stage, counts, error,
		        created_at, started_at, finished_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var countsJSON []byte
		if err := rows.Scan(&run.ID, &run.Query, &run.Locations, &run.Sources, &run.Status,
			&run.Stage, &countsJSON, &run.Error, &run.CreatedAt, &run.StartedAt, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Counts = Counts{}
		if len(countsJSON) > 0 {
			_ = json.Unmarshal(countsJSON, &run.Counts)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a run and its postings (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
