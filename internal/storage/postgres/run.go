package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/raidrank/internal/storage"
)

var (
	entryInsertColumns = append([]string{"run_id"}, storage.EntryColumns...)
	entrySelect        = strings.Join(storage.EntryColumns, ", ")
)

// RunRepository stores ranking runs.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts run and its entries in one transaction. A zero ID is replaced
// by a new random UUID.
//
// Precondition: run must be non-nil; entry ranks must be unique.
// Postcondition: Returns the stored run with ID and CreatedAt set, or
// storage.ErrRunExists if the id is taken.
func (r *RunRepository) Save(ctx context.Context, run *storage.Run) (*storage.Run, error) {
	out := *run
	if out.ID == uuid.Nil {
		out.ID = uuid.New()
	}
	out.Entries = append([]storage.RunEntry(nil), run.Entries...)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO ranking_runs (id, query_type, sort_metric, snapshot_digest, level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		out.ID, out.QueryType, out.SortMetric, out.SnapshotDigest, out.Level,
	).Scan(&out.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, storage.ErrRunExists
		}
		return nil, fmt.Errorf("inserting run: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"ranking_entries"}, entryInsertColumns,
		pgx.CopyFromSlice(len(out.Entries), func(i int) ([]any, error) {
			return append([]any{out.ID}, out.Entries[i].Values()...), nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing run: %w", err)
	}
	return &out, nil
}

// Get returns the run with the given id and its entries ordered by rank.
//
// Postcondition: Returns the Run or storage.ErrRunNotFound.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*storage.Run, error) {
	return r.one(ctx, `
		SELECT id, query_type, sort_metric, snapshot_digest, level, created_at
		FROM ranking_runs WHERE id = $1`, id)
}

// Latest returns the most recent run for queryType.
//
// Postcondition: Returns the Run or storage.ErrRunNotFound.
func (r *RunRepository) Latest(ctx context.Context, queryType string) (*storage.Run, error) {
	return r.one(ctx, `
		SELECT id, query_type, sort_metric, snapshot_digest, level, created_at
		FROM ranking_runs WHERE query_type = $1
		ORDER BY created_at DESC, id DESC LIMIT 1`, queryType)
}

func (r *RunRepository) one(ctx context.Context, query string, arg any) (*storage.Run, error) {
	var run storage.Run
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&run.ID, &run.QueryType, &run.SortMetric, &run.SnapshotDigest, &run.Level, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	entries, err := r.entries(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Entries = entries
	return &run, nil
}

func (r *RunRepository) entries(ctx context.Context, id uuid.UUID) ([]storage.RunEntry, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+entrySelect+" FROM ranking_entries WHERE run_id = $1 ORDER BY rank ASC", id)
	if err != nil {
		return nil, fmt.Errorf("listing run entries: %w", err)
	}
	defer rows.Close()

	entries := make([]storage.RunEntry, 0)
	for rows.Next() {
		var e storage.RunEntry
		if err := rows.Scan(e.Targets()...); err != nil {
			return nil, fmt.Errorf("scanning run entry row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
