// Package sqlite exports ranking runs to standalone SQLite files that can be
// shared without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/raidrank/internal/storage"
)

var schema = []string{
	`CREATE TABLE run (
		id              TEXT    PRIMARY KEY,
		query_type      TEXT    NOT NULL,
		sort_metric     TEXT    NOT NULL,
		snapshot_digest TEXT    NOT NULL,
		level           INTEGER NOT NULL,
		created_at      TEXT    NOT NULL
	)`,
	`CREATE TABLE entries (
		rank          INTEGER PRIMARY KEY,
		attacker      TEXT    NOT NULL,
		template_id   TEXT    NOT NULL,
		shadow        INTEGER NOT NULL,
		fast_move     TEXT    NOT NULL,
		charged_move  TEXT    NOT NULL,
		elite_fast    INTEGER NOT NULL,
		elite_charged INTEGER NOT NULL,
		score         REAL    NOT NULL,
		dps           REAL    NOT NULL,
		tdo           REAL    NOT NULL,
		er            REAL    NOT NULL
	)`,
	`CREATE INDEX idx_entries_attacker ON entries(attacker)`,
}

// Export writes run to a new SQLite file at path. The file is built next to
// path and renamed into place, so a failed export leaves any previous file
// untouched.
//
// Precondition: run must be non-nil with unique entry ranks.
// Postcondition: On success path holds exactly run.
func Export(ctx context.Context, path string, run *storage.Run) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.sqlite")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := write(ctx, tmpPath, run); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("installing export: %w", err)
	}
	return nil
}

func write(ctx context.Context, path string, run *storage.Run) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, ddl := range schema {
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run (id, query_type, sort_metric, snapshot_digest, level, created_at) VALUES (?,?,?,?,?,?)`,
		run.ID.String(), run.QueryType, run.SortMetric, run.SnapshotDigest, run.Level,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(storage.EntryColumns)), ",")
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries ("+strings.Join(storage.EntryColumns, ", ")+") VALUES ("+placeholders+")")
	if err != nil {
		return fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range run.Entries {
		if _, err := stmt.ExecContext(ctx, e.Values()...); err != nil {
			return fmt.Errorf("inserting entry %d: %w", e.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}

// Read loads the run stored in the SQLite file at path, entries ordered by rank.
//
// Postcondition: Returns the Run, or storage.ErrRunNotFound when the file holds none.
func Read(ctx context.Context, path string) (*storage.Run, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	defer db.Close()

	var (
		run       storage.Run
		id        string
		createdAt string
	)
	err = db.QueryRowContext(ctx,
		`SELECT id, query_type, sort_metric, snapshot_digest, level, created_at FROM run LIMIT 1`,
	).Scan(&id, &run.QueryType, &run.SortMetric, &run.SnapshotDigest, &run.Level, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRunNotFound
		}
		return nil, fmt.Errorf("querying run: %w", err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing run id: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+strings.Join(storage.EntryColumns, ", ")+" FROM entries ORDER BY rank ASC")
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	run.Entries = make([]storage.RunEntry, 0)
	for rows.Next() {
		var e storage.RunEntry
		if err := rows.Scan(e.Targets()...); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}
