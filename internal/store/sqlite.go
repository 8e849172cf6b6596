// Package store persists aggregated wait-time snapshots in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lcaslokonon/disney-wait-times/internal/dataset"
	"github.com/lcaslokonon/disney-wait-times/internal/domain"
)

// DB wraps the SQLite snapshot database.
// It implements pipeline.Sink.
type DB struct {
	conn *sql.DB
}

// Open creates the database file (and its parent directory) and initializes
// the schema.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec(createSamplesTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create samples schema: %w", err)
	}
	if _, err := conn.Exec(createSnapshotsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create snapshots schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Name() string { return "sqlite" }

// Store replaces the previous snapshot with the new one in a single
// transaction, mirroring the dataset's rebuild-from-scratch contract, and
// records the build in the snapshots table.
func (db *DB) Store(ctx context.Context, ds dataset.Dataset) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, deleteAllSamples); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSample)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range ds.Samples {
		var wait any
		if s.WaitTime.Valid {
			wait = s.WaitTime.Minutes
		}
		if _, err := stmt.ExecContext(ctx,
			s.AttractionName,
			s.DateID,
			s.MonthOfYear,
			s.HourOfDay,
			s.MinuteOfDay,
			s.YearOfCalendar,
			wait,
			s.ObservedAt.Format(time.RFC3339),
			s.FetchedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, insertSnapshot,
		ds.BuiltAt.Format(time.RFC3339), len(ds.Samples), ds.Dropped,
	); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// CountSamples returns the number of rows in the current snapshot.
func (db *DB) CountSamples(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, countSamples).Scan(&n); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

// SamplesForAttraction returns the stored rows for one attraction in insert
// order.
func (db *DB) SamplesForAttraction(ctx context.Context, attraction string) ([]domain.WaitSample, error) {
	rows, err := db.conn.QueryContext(ctx, selectByAttraction, attraction)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.WaitSample
	for rows.Next() {
		var (
			s          domain.WaitSample
			wait       sql.NullFloat64
			observedAt string
			fetchedAt  string
		)
		if err := rows.Scan(
			&s.AttractionName, &s.DateID, &s.MonthOfYear, &s.HourOfDay,
			&s.MinuteOfDay, &s.YearOfCalendar, &wait, &observedAt, &fetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if wait.Valid {
			s.WaitTime = domain.WaitOf(wait.Float64)
		}
		if s.ObservedAt, err = time.Parse(time.RFC3339, observedAt); err != nil {
			return nil, fmt.Errorf("parse observed_at: %w", err)
		}
		if s.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt); err != nil {
			return nil, fmt.Errorf("parse fetched_at: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
