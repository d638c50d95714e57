package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/commentprep/pkg/commentprep/internalerr"
	"github.com/cognicore/commentprep/pkg/commentprep/keywords"
	"github.com/cognicore/commentprep/pkg/commentprep/record"
	"github.com/cognicore/commentprep/pkg/commentprep/store"
)

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	text_field TEXT NOT NULL,
	options_json TEXT NOT NULL DEFAULT '{}',
	row_count INTEGER NOT NULL,
	error_count INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS run_rows (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY(run_id, idx),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS row_errors (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	message TEXT NOT NULL,
	PRIMARY KEY(run_id, idx),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_keywords (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	token TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun writes a run and its rows in one transaction. An existing run
// with the same ID is replaced.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidArgument)
	}
	options := r.Options
	if options == "" {
		options = "{}"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, text_field, options_json, row_count, error_count)
VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.UTC().Format(timeLayout),
		r.TextField,
		options,
		len(r.Rows),
		len(r.Errors),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := insertRows(ctx, tx, r.ID, r.Rows); err != nil {
		return err
	}
	if err := insertErrors(ctx, tx, r.ID, r.Errors); err != nil {
		return err
	}
	if err := insertKeywords(ctx, tx, r.ID, r.Keywords); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRows(ctx context.Context, tx *sql.Tx, runID string, rows []record.Record) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_rows (run_id, idx, data) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range rows {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, i, string(data)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return nil
}

func insertErrors(ctx context.Context, tx *sql.Tx, runID string, errs []store.RowError) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO row_errors (run_id, idx, message) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range errs {
		if _, err := stmt.ExecContext(ctx, runID, e.Index, e.Message); err != nil {
			return fmt.Errorf("insert row error %d: %w", e.Index, err)
		}
	}
	return nil
}

func insertKeywords(ctx context.Context, tx *sql.Tx, runID string, kws []keywords.Keyword) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_keywords (run_id, position, token, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, kw := range kws {
		if _, err := stmt.ExecContext(ctx, runID, i, kw.Token, kw.Count); err != nil {
			return fmt.Errorf("insert keyword %q: %w", kw.Token, err)
		}
	}
	return nil
}

// GetRun loads a run with its rows, errors and keywords.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	summary, options, err := s.loadHeader(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	r := store.Run{
		ID:        summary.ID,
		CreatedAt: summary.CreatedAt,
		TextField: summary.TextField,
		Options:   options,
	}

	rows, err := s.db.QueryContext(ctx, `SELECT data FROM run_rows WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return store.Run{}, err
		}
		var rec record.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return store.Run{}, fmt.Errorf("decode row: %w", err)
		}
		r.Rows = append(r.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return store.Run{}, err
	}

	if r.Errors, err = s.rowErrors(ctx, id); err != nil {
		return store.Run{}, err
	}
	if r.Keywords, err = s.keywords(ctx, id, -1); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

func (s *sqliteStore) loadHeader(ctx context.Context, id string) (store.RunSummary, string, error) {
	var (
		sum       store.RunSummary
		createdAt string
		options   string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, text_field, options_json, row_count, error_count
FROM runs WHERE id = ?`, id).Scan(&sum.ID, &createdAt, &sum.TextField, &options, &sum.RowCount, &sum.ErrorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunSummary{}, "", fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.RunSummary{}, "", err
	}
	if sum.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return store.RunSummary{}, "", fmt.Errorf("run %s created_at: %w", id, err)
	}
	return sum, options, nil
}

// ListRuns returns run summaries, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, text_field, row_count, error_count
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RunSummary
	for rows.Next() {
		var (
			sum       store.RunSummary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &createdAt, &sum.TextField, &sum.RowCount, &sum.ErrorCount); err != nil {
			return nil, err
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("run %s created_at: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// RowErrors returns the run's row errors in row order.
func (s *sqliteStore) RowErrors(ctx context.Context, id string) ([]store.RowError, error) {
	if _, _, err := s.loadHeader(ctx, id); err != nil {
		return nil, err
	}
	return s.rowErrors(ctx, id)
}

func (s *sqliteStore) rowErrors(ctx context.Context, id string) ([]store.RowError, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT idx, message FROM row_errors WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.RowError
	for rows.Next() {
		var e store.RowError
		if err := rows.Scan(&e.Index, &e.Message); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TopKeywords returns the first k keywords of the run's ranking.
func (s *sqliteStore) TopKeywords(ctx context.Context, id string, k int) ([]keywords.Keyword, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top keywords %d: %w", k, internalerr.ErrInvalidArgument)
	}
	if _, _, err := s.loadHeader(ctx, id); err != nil {
		return nil, err
	}
	return s.keywords(ctx, id, k)
}

// keywords loads a ranking; a negative limit loads all of it.
func (s *sqliteStore) keywords(ctx context.Context, id string, limit int) ([]keywords.Keyword, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT token, count FROM run_keywords
WHERE run_id = ?
ORDER BY position
LIMIT ?`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []keywords.Keyword
	for rows.Next() {
		var kw keywords.Keyword
		if err := rows.Scan(&kw.Token, &kw.Count); err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}
