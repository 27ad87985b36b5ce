// Package history records toolkit runs in a per-vault SQLite database.
//
// The database is derived data (rebuildable by simply running commands
// again) and lives under <vault>/.autovault/, which init adds to
// .gitignore.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kstrand/autovault/internal/sqlutil"
)

// DirName is the vault-local directory holding derived data.
const DirName = ".autovault"

// dbName is the history database file name.
const dbName = "history.db"

// Run is one recorded command execution.
type Run struct {
	ID         int64     `json:"id"`
	Op         string    `json:"op"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Created    int       `json:"created"`
	Kept       int       `json:"kept"`
	Errors     int       `json:"errors"`
	OK         bool      `json:"ok"`
	DryRun     bool      `json:"dry_run"`
}

// Store is the history database handle.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database for a vault.
func Open(vaultRoot string) (*Store, error) {
	dir := filepath.Join(vaultRoot, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", DirName, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbName))
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			op          TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created     INTEGER NOT NULL DEFAULT 0,
			kept        INTEGER NOT NULL DEFAULT 0,
			errors      INTEGER NOT NULL DEFAULT 0,
			ok          INTEGER NOT NULL,
			dry_run     INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`)
	if err != nil {
		return fmt.Errorf("initialize history schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run.
func (s *Store) Record(r Run) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (op, started_at, duration_ms, created, kept, errors, ok, dry_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Op, r.StartedAt.UnixMilli(), r.DurationMs,
		r.Created, r.Kept, r.Errors, boolToInt(r.OK), boolToInt(r.DryRun),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, most recent first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, op, started_at, duration_ms, created, kept, errors, ok, dry_run
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	return scanRuns(rows)
}

// RecentByOps returns up to limit runs matching any of the given ops,
// most recent first. An empty ops slice matches nothing.
func (s *Store) RecentByOps(ops []string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	placeholders, args := sqlutil.InClauseArgs(ops)
	args = append(args, limit)
	rows, err := s.db.Query(
		`SELECT id, op, started_at, duration_ms, created, kept, errors, ok, dry_run
		 FROM runs WHERE op IN (`+placeholders+`) ORDER BY started_at DESC, id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (Run, error) {
		var r Run
		var startedMs int64
		var ok, dryRun int
		if err := rows.Scan(&r.ID, &r.Op, &startedMs, &r.DurationMs,
			&r.Created, &r.Kept, &r.Errors, &ok, &dryRun); err != nil {
			return Run{}, err
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.OK = ok != 0
		r.DryRun = dryRun != 0
		return r, nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
