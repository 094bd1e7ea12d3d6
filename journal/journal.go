// Package journal keeps a local history of reconcile outcomes in SQLite.
//
// The journal is an audit trail. The fingerprint label on each container remains
// the only state devctr consults when deciding what to do.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Event is one reconcile decision for one container.
type Event struct {
	ID          int64
	RunID       string
	Container   string
	Outcome     string
	DesiredHash string
	CurrentHash string
	DryRun      bool
	At          time.Time
}

// Journal is a SQLite-backed event log.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and applies any
// pending schema migrations.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	slog.DebugContext(ctx, "journal.Open", "path", path)
	return &Journal{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load journal migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare journal migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("failed to prepare journal migrations: %w", err)
	}
	// m.Close would close db, which the Journal keeps using.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends e. A zero e.At is replaced with the current time.
func (j *Journal) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (run_id, container, outcome, desired_hash, current_hash, dry_run, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Container, e.Outcome, e.DesiredHash, e.CurrentHash, e.DryRun, e.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record journal event: %w", err)
	}
	return nil
}

// List returns up to limit events, newest first. An empty container lists all containers.
func (j *Journal) List(ctx context.Context, container string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, run_id, container, outcome, desired_hash, current_hash, dry_run, created_at
		 FROM events
		 WHERE ? = '' OR container = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		container, container, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret []Event
	for rows.Next() {
		var e Event
		var at int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Container, &e.Outcome, &e.DesiredHash, &e.CurrentHash, &e.DryRun, &at); err != nil {
			return nil, err
		}
		e.At = time.Unix(0, at)
		ret = append(ret, e)
	}
	return ret, rows.Err()
}
