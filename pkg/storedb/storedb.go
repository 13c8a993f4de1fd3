// Package storedb opens sqlite databases and brings their schema up to
// date with versioned, per-module migrations.
package storedb

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jingkaihe/p4gate/internal/errx"
)

// Migration is one schema step. Versions are ordered per module and applied
// at most once.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

type OpenOptions struct {
	Path       string
	Module     string
	Migrations []Migration
}

var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
}

const migrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  module TEXT NOT NULL,
  version INTEGER NOT NULL,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL,
  PRIMARY KEY (module, version)
);`

// Open creates the parent directory if needed, opens the database and
// applies pending migrations for opts.Module.
func Open(opts OpenOptions) (*sql.DB, error) {
	if strings.TrimSpace(opts.Module) == "" {
		return nil, errx.With(ErrInvalidModule, ": module name cannot be empty")
	}
	if opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return nil, errx.Wrap(ErrCreateDir, err)
		}
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errx.Wrap(ErrOpen, err)
	}
	// One connection keeps ":memory:" databases coherent and serializes
	// writers for file databases.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errx.With(ErrPragma, " %q: %w", p, err)
		}
	}

	if err := migrate(db, opts.Module, opts.Migrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB, module string, migrations []Migration) error {
	if _, err := db.Exec(migrationsTable); err != nil {
		return errx.Wrap(ErrMigrate, err)
	}

	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, m := range sorted {
		var applied int
		err := db.QueryRow(
			`SELECT COUNT(*) FROM schema_migrations WHERE module = ? AND version = ?`,
			module, m.Version,
		).Scan(&applied)
		if err != nil {
			return errx.Wrap(ErrMigrate, err)
		}
		if applied > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return errx.Wrap(ErrMigrate, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return errx.With(ErrMigrate, " %s v%d (%s): %w", module, m.Version, m.Name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations(module, version, name, applied_at) VALUES (?, ?, ?, ?)`,
			module, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			_ = tx.Rollback()
			return errx.Wrap(ErrMigrate, err)
		}
		if err := tx.Commit(); err != nil {
			return errx.Wrap(ErrMigrate, err)
		}
	}
	return nil
}
