package settings

import (
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/jingkaihe/p4gate/internal/errx"
	"github.com/jingkaihe/p4gate/pkg/storedb"
)

const settingsModule = "settings"

func settingsMigrations() []storedb.Migration {
	return []storedb.Migration{
		{
			Version: 1,
			Name:    "create_settings",
			SQL: `
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`,
		},
	}
}

// SQLiteStore is a Store backed by a sqlite database file.
type SQLiteStore struct {
	db     *sql.DB
	closed atomic.Bool
}

// OpenSQLiteStore opens (creating if needed) the settings database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := storedb.Open(storedb.OpenOptions{
		Path:       path,
		Module:     settingsModule,
		Migrations: settingsMigrations(),
	})
	if err != nil {
		return nil, errx.Wrap(ErrOpenStore, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Keys() ([]string, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	rows, err := s.db.Query(`SELECT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, errx.Wrap(ErrReadStore, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errx.Wrap(ErrReadStore, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errx.Wrap(ErrReadStore, err)
	}
	return keys, nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, ErrStoreClosed
	}
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errx.Wrap(ErrReadStore, err)
	}
	return v, true, nil
}

func (s *SQLiteStore) Put(key, value string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(
		`INSERT INTO settings(key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errx.Wrap(ErrWriteStore, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if _, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return errx.Wrap(ErrWriteStore, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
