package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite prepares a SQLite database at the given path and ensures the
// schema exists. This is the zero-setup backend for local runs.
func OpenSQLite(path string, log *zap.Logger) (Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS rooms (
		code TEXT PRIMARY KEY,
		state BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Load(ctx context.Context, code string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM rooms WHERE code = ?`, code).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load room %s: %w", code, err)
	}
	return blob, true, nil
}

func (s *sqliteStore) Save(ctx context.Context, code string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (code, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		code, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save room %s: %w", code, err)
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }
