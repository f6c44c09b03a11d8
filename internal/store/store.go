// Package store persists one serialized Room State blob per room code.
// Rooms load at actor activation and save after every mutating handler;
// broadcasts always follow a successful save.
package store

import (
	"context"

	"go.uber.org/zap"
)

type Store interface {
	// Load returns the blob for a room code; found=false means the room has
	// no durable state yet.
	Load(ctx context.Context, code string) (blob []byte, found bool, err error)
	Save(ctx context.Context, code string, blob []byte) error
	Close() error
}

// Config selects the backend: Postgres when DSN is set, SQLite otherwise.
type Config struct {
	DSN        string
	SQLitePath string
}

func Open(cfg Config, log *zap.Logger) (Store, error) {
	if cfg.DSN != "" {
		return OpenPostgres(cfg.DSN, log)
	}
	return OpenSQLite(cfg.SQLitePath, log)
}
