package kv

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/skiptrack/internal/model"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg model.StorageConfig, log zerolog.Logger) (Store, error) {
	log = log.With().Str("component", "kv").Str("backend", cfg.Backend).Logger()
	switch cfg.Backend {
	case BackendSQLite, "":
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		st, err := OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		log.Debug().Str("path", cfg.DBPath).Msg("SQLite opened")
		return st, nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis backend requires --redis-url")
		}
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisPrefix, log)
	case BackendPostgres:
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("postgres backend requires --postgres-url")
		}
		return OpenPostgres(ctx, cfg.PostgresURL, log)
	case BackendMemory:
		log.Warn().Msg("memory backend selected; courses will not persist")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w %q (use sqlite, redis, postgres or memory)", ErrUnknownBackend, cfg.Backend)
	}
}
