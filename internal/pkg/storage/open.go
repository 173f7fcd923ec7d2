package storage

import (
	"context"
	"fmt"

	"github.com/Vodeneev/openingalert/internal/pkg/config"
)

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StateConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Path), nil
	case config.BackendPostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}
