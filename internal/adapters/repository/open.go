package repository

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/okian/scout/internal/config"
	"github.com/okian/scout/pkg/logger"
)

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, l logger.Logger) (Repository, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	opts := []Option{WithLogger(l), WithSnowflakeNode(node), WithPrefix(cfg.RedisPrefix)}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryStore(opts...), nil
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, opts...)
	case config.BackendRedis:
		return NewRedisStore(cfg.RedisURL, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
	}
}
