package cache

import (
	"fmt"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks the claim store for the running deployment.
//
// With Redis disabled the in-memory store is returned. With Redis enabled but
// unreachable the behaviour depends on requireRedis: production replicas must
// share claims, so they fail fast instead of silently falling back.
func NewIdempotencyStore(cfg config.RedisConfig, requireRedis bool, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(cfg)
	if err == nil {
		logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	}

	if requireRedis {
		return nil, fmt.Errorf("redis is required for idempotency but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"replicas will not share recurring-tick claims",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
