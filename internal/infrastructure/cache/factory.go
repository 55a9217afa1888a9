package cache

import (
	"fmt"

	"github.com/cultivo/backend/internal/infrastructure/auth"
	"github.com/cultivo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RevocationStoreFactory picks the token revocation store from configuration
type RevocationStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RevocationStoreFactoryOption is a functional option for configuring the factory
type RevocationStoreFactoryOption func(*RevocationStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RevocationStoreFactoryOption {
	return func(f *RevocationStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) RevocationStoreFactoryOption {
	return func(f *RevocationStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRevocationStoreFactory creates a new factory
func NewRevocationStoreFactory(cfg config.RedisConfig, opts ...RevocationStoreFactoryOption) *RevocationStoreFactory {
	f := &RevocationStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the Redis store when Redis is enabled and reachable,
// otherwise the in-memory store.
func (f *RevocationStoreFactory) CreateStore() (auth.TokenBlacklist, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory token revocation store")
		return NewMemoryRevocationStore(), nil
	}

	store, err := NewRedisRevocationStore(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis token revocation store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for token revocation but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token revocation store. "+
		"Logouts will not be shared across instances.",
		zap.Error(err),
	)
	return NewMemoryRevocationStore(), nil
}
