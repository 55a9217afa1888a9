package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cultivo/backend/internal/infrastructure/auth"
	"github.com/cultivo/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "token:revoked:"

// RedisRevocationStore keeps revoked tokens in Redis so every instance sees them
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore connects to Redis and verifies the connection
func NewRedisRevocationStore(cfg config.RedisConfig) (*RedisRevocationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRevocationStore{client: client}, nil
}

// NewRedisRevocationStoreWithClient wraps an existing client
func NewRedisRevocationStoreWithClient(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func jtiKey(jti string) string {
	return revocationKeyPrefix + "jti:" + jti
}

func sessionKey(userID string) string {
	return revocationKeyPrefix + "user:" + userID
}

// Revoke blacklists the JTI
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the JTI is blacklisted
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// RevokeSessions stores the revocation time for the profile
func (s *RedisRevocationStore) RevokeSessions(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// SessionRevoked compares the token issue time to the stored revocation time
func (s *RedisRevocationStore) SessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check revoked sessions: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation time: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

// Ping checks the Redis connection
func (s *RedisRevocationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisRevocationStore) Close() error {
	return s.client.Close()
}

// MemoryRevocationStore is a process-local store. Revocations are not shared
// between instances.
type MemoryRevocationStore struct {
	mu       sync.Mutex
	tokens   map[string]time.Time
	sessions map[string]time.Time
	now      func() time.Time
}

// NewMemoryRevocationStore creates an empty in-memory store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		tokens:   make(map[string]time.Time),
		sessions: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Revoke blacklists the JTI until ttl elapses
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = s.now().Add(ttl)
	return nil
}

// IsRevoked reports whether the JTI is blacklisted and drops expired entries
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.tokens[jti]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.tokens, jti)
		return false, nil
	}
	return true, nil
}

// RevokeSessions records the revocation time for the profile
func (s *MemoryRevocationStore) RevokeSessions(_ context.Context, userID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = s.now()
	return nil
}

// SessionRevoked reports whether issuedAt is at or before the revocation time
func (s *MemoryRevocationStore) SessionRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	revokedAt, ok := s.sessions[userID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(revokedAt), nil
}

var (
	_ auth.TokenBlacklist = (*RedisRevocationStore)(nil)
	_ auth.TokenBlacklist = (*MemoryRevocationStore)(nil)
)
