// Package cache holds the optional Redis lookup cache for resolved
// sessions. The database stays authoritative; the cache only shortcuts
// the per-request session join.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sellorama/sellorama/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// SessionCache stores resolved identities keyed by session token.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Identity, error)
	Set(ctx context.Context, sessionID string, identity *domain.Identity) error
	Delete(ctx context.Context, sessionID string) error
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisCache) Get(ctx context.Context, sessionID string) (*domain.Identity, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal identity failed: %w", err)
	}

	return &identity, nil
}

func (r *RedisCache) Set(ctx context.Context, sessionID string, identity *domain.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// NoopCache satisfies SessionCache when no Redis address is configured.
// Every lookup misses.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, sessionID string) (*domain.Identity, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(ctx context.Context, sessionID string, identity *domain.Identity) error {
	return nil
}

func (NoopCache) Delete(ctx context.Context, sessionID string) error {
	return nil
}
