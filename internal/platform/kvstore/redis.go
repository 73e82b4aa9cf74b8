package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "bazzarna:kv:"

// Redis stores values as plain Redis strings under a namespace prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption customises the Redis store.
type RedisOption func(*Redis)

// WithRedisPrefix overrides the key namespace.
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisTTL expires idle entries after ttl. Zero keeps entries forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		if ttl >= 0 {
			r.ttl = ttl
		}
	}
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	store := &Redis{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// DialRedis parses a redis:// URL and verifies the connection.
func DialRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("kvstore: invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("kvstore: redis ping: %w", err)
	}
	return client, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, ErrEmptyKey
	}
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvstore: redis get: %w", err)
	}
	return value, true, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("kvstore: redis set: %w", err)
	}
	return nil
}

// Remove implements Store.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("kvstore: redis del: %w", err)
	}
	return nil
}

// Ping implements Pinger.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
