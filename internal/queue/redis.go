package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient wraps the shared Redis connection used for cross-instance
// coordination: leader locks for scheduled scans and idempotency keys that
// keep retried notification jobs from double-sending.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client from a redis:// URL
func NewRedisClient(url, password string, db int) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DB = db

	client := redis.NewClient(opts)
	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client, ctx: ctx}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// AcquireLock takes a named lock with a TTL. Returns false when another
// holder already has it.
func (r *RedisClient) AcquireLock(name string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(r.ctx, "lock:"+name, time.Now().UnixNano(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	return ok, nil
}

// ReleaseLock releases a named lock
func (r *RedisClient) ReleaseLock(name string) error {
	if err := r.client.Del(r.ctx, "lock:"+name).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", name, err)
	}
	return nil
}

// ClaimIdempotencyKey marks a key as used for the TTL window. Returns false
// when the key was already claimed, meaning the work was already done.
func (r *RedisClient) ClaimIdempotencyKey(key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(r.ctx, "idem:"+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key %s: %w", key, err)
	}
	return ok, nil
}

// ReleaseIdempotencyKey gives a claimed key back, so a retry of work that
// failed after claiming is not mistaken for a duplicate.
func (r *RedisClient) ReleaseIdempotencyKey(key string) error {
	if err := r.client.Del(r.ctx, "idem:"+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key %s: %w", key, err)
	}
	return nil
}
