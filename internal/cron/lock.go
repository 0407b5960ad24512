package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// fallbackLockTTL bounds how long a crashed holder can block the maintenance
// cycle. The cleanup and sweep jobs finish in seconds, so an hour is generous
// for one cycle while still freeing the next daily run.
const fallbackLockTTL = time.Hour

// Lock elects a single maintenance runner per cycle when several cron worker
// replicas are deployed.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// redisStore is the slice of the redis client the lock needs.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock backs Lock with SETNX plus a TTL. Each acquisition writes a fresh
// owner token so a replica never releases a lock another replica re-acquired
// after expiry.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration
	owner  string
}

// NewRedisLock constructs the cycle lock. A non-positive ttl falls back to
// fallbackLockTTL.
func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for cycle lock")
	}
	if key == "" {
		return nil, errors.New("cycle lock key is required")
	}
	if ttl <= 0 {
		ttl = fallbackLockTTL
	}
	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// Acquire claims the cycle for this replica until Release or TTL expiry.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("claim cycle lock: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only while this replica's owner token still holds it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read cycle lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("release cycle lock: %w", err)
	}
	l.owner = ""
	return nil
}
