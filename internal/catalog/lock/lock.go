// Package lock provides advisory per-product locks shared across service
// replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tair/omnichannel-catalog/pkg/logger"
)

// ErrNotAcquired is returned when a lock stays held by someone else
var ErrNotAcquired = errors.New("system busy, please try again later (lock)")

// ReleaseFunc releases locks taken by Acquire
type ReleaseFunc func(ctx context.Context)

// Locker takes a set of named locks
type Locker interface {
	// Acquire takes every key or none. Keys are taken in sorted order and
	// a key listed twice is taken once.
	Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error)
}

// ProductKey is the lock key guarding one product
func ProductKey(id uint) string {
	return fmt.Sprintf("lock:catalog:product:%d", id)
}

// ProductKeys returns lock keys for several products, one per distinct id
func ProductKeys(ids ...uint) []string {
	seen := make(map[uint]bool, len(ids))
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, ProductKey(id))
	}
	return keys
}

func sortedUnique(keys []string) []string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, k := range sorted {
		if i > 0 && k == sorted[i-1] {
			continue
		}
		out = append(out, k)
	}
	return out
}

// NopLocker grants every lock immediately
type NopLocker struct{}

// Acquire implements Locker
func (NopLocker) Acquire(context.Context, ...string) (ReleaseFunc, error) {
	return func(context.Context) {}, nil
}

// compare-and-delete so a lock that expired and was re-taken by another
// holder is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker implements Locker with SET NX PX
type RedisLocker struct {
	client  redis.UniversalClient
	ttl     time.Duration
	retries int
	wait    time.Duration
}

// NewRedisLocker creates a Redis-backed locker
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  client,
		ttl:     ttl,
		retries: 3,
		wait:    100 * time.Millisecond,
	}
}

// Acquire implements Locker
func (l *RedisLocker) Acquire(ctx context.Context, keys ...string) (ReleaseFunc, error) {
	sorted := sortedUnique(keys)

	token := uuid.New().String()
	held := make([]string, 0, len(sorted))
	release := func(ctx context.Context) {
		for _, k := range held {
			if err := releaseScript.Run(ctx, l.client, []string{k}, token).Err(); err != nil {
				logger.Error(ctx).Err(err).Str("key", k).Msg("Failed to release lock")
			}
		}
	}

	for _, key := range sorted {
		ok, err := l.acquireOne(ctx, key, token)
		if err != nil || !ok {
			release(ctx)
			if err != nil {
				return nil, err
			}
			return nil, ErrNotAcquired
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *RedisLocker) acquireOne(ctx context.Context, key, token string) (bool, error) {
	var lastErr error
	for i := 0; i < l.retries; i++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			logger.Error(ctx).Err(err).Str("key", key).Msg("Failed to acquire lock, redis error")
			lastErr = err
		}
		if ok {
			return true, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(l.wait):
		}
	}
	if lastErr != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, lastErr)
	}
	return false, nil
}
