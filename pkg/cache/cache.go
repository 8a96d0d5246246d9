package cache

import (
	"context"
	"time"
)

// Cache is the shared contract for short-lived state: rate-limit counters,
// token usage accumulators, session context snapshots and popular-query
// snapshots. Values are strings; callers marshal structured data themselves.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// Increment adds delta to the integer counter at key and returns the new
	// value. A counter created by this call expires after ttl.
	Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error)
}
