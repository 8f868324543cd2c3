// Package joblock serializes batch runs that write the movie catalog.
//
// Primary backend: Redis SET NX with TTL (env REDIS_DSN).
// Fallback: a lease row in Postgres (table batch_job_lock).
// If neither is available, an in-memory lock is used (development only).
package joblock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Locker hands out expiring, token-guarded leases on a key.
type Locker interface {
	// Acquire takes key for ttl. ok is false when another holder owns an unexpired lease.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release frees key if token still owns it. Releasing an expired or foreign lease is a no-op.
	Release(ctx context.Context, key, token string) error
}

// NewLocker creates the best available locker: Redis > Postgres > in-memory.
// When isProd is true the in-memory fallback is refused.
func NewLocker(redisDSN string, pool *pgxpool.Pool, isProd bool) (Locker, error) {
	if redisDSN != "" {
		return newRedisLocker(redisDSN), nil
	}
	if pool != nil {
		return newPostgresLocker(pool), nil
	}
	if isProd {
		return nil, errors.New("production requires REDIS_DSN or DATABASE_URL for the job lock; in-memory lock is not allowed")
	}
	return newMemoryLocker(), nil
}

func newToken() string {
	return uuid.New().String()
}
