package joblock

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresLocker struct {
	pool *pgxpool.Pool
}

func newPostgresLocker(pool *pgxpool.Pool) *postgresLocker {
	return &postgresLocker{pool: pool}
}

// Acquire inserts the lease row or takes over an expired one.
// Table `batch_job_lock` must exist (see movie-batch migrations).
func (l *postgresLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const q = `INSERT INTO batch_job_lock (name, token, expires_at)
	           VALUES ($1, $2, now() + make_interval(secs => $3))
	           ON CONFLICT (name) DO UPDATE
	             SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
	             WHERE batch_job_lock.expires_at < now()`

	token := newToken()
	tag, err := l.pool.Exec(ctx, q, key, token, ttl.Seconds())
	if err != nil {
		return "", false, err
	}
	// RowsAffected == 0 means a live lease is held by someone else.
	if tag.RowsAffected() == 0 {
		return "", false, nil
	}
	return token, true, nil
}

func (l *postgresLocker) Release(ctx context.Context, key, token string) error {
	_, err := l.pool.Exec(ctx, `DELETE FROM batch_job_lock WHERE name=$1 AND token=$2`, key, token)
	return err
}
