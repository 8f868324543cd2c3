package joblock

import (
	"context"
	"sync"
	"time"
)

type lease struct {
	token   string
	expires time.Time
}

// memoryLocker only serializes runs inside one process.
type memoryLocker struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{leases: make(map[string]lease), now: time.Now}
}

func (l *memoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cur, ok := l.leases[key]; ok && now.Before(cur.expires) {
		return "", false, nil
	}
	token := newToken()
	l.leases[key] = lease{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (l *memoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cur, ok := l.leases[key]; ok && cur.token == token {
		delete(l.leases, key)
	}
	return nil
}
