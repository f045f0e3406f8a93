package lock

import (
	"context"
	"sync"
	"time"

	"hmy-wallet/pkg/safe_random"
)

// LocalLock 单进程内的实现, 没有 Redis 时使用
type LocalLock struct {
	mu    sync.Mutex
	held  map[string]localEntry
	clock func() time.Time
}

type localEntry struct {
	token   string
	expires time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]localEntry), clock: time.Now}
}

func (l *LocalLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return "", ErrNotAcquired
	}
	token, err := safe_random.Hex(16)
	if err != nil {
		return "", err
	}
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}
	return token, nil
}

func (l *LocalLock) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.held[key]
	if !ok || e.token != token || !l.clock().Before(e.expires) {
		return ErrNotOwner
	}
	delete(l.held, key)
	return nil
}
