package memoryengine

import (
	"context"
	"sync"
	"time"

	"github.com/openshelf/lending-engine-go/lending"
)

// lockTable hands out one binary semaphore per row key. Acquisition waits at
// most the configured timeout, mirroring the SQL engine's lock_timeout, and
// reports the bounded wait's expiry as lending.ErrConcurrencyConflict.
type lockTable struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{sems: make(map[string]chan struct{})}
}

func (l *lockTable) semaphore(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, found := l.sems[key]
	if !found {
		sem = make(chan struct{}, 1)
		l.sems[key] = sem
	}

	return sem
}

func (l *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	sem := l.semaphore(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return lending.ErrConcurrencyConflict
	}
}

func (l *lockTable) release(key string) {
	<-l.semaphore(key)
}
