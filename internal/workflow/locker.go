package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultLockTimeout = 2 * time.Second

// Locker is a set of single-writer sections keyed by contract id. Waiting is
// bounded: when the section stays busy past the timeout, Lock fails with
// ErrConcurrencyConflict instead of queueing forever.
type Locker struct {
	timeout time.Duration

	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocker(timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Locker{timeout: timeout, slots: map[uuid.UUID]*lockSlot{}}
}

func (l *Locker) Lock(ctx context.Context, key uuid.UUID) (func(), error) {
	slot := l.acquireSlot(key)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.releaseSlot(key, slot)
			})
		}, nil
	case <-timer.C:
		l.releaseSlot(key, slot)
		return nil, fmt.Errorf("%w: contract %s is busy", ErrConcurrencyConflict, key)
	case <-ctx.Done():
		l.releaseSlot(key, slot)
		return nil, ctx.Err()
	}
}

func (l *Locker) acquireSlot(key uuid.UUID) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *Locker) releaseSlot(key uuid.UUID, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}
