package locks

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned when a lock could not be obtained within the wait budget.
var ErrTimeout = errors.New("lock wait exceeded")

// Release gives a held lock back. Calling it more than once is a no-op.
type Release func()

// Locker serialises work per key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// BusinessKey is the lock key guarding one business's credit account.
func BusinessKey(businessID string) string {
	return "business:" + businessID
}

// Local is an in-process keyed mutex. Idle keys are dropped so the map only
// holds businesses with work in flight.
type Local struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// NewLocal builds a keyed mutex; wait <= 0 waits until the context ends.
func NewLocal(wait time.Duration) *Local {
	return &Local{wait: wait, slots: make(map[string]*slot)}
}

func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	s := l.ref(key)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	if err := s.sem.Acquire(waitCtx, 1); err != nil {
		l.unref(key)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.sem.Release(1)
			l.unref(key)
		})
	}, nil
}

func (l *Local) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Local) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys currently have waiters or holders.
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

// Chain acquires every locker in order and releases them in reverse.
func Chain(lockers ...Locker) Locker {
	filtered := make([]Locker, 0, len(lockers))
	for _, locker := range lockers {
		if locker != nil {
			filtered = append(filtered, locker)
		}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return chain(filtered)
}

type chain []Locker

func (c chain) Acquire(ctx context.Context, key string) (Release, error) {
	held := make([]Release, 0, len(c))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, locker := range c {
		release, err := locker.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		held = append(held, release)
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
