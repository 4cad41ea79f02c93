package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestLocalSerialisesSameKey(t *testing.T) {
	locker := NewLocal(time.Second)
	var inside, maxInside int32

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			release, err := locker.Acquire(context.Background(), BusinessKey("b-1"))
			if err != nil {
				return err
			}
			defer release()
			n := atomic.AddInt32(&inside, 1)
			for {
				old := atomic.LoadInt32(&maxInside)
				if n <= old || atomic.CompareAndSwapInt32(&maxInside, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if maxInside != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxInside)
	}
	if locker.held() != 0 {
		t.Fatalf("expected idle keys to be dropped, %d remain", locker.held())
	}
}

func TestLocalDistinctKeysDoNotBlock(t *testing.T) {
	locker := NewLocal(50 * time.Millisecond)
	releaseA, err := locker.Acquire(context.Background(), "a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()
	releaseB, err := locker.Acquire(context.Background(), "b")
	if err != nil {
		t.Fatalf("key b should not wait on a: %v", err)
	}
	releaseB()
}

func TestLocalTimesOut(t *testing.T) {
	locker := NewLocal(20 * time.Millisecond)
	release, err := locker.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer release()

	if _, err := locker.Acquire(context.Background(), "k"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestLocalHonoursCallerContext(t *testing.T) {
	locker := NewLocal(time.Second)
	release, _ := locker.Acquire(context.Background(), "k")
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locker.Acquire(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	locker := NewLocal(time.Second)
	release, _ := locker.Acquire(context.Background(), "k")
	release()
	release()

	again, err := locker.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("re-acquire: %v", err)
	}
	again()
}

func TestRedisLockerWaitsForOwner(t *testing.T) {
	store := newFakeStore()
	locker, err := NewRedis(RedisParams{Store: store, Wait: time.Second, TTL: time.Minute})
	if err != nil {
		t.Fatalf("new redis locker: %v", err)
	}
	locker.retryEvery = time.Millisecond

	release, err := locker.Acquire(context.Background(), "business:b-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	acquired := make(chan error, 1)
	go func() {
		second, err := locker.Acquire(context.Background(), "business:b-1")
		if err == nil {
			second()
		}
		acquired <- err
	}()

	time.Sleep(10 * time.Millisecond)
	release()
	if err := <-acquired; err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if store.size() != 0 {
		t.Fatalf("expected lock keys to be released")
	}
}

func TestRedisLockerTimesOut(t *testing.T) {
	store := newFakeStore()
	locker, _ := NewRedis(RedisParams{Store: store, Wait: 15 * time.Millisecond})
	locker.retryEvery = time.Millisecond

	release, _ := locker.Acquire(context.Background(), "k")
	defer release()
	if _, err := locker.Acquire(context.Background(), "k"); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestRedisLockerSurfacesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	locker, _ := NewRedis(RedisParams{Store: store, Wait: time.Second})
	if _, err := locker.Acquire(context.Background(), "k"); err == nil || errors.Is(err, ErrTimeout) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestChainReleasesOnPartialFailure(t *testing.T) {
	local := NewLocal(time.Second)
	store := newFakeStore()
	store.err = errors.New("down")
	remote, _ := NewRedis(RedisParams{Store: store, Wait: time.Second})

	locker := Chain(local, remote)
	if _, err := locker.Acquire(context.Background(), "k"); err == nil {
		t.Fatal("expected chain to fail")
	}
	if local.held() != 0 {
		t.Fatal("local lock should be released after remote failure")
	}
}

func TestChainSingleLockerIsUnwrapped(t *testing.T) {
	local := NewLocal(time.Second)
	if got := Chain(nil, local); got != Locker(local) {
		t.Fatalf("expected the lone locker back, got %T", got)
	}
}

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) CompareAndDelete(_ context.Context, key, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[key] != token {
		return false, nil
	}
	delete(f.data, key)
	return true, nil
}

func (f *fakeStore) LockKey(scope, id string) string {
	return "hw:lock:" + scope + ":" + id
}

func (f *fakeStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}
