package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
)

const (
	defaultRedisTTL   = 30 * time.Second
	defaultRetryEvery = 25 * time.Millisecond
	releaseTimeout    = 2 * time.Second
)

// redisStore is the subset of pkg/redis used for distributed locks.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	CompareAndDelete(ctx context.Context, key, token string) (bool, error)
	LockKey(scope, id string) string
}

// Redis is a SETNX lock shared by every API instance. The TTL bounds how long
// a crashed holder can block a business.
type Redis struct {
	store      redisStore
	logg       *logger.Logger
	wait       time.Duration
	ttl        time.Duration
	retryEvery time.Duration
}

type RedisParams struct {
	Store  redisStore
	Logger *logger.Logger
	Wait   time.Duration
	TTL    time.Duration
}

func NewRedis(params RedisParams) (*Redis, error) {
	if params.Store == nil {
		return nil, errors.New("redis store required for lock")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &Redis{
		store:      params.Store,
		logg:       params.Logger,
		wait:       params.Wait,
		ttl:        ttl,
		retryEvery: defaultRetryEvery,
	}, nil
}

func (r *Redis) Acquire(ctx context.Context, key string) (Release, error) {
	redisKey := r.store.LockKey("ledger", key)
	token := uuid.NewString()

	var deadline <-chan time.Time
	if r.wait > 0 {
		timer := time.NewTimer(r.wait)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		ok, err := r.store.SetNX(ctx, redisKey, token, r.ttl)
		if err != nil {
			return nil, fmt.Errorf("setnx %s: %w", redisKey, err)
		}
		if ok {
			return r.releaser(redisKey, token), nil
		}

		retry := time.NewTimer(r.retryEvery)
		select {
		case <-ctx.Done():
			retry.Stop()
			return nil, ctx.Err()
		case <-deadline:
			retry.Stop()
			return nil, ErrTimeout
		case <-retry.C:
		}
	}
}

func (r *Redis) releaser(key, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			// detached from the request so a cancelled caller still frees the key
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if _, err := r.store.CompareAndDelete(ctx, key, token); err != nil && r.logg != nil {
				r.logg.Error(r.logg.WithField(ctx, "lock_key", key), "failed to release redis lock", err)
			}
		})
	}
}
