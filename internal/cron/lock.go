package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const defaultLockTTL = time.Hour

// Lock guards a single job run across worker instances.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Locker hands out the lock of a job by name.
type Locker interface {
	For(job string) Lock
}

// RedisLocker keys one lock per job under sf:lock:<job>.
type RedisLocker struct {
	store redis.Claimer
	ttl   time.Duration
}

func NewRedisLocker(store redis.Claimer, ttl time.Duration) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("claim store required for job locks")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{store: store, ttl: ttl}, nil
}

func (l *RedisLocker) For(job string) Lock {
	return &redisLock{store: l.store, key: redis.LockKey(job), ttl: l.ttl}
}

type redisLock struct {
	store redis.Claimer
	key   string
	ttl   time.Duration
	token string
}

// Acquire stores an owner token naming this instance. The TTL bounds how long
// a crashed worker can hold the job.
func (l *redisLock) Acquire(ctx context.Context) (bool, error) {
	token := instance.GetID() + ":" + uuid.NewString()
	won, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if won {
		l.token = token
	}
	return won, nil
}

// Release is a no-op unless this lock still owns the key.
func (l *redisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if _, err := l.store.DeleteIfValue(ctx, l.key, token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
