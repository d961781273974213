package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker holds keys in redis so several processes can share them
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	prefix string
}

// NewRedisLocker creates a locker whose keys expire after ttl if never released
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		prefix: "lock:",
	}
}

// Verify interface compliance
var _ Locker = (*RedisLocker)(nil)

func (l *RedisLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	lock, err := l.client.Obtain(ctx, l.prefix+key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (r *redisLock) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

// RequisitionKey is the lock key of one requisition
func RequisitionKey(id fmt.Stringer) string {
	return "requisition:" + id.String()
}

// InitiationKey is the lock key guarding initiation for a facility and program
func InitiationKey(facilityID, programID fmt.Stringer) string {
	return "initiate:" + facilityID.String() + ":" + programID.String()
}
