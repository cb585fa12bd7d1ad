package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"

	"github.com/nandanugg/fleet-compliance/module/core/internal/repository/cache"
)

var _ cache.VehicleLocker = (*VehicleLocker)(nil)

type VehicleLocker struct {
	locker  *redislock.Client
	ttl     time.Duration
	retries int
}

func NewVehicleLocker(client redislock.RedisClient, ttl time.Duration, retries int) *VehicleLocker {
	return &VehicleLocker{
		locker:  redislock.New(client),
		ttl:     ttl,
		retries: retries,
	}
}

func (l *VehicleLocker) Lock(ctx context.Context, vehicleID string) (func(context.Context) error, error) {
	lock, err := l.locker.Obtain(ctx, "lock:vehicle:"+vehicleID, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), l.retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("lock vehicle %s: %w", vehicleID, cache.ErrLockNotObtained)
	}
	if err != nil {
		return nil, fmt.Errorf("lock vehicle %s: %w", vehicleID, err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("unlock vehicle %s: %w", vehicleID, err)
		}
		return nil
	}, nil
}
