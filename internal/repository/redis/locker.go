package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"tiffin-app-go/internal/lock"
	"tiffin-app-go/pkg/logger"
)

const (
	defaultLockTTL   = 10 * time.Second
	lockRetryBackoff = 50 * time.Millisecond
	lockRetryLimit   = 20
)

// UserLocker serializes writes for one account across instances.
type UserLocker struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	log    logger.Logger
}

func NewUserLocker(client goredis.UniversalClient, prefix string, ttl time.Duration, log logger.Logger) *UserLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UserLocker{
		client: redislock.New(client),
		prefix: normalizePrefix(prefix) + ":lock:",
		ttl:    ttl,
		log:    log,
	}
}

func (l *UserLocker) Acquire(ctx context.Context, key string) (func(), error) {
	held, err := l.client.Obtain(ctx, l.prefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryBackoff), lockRetryLimit),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, lock.ErrBusy
	}
	if err != nil {
		return nil, err
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheOpTimeout)
		defer cancel()
		if err := held.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.InternalError("lock: release failed", err, "key", key)
		}
	}
	return release, nil
}
