package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when a refresh lock is already held
var ErrLockNotAcquired = errors.New("refresh already in progress")

// RefreshLocker guarantees at most one concurrent obligation refresh per
// profile. Acquisition is non-blocking: a second refresh for the same
// profile fails fast instead of queueing.
type RefreshLocker interface {
	Acquire(ctx context.Context, profileID string) (release func(), err error)
}

var refreshUnlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// RedisRefreshLocker holds refresh locks as SETNX keys with a TTL so a
// crashed holder cannot wedge a profile forever. An in-process mutex map
// backs the redis lock, which also makes the locker usable without redis.
type RedisRefreshLocker struct {
	redis *redis.Client
	ttl   time.Duration

	mu   sync.Mutex
	held map[string]struct{}
}

// NewRefreshLocker creates a refresh locker. redisClient may be nil, in
// which case only in-process serialization applies (sufficient for a single
// instance; obligation data is scoped to one profile).
func NewRefreshLocker(redisClient *redis.Client, ttl time.Duration) *RedisRefreshLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisRefreshLocker{
		redis: redisClient,
		ttl:   ttl,
		held:  make(map[string]struct{}),
	}
}

func refreshLockKey(profileID string) string {
	return fmt.Sprintf("%slock:refresh:%s", cacheKeyPrefix, profileID)
}

// Acquire takes the refresh lock for a profile. The returned release
// function must be called exactly once.
func (l *RedisRefreshLocker) Acquire(ctx context.Context, profileID string) (func(), error) {
	l.mu.Lock()
	if _, inUse := l.held[profileID]; inUse {
		l.mu.Unlock()
		return nil, ErrLockNotAcquired
	}
	l.held[profileID] = struct{}{}
	l.mu.Unlock()

	releaseLocal := func() {
		l.mu.Lock()
		delete(l.held, profileID)
		l.mu.Unlock()
	}

	if l.redis == nil {
		return releaseLocal, nil
	}

	key := refreshLockKey(profileID)
	value := uuid.New().String()
	ok, err := l.redis.SetNX(ctx, key, value, l.ttl).Result()
	if err != nil {
		releaseLocal()
		return nil, fmt.Errorf("failed to set refresh lock: %w", err)
	}
	if !ok {
		releaseLocal()
		return nil, ErrLockNotAcquired
	}

	return func() {
		// Delete only if we still own the key; a TTL expiry followed by
		// another holder must not be released by us.
		_, _ = refreshUnlockScript.Run(context.Background(), l.redis, []string{key}, value).Result()
		releaseLocal()
	}, nil
}
