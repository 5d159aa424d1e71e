package cache

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// failureWindow bounds how long consecutive failures are remembered
const failureWindow = 15 * time.Minute

const maxLockout = 30 * time.Second

// Throttle tracks failed logins per email
type Throttle interface {
	// Locked returns the remaining lockout, zero when attempts are allowed
	Locked(ctx context.Context, email string) (time.Duration, error)
	// Fail records a failed attempt and returns the lockout it triggered
	Fail(ctx context.Context, email string) (time.Duration, error)
	Reset(ctx context.Context, email string) error
}

// Lockout is the back-off after failures consecutive failures once
// maxFailures is reached: 2^failures seconds capped at 30s.
func Lockout(failures, maxFailures int) time.Duration {
	if failures < maxFailures || failures <= 0 {
		return 0
	}
	// 2^5s already exceeds the cap
	if failures >= 5 {
		return maxLockout
	}
	return time.Duration(1<<uint(failures)) * time.Second
}

// RedisThrottle keeps counters and lock keys in Redis
type RedisThrottle struct {
	c           *redis.Client
	maxFailures int
}

func NewRedisThrottle(c *redis.Client, maxFailures int) *RedisThrottle {
	return &RedisThrottle{c: c, maxFailures: maxFailures}
}

func throttleKeys(email string) (fails, lock string) {
	e := strings.ToLower(strings.TrimSpace(email))
	return "ordermenu:login:fail:" + e, "ordermenu:login:lock:" + e
}

func (r *RedisThrottle) Locked(ctx context.Context, email string) (time.Duration, error) {
	_, lockKey := throttleKeys(email)
	ttl, err := r.c.PTTL(ctx, lockKey).Result()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read login lock")
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *RedisThrottle) Fail(ctx context.Context, email string) (time.Duration, error) {
	failKey, lockKey := throttleKeys(email)

	var incr *redis.IntCmd
	_, err := r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, failKey)
		p.Expire(ctx, failKey, failureWindow)
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to count login failure")
	}

	lock := Lockout(int(incr.Val()), r.maxFailures)
	if lock > 0 {
		if err := r.c.Set(ctx, lockKey, 1, lock).Err(); err != nil {
			return 0, errors.Wrap(err, "failed to set login lock")
		}
	}
	return lock, nil
}

func (r *RedisThrottle) Reset(ctx context.Context, email string) error {
	failKey, lockKey := throttleKeys(email)
	return errors.Wrap(r.c.Del(ctx, failKey, lockKey).Err(), "failed to reset login throttle")
}

// NopThrottle never locks anyone out
type NopThrottle struct{}

func (NopThrottle) Locked(context.Context, string) (time.Duration, error) { return 0, nil }
func (NopThrottle) Fail(context.Context, string) (time.Duration, error)   { return 0, nil }
func (NopThrottle) Reset(context.Context, string) error                   { return nil }
