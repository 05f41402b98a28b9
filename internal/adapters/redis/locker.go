package redisad

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	lockPrefix = "lock:"
	lockPoll   = 25 * time.Millisecond
)

// releases the lock only while we still own it
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a Redis-backed mutual exclusion keyed by string, shared by all
// replicas pointing at the same Redis. A lease TTL bounds how long a crashed
// holder can block others.
type Locker struct {
	c   *redis.Client
	ttl time.Duration
}

func NewLocker(c *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{c: c, ttl: ttl}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	k := lockPrefix + key
	token := uuid.NewString()

	t := time.NewTicker(lockPoll)
	defer t.Stop()
	for {
		ok, err := l.c.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	return func() {
		// release must survive a cancelled request context
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(rctx, l.c, []string{k}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("lock release failed")
		}
	}, nil
}
