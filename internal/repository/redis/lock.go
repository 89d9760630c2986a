// Package redis holds the Redis backed helpers: the per person clock lock and
// the zone lookup cache.
package redis

import (
	"context"
	"time"

	"clocker/backend/internal/service/clocking"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const lockPrefix = "clocker:lock:person:"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker takes a short lived Redis lock per person so that pairing is
// serialized across instances. Calls go through a circuit breaker; while
// Redis is failing the in-process fallback is used instead.
type Locker struct {
	client   redis.UniversalClient
	cb       *gobreaker.CircuitBreaker
	fallback clocking.Locker
	ttl      time.Duration
	wait     time.Duration
	retry    time.Duration
}

func NewLocker(client redis.UniversalClient, fallback clocking.Locker) *Locker {
	if fallback == nil {
		fallback = clocking.NewLocalLocker()
	}

	settings := gobreaker.Settings{
		Name:        "redis-lock",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &Locker{
		client:   client,
		cb:       gobreaker.NewCircuitBreaker(settings),
		fallback: fallback,
		ttl:      10 * time.Second,
		wait:     5 * time.Second,
		retry:    50 * time.Millisecond,
	}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := lockPrefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	for {
		acquired, err := l.cb.Execute(func() (interface{}, error) {
			return l.client.SetNX(waitCtx, redisKey, token, l.ttl).Result()
		})
		if err != nil {
			if ctxErr := waitCtx.Err(); ctxErr != nil {
				return nil, errors.Wrap(ctxErr, "waiting for person lock")
			}

			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis lock unavailable, using local lock")
			return l.fallback.Lock(ctx, key)
		}

		if acquired.(bool) {
			return func() { l.release(redisKey, token) }, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, errors.Wrap(waitCtx.Err(), "waiting for person lock")
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		// The key expires on its own after ttl.
		log.Warn().Err(err).Str("key", key).Msg("releasing person lock")
	}
}
