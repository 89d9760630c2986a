package redis

import (
	"context"
	"encoding/json"
	"time"

	"clocker/backend/internal/entity"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const zonePrefix = "clocker:zone:"

type ZoneSource interface {
	GetByCode(ctx context.Context, code string) (entity.Zone, error)
}

// ZoneCache serves zone lookups by code from Redis and falls back to the
// source on a miss or when Redis is unavailable.
type ZoneCache struct {
	client redis.UniversalClient
	source ZoneSource
	ttl    time.Duration
}

func NewZoneCache(client redis.UniversalClient, source ZoneSource, ttl time.Duration) *ZoneCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ZoneCache{client: client, source: source, ttl: ttl}
}

func (c *ZoneCache) GetByCode(ctx context.Context, code string) (entity.Zone, error) {
	raw, err := c.client.Get(ctx, zonePrefix+code).Bytes()
	switch {
	case err == nil:
		var zone entity.Zone
		if err := json.Unmarshal(raw, &zone); err == nil {
			return zone, nil
		}
		log.Ctx(ctx).Warn().Str("code", code).Msg("dropping undecodable cached zone")
	case err != redis.Nil:
		log.Ctx(ctx).Warn().Err(err).Str("code", code).Msg("zone cache unavailable")
	}

	zone, err := c.source.GetByCode(ctx, code)
	if err != nil {
		return entity.Zone{}, err
	}

	if raw, err := json.Marshal(zone); err == nil {
		if err := c.client.Set(ctx, zonePrefix+code, raw, c.ttl).Err(); err != nil {
			log.Ctx(ctx).Debug().Err(err).Str("code", code).Msg("caching zone")
		}
	}

	return zone, nil
}

// Invalidate drops the cached zone so the next lookup reads the source.
func (c *ZoneCache) Invalidate(ctx context.Context, codes ...string) {
	if len(codes) == 0 {
		return
	}

	keys := make([]string, 0, len(codes))
	for _, code := range codes {
		if code != "" {
			keys = append(keys, zonePrefix+code)
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("codes", codes).Msg("invalidating zone cache")
	}
}
