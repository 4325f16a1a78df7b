package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "normativa/pkg/domain"
)

// Cache is a read-through Redis layer in front of a Service. Redis failures
// degrade to direct reads; the cache is an optimization, never a correctness
// dependency. It also implements compliance.SummaryInvalidator so a
// recalculation drops the stale entry.
type Cache struct {
	next   Summarizer
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(next Summarizer, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(condoID id.CondoID) string {
	return "summary:" + condoID.String()
}

func (c *Cache) Summary(ctx context.Context, condoID id.CondoID) (*Summary, error) {
	key := cacheKey(condoID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Summary
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		// Undecodable entry: drop it and rebuild.
		c.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "summary cache read failed", "condo_id", condoID, "error", err)
	}

	summary, err := c.next.Summary(ctx, condoID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(summary); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "summary cache write failed", "condo_id", condoID, "error", err)
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary after the alert set changed.
func (c *Cache) Invalidate(ctx context.Context, condoID id.CondoID) error {
	return c.client.Del(ctx, cacheKey(condoID)).Err()
}
