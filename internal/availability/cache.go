package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/klinikware/booking-platform/pkg/logging"
)

// Cache stores resolved day availability in redis. Entries are
// dropped explicitly when a booking, cancellation or schedule edit
// touches the date; the TTL only bounds staleness if an invalidation
// is missed.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCache creates an availability cache. client may be nil, in which
// case every lookup misses.
func NewCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Default()
	}
	return &Cache{redis: client, ttl: ttl, logger: logger}
}

func (c *Cache) key(productID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("avail:day:%s:%s", date.Format(dateLayout), productID)
}

// GetDay returns the cached slot list for (product, date). The second
// return reports a hit; cache errors count as misses.
func (c *Cache) GetDay(ctx context.Context, productID uuid.UUID, date time.Time) ([]string, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.key(productID, date)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("availability cache read failed", "error", err)
		return nil, false
	}
	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("availability cache entry corrupt", "error", err)
		return nil, false
	}
	return slots, true
}

// SetDay stores the slot list for (product, date). Best-effort.
func (c *Cache) SetDay(ctx context.Context, productID uuid.UUID, date time.Time, slots []string) {
	if c == nil || c.redis == nil {
		return
	}
	if slots == nil {
		slots = []string{}
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.key(productID, date), data, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", "error", err)
	}
}

// InvalidateDate drops every product's cached entry for a date.
func (c *Cache) InvalidateDate(ctx context.Context, date time.Time) {
	c.invalidatePattern(ctx, fmt.Sprintf("avail:day:%s:*", date.Format(dateLayout)))
}

// InvalidateAll drops all cached availability. Used after weekly
// template edits, which touch every future date on a weekday.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.invalidatePattern(ctx, "avail:day:*")
}

func (c *Cache) invalidatePattern(ctx context.Context, pattern string) {
	if c == nil || c.redis == nil {
		return
	}
	keys, err := c.redis.Keys(ctx, pattern).Result()
	if err != nil {
		c.logger.Warn("availability cache scan failed", "error", err, "pattern", pattern)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", "error", err, "pattern", pattern)
	}
}
