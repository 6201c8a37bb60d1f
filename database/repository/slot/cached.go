// File: database/repository/slot/cached.go
package slotRepo

import (
	"context"
	"encoding/json"
	"time"

	"basketly/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const activeSlotsCacheKey = "slots:catalog:active"

// Catalog is anything that can list active slots.
type Catalog interface {
	ActiveSlots(ctx context.Context) ([]models.RawSlot, error)
}

// CachedCatalog is a Redis read-through cache in front of a Catalog, shared by
// every cart session. Cache failures fall through to the underlying catalog.
type CachedCatalog struct {
	next   Catalog
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedCatalog(next Catalog, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedCatalog{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) ActiveSlots(ctx context.Context) ([]models.RawSlot, error) {
	data, err := c.client.Get(ctx, activeSlotsCacheKey).Bytes()
	switch {
	case err == nil:
		var slots []models.RawSlot
		jsonErr := json.Unmarshal(data, &slots)
		if jsonErr == nil {
			return slots, nil
		}
		c.logger.Warn("discarding unreadable slot catalog cache entry", zap.Error(jsonErr))
	case err != redis.Nil:
		c.logger.Warn("slot catalog cache read failed", zap.Error(err))
	}

	slots, err := c.next.ActiveSlots(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(slots); err == nil {
		if err := c.client.Set(ctx, activeSlotsCacheKey, b, c.ttl).Err(); err != nil {
			c.logger.Warn("slot catalog cache write failed", zap.Error(err))
		}
	}
	return slots, nil
}
