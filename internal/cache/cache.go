package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Oceanbluesol/cmhindia/internal/logger"
)

const (
	KeyEventList     = "events:list"
	KeyEventFeatured = "events:featured"
	KeyAdminOverview = "admin:overview"
)

// KeyEventDetail builds the cache key for one event's detail view.
func KeyEventDetail(id string) string {
	return "events:detail:" + id
}

// Cache is a best-effort read-through cache for rendered list/detail payloads.
// Redis being down never fails a request; reads fall through to the database
// and writes are skipped.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON loads the cached payload at key into dest. Returns false on miss or
// any redis failure.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.L().Warn("cache payload corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetJSON stores the payload at key with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateEvent drops every view affected by a mutation of the given event:
// the public list, the featured carousel, the detail page and the admin
// overview counts.
func (c *Cache) InvalidateEvent(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	keys := []string{KeyEventList, KeyEventFeatured, KeyAdminOverview}
	if id != "" {
		keys = append(keys, KeyEventDetail(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.L().Warn("cache invalidation failed", zap.String("event_id", id), zap.Error(err))
	}
}
