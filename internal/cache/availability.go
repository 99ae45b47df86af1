// Package cache holds resolved availability windows in Redis for the booking screen.
// Submission never reads from it; it only spares the database on repeated calendar views.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/metrics"

	"github.com/redis/go-redis/v9"
)

type AvailabilityCache interface {
	// Get looks up a window. On a miss the returned key pins the equipment version seen
	// before the store is read; pass it to Put so an Invalidate in between orphans the entry.
	// An empty key means the cache cannot be used for this window.
	Get(ctx context.Context, equipmentID int32, today, from, to calendar.Date) (cal *availability.Calendar, key string, ok bool)
	Put(ctx context.Context, key string, cal *availability.Calendar)
	// Invalidate drops every cached window for the equipment by bumping its version.
	Invalidate(ctx context.Context, equipmentID int32)
}

type redisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client, ttl time.Duration) AvailabilityCache {
	return &redisAvailabilityCache{client: client, ttl: ttl}
}

func versionKey(equipmentID int32) string {
	return fmt.Sprintf("availability:version:%d", equipmentID)
}

// windowKey embeds today so that a day rolling into the past is never served stale.
func (c *redisAvailabilityCache) windowKey(ctx context.Context, equipmentID int32, today, from, to calendar.Date) (string, error) {
	version, err := c.client.Get(ctx, versionKey(equipmentID)).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("availability:%d:%d:%s:%s:%s", equipmentID, version, today, from, to), nil
}

func (c *redisAvailabilityCache) Get(ctx context.Context, equipmentID int32, today, from, to calendar.Date) (*availability.Calendar, string, bool) {
	if c.client == nil || c.ttl <= 0 {
		return nil, "", false
	}
	key, err := c.windowKey(ctx, equipmentID, today, from, to)
	if err != nil {
		logger.Warn("Availability cache unreachable", "error", err)
		metrics.IncAvailabilityCache("error")
		return nil, "", false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Availability cache read failed", "key", key, "error", err)
		}
		metrics.IncAvailabilityCache("miss")
		return nil, key, false
	}
	var days []availability.DayAvailability
	if err := json.Unmarshal(val, &days); err != nil {
		metrics.IncAvailabilityCache("miss")
		return nil, key, false
	}
	metrics.IncAvailabilityCache("hit")
	return availability.FromDays(equipmentID, from, to, days), key, true
}

func (c *redisAvailabilityCache) Put(ctx context.Context, key string, cal *availability.Calendar) {
	if c.client == nil || c.ttl <= 0 || key == "" {
		return
	}
	data, err := json.Marshal(cal.Days())
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("Availability cache write failed", "key", key, "error", err)
	}
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, equipmentID int32) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey(equipmentID)).Err(); err != nil {
		logger.Warn("Availability cache invalidation failed", "equipmentID", equipmentID, "error", err)
	}
}
