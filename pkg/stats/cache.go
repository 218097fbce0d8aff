package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/observability/metrics"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "stats:summary:"

// Cache materializes computed summaries in Redis so repeated dashboard loads
// between submissions skip the full table scan.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, filter models.ResponseFilter) (models.StatsSummary, bool) {
	data, err := c.client.Get(ctx, cacheKey(filter)).Bytes()
	if err != nil {
		metrics.IncStatsCacheMisses()
		return models.StatsSummary{}, false
	}

	var summary models.StatsSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		logger.Log.WithError(err).Warn("discarding malformed cached summary")
		metrics.IncStatsCacheMisses()
		return models.StatsSummary{}, false
	}
	metrics.IncStatsCacheHits()
	return summary, true
}

func (c *Cache) Set(ctx context.Context, filter models.ResponseFilter, summary models.StatsSummary) {
	data, err := json.Marshal(summary)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to marshal summary for caching")
		return
	}
	if err := c.client.Set(ctx, cacheKey(filter), data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to cache summary")
	}
}

// Invalidate drops every cached summary; called when a submission event
// arrives.
func (c *Cache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to scan summary cache keys")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to invalidate summary cache")
	}
}

func cacheKey(filter models.ResponseFilter) string {
	channel := "-"
	if filter.Channel != nil {
		channel = string(*filter.Channel)
	}
	start, end := "-", "-"
	if filter.Start != nil {
		start = filter.Start.UTC().Format(time.RFC3339)
	}
	if filter.End != nil {
		end = filter.End.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%stype=%s|start=%s|end=%s", cacheKeyPrefix, channel, start, end)
}
