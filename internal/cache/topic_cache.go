package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spellwrite/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when the requested day has no cached topic
var ErrCacheMiss = errors.New("cache miss")

// TopicCache stores the topic chosen for each calendar day
type TopicCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTopicCache creates a topic cache. A nil client yields a cache that
// always misses.
func NewTopicCache(client *redis.Client, ttl time.Duration) *TopicCache {
	return &TopicCache{client: client, ttl: ttl}
}

// DayKey returns the cache key for the given day, e.g. spellwrite:topic:day:2024-05-01
func DayKey(day time.Time) string {
	return GenerateCacheKey("topic", "day", day.UTC().Format("2006-01-02"))
}

// Get returns the cached topic for the day
func (c *TopicCache) Get(ctx context.Context, day time.Time) (*models.Topic, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}

	val, err := c.client.Get(ctx, DayKey(day)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var topic models.Topic
	if err := json.Unmarshal([]byte(val), &topic); err != nil {
		return nil, fmt.Errorf("failed to decode cached topic: %w", err)
	}
	return &topic, nil
}

// Set stores the topic for the day
func (c *TopicCache) Set(ctx context.Context, day time.Time, topic *models.Topic) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(topic)
	if err != nil {
		return fmt.Errorf("failed to encode topic: %w", err)
	}
	return c.client.Set(ctx, DayKey(day), string(data), c.ttl).Err()
}
