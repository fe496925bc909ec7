package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spellwrite/internal/cache"
	"spellwrite/internal/logger"
	"spellwrite/internal/models"

	"go.uber.org/zap"
)

// ErrNoTopics is returned when no writing topics have been loaded
var ErrNoTopics = errors.New("no writing topics available")

// TopicStore reads topics in id order
type TopicStore interface {
	Count(ctx context.Context) (int, error)
	ByOffset(ctx context.Context, offset int) (*models.Topic, error)
}

// TopicCache remembers the topic chosen for a day
type TopicCache interface {
	Get(ctx context.Context, day time.Time) (*models.Topic, error)
	Set(ctx context.Context, day time.Time, topic *models.Topic) error
}

// TopicService picks the topic of the day. Every visitor sees the same
// topic on a given UTC day; the choice rotates through topics by id.
type TopicService struct {
	store TopicStore
	cache TopicCache
	now   func() time.Time
}

// NewTopicService creates a topic service. cache may be nil.
func NewTopicService(store TopicStore, topicCache TopicCache) *TopicService {
	return &TopicService{store: store, cache: topicCache, now: time.Now}
}

// TopicOfDay returns today's topic
func (s *TopicService) TopicOfDay(ctx context.Context) (*models.Topic, error) {
	day := s.now().UTC().Truncate(24 * time.Hour)

	if s.cache != nil {
		topic, err := s.cache.Get(ctx, day)
		if err == nil {
			return topic, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Get().Warn("Topic cache read failed", zap.Error(err))
		}
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoTopics
	}

	topic, err := s.store.ByOffset(ctx, DayIndex(day, count))
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, fmt.Errorf("topic of the day: %w", ErrNoTopics)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, day, topic); err != nil {
			logger.Get().Warn("Topic cache write failed", zap.Error(err))
		}
	}
	return topic, nil
}

// DayIndex maps a day to a position in a list of count topics
func DayIndex(day time.Time, count int) int {
	days := day.UTC().Unix() / int64(24*time.Hour/time.Second)
	return int(days % int64(count))
}
