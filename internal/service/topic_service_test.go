package service

import (
	"context"
	"testing"
	"time"

	"spellwrite/internal/cache"
	"spellwrite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTopics struct {
	topics   []models.Topic
	err      error
	requests []int
}

func (s *stubTopics) Count(ctx context.Context) (int, error) {
	return len(s.topics), s.err
}

func (s *stubTopics) ByOffset(ctx context.Context, offset int) (*models.Topic, error) {
	s.requests = append(s.requests, offset)
	if offset >= len(s.topics) {
		return nil, nil
	}
	t := s.topics[offset]
	return &t, nil
}

type mapCache struct {
	entries map[string]*models.Topic
	sets    int
}

func (c *mapCache) Get(ctx context.Context, day time.Time) (*models.Topic, error) {
	if t, ok := c.entries[cache.DayKey(day)]; ok {
		return t, nil
	}
	return nil, cache.ErrCacheMiss
}

func (c *mapCache) Set(ctx context.Context, day time.Time, topic *models.Topic) error {
	c.entries[cache.DayKey(day)] = topic
	c.sets++
	return nil
}

func TestDayIndex(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, 0, DayIndex(epoch, 3))
	assert.Equal(t, 1, DayIndex(epoch.Add(24*time.Hour), 3))
	assert.Equal(t, 1, DayIndex(epoch.Add(47*time.Hour), 3))
	assert.Equal(t, 0, DayIndex(epoch.Add(72*time.Hour), 3))
}

func TestTopicOfDayRotates(t *testing.T) {
	store := &stubTopics{topics: []models.Topic{{ID: 1, Title: "Space"}, {ID: 2, Title: "Ocean"}}}
	svc := NewTopicService(store, nil)

	svc.now = func() time.Time { return time.Unix(0, 0).Add(10 * time.Hour) }
	topic, err := svc.TopicOfDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Space", topic.Title)

	svc.now = func() time.Time { return time.Unix(0, 0).Add(30 * time.Hour) }
	topic, err = svc.TopicOfDay(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ocean", topic.Title)
}

func TestTopicOfDayUsesCache(t *testing.T) {
	store := &stubTopics{topics: []models.Topic{{ID: 1, Title: "Space"}}}
	c := &mapCache{entries: map[string]*models.Topic{}}
	svc := NewTopicService(store, c)

	first, err := svc.TopicOfDay(context.Background())
	require.NoError(t, err)
	second, err := svc.TopicOfDay(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Len(t, store.requests, 1)
	assert.Equal(t, 1, c.sets)
}

func TestTopicOfDayErrors(t *testing.T) {
	_, err := NewTopicService(&stubTopics{}, nil).TopicOfDay(context.Background())
	assert.ErrorIs(t, err, ErrNoTopics)

	_, err = NewTopicService(&stubTopics{err: assert.AnError}, nil).TopicOfDay(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
