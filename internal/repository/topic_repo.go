package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spellwrite/internal/database"
	"spellwrite/internal/models"
)

// TopicRepository handles database operations for writing topics
type TopicRepository struct {
	db database.DBTX
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db database.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

// Count returns the number of topics
func (r *TopicRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM topics"); err != nil {
		return 0, fmt.Errorf("failed to count topics: %w", err)
	}
	return count, nil
}

// ByOffset returns the topic at position offset when ordered by id.
// It returns nil, nil when the offset is past the end.
func (r *TopicRepository) ByOffset(ctx context.Context, offset int) (*models.Topic, error) {
	query := `
		SELECT id, title, description, image_ref, created_at
		FROM topics
		ORDER BY id ASC
		LIMIT 1 OFFSET ?
	`
	topic := &models.Topic{}
	err := r.db.GetContext(ctx, topic, query, offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return topic, nil
}

// ListAll returns every topic ordered by id
func (r *TopicRepository) ListAll(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := r.db.SelectContext(ctx, &topics, "SELECT id, title, description, image_ref, created_at FROM topics ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	return topics, nil
}

// Create stores a new topic
func (r *TopicRepository) Create(ctx context.Context, title, description, imageRef string) (*models.Topic, error) {
	topic := &models.Topic{
		Title:       title,
		Description: description,
		ImageRef:    imageRef,
		CreatedAt:   time.Now().UTC(),
	}

	query := "INSERT INTO topics (title, description, image_ref, created_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, topic.Title, topic.Description, topic.ImageRef, topic.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	topic.ID = id
	return topic, nil
}

// DeleteAll removes every topic
func (r *TopicRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM topics"); err != nil {
		return fmt.Errorf("failed to delete topics: %w", err)
	}
	return nil
}
