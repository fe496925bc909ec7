package repository

import (
	"context"
	"fmt"

	"spellwrite/internal/database"
	"spellwrite/internal/models"
)

// WritingRepository stores journal entries. Entries are never updated.
type WritingRepository struct {
	db database.DBTX
}

// NewWritingRepository creates a new writing repository
func NewWritingRepository(db database.DBTX) *WritingRepository {
	return &WritingRepository{db: db}
}

// Create appends an entry. The caller assigns ID and CreatedAt.
func (r *WritingRepository) Create(ctx context.Context, entry *models.WritingEntry) error {
	query := `
		INSERT INTO writing_entries (id, author_user_id, text, topic_title, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query, entry.ID, entry.AuthorUserID, entry.Text, entry.TopicTitle, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create writing entry: %w", err)
	}
	return nil
}

// ListByAuthor returns the author's entries, newest first
func (r *WritingRepository) ListByAuthor(ctx context.Context, authorUserID string) ([]models.WritingEntry, error) {
	query := `
		SELECT id, author_user_id, text, topic_title, created_at
		FROM writing_entries
		WHERE author_user_id = ?
		ORDER BY created_at DESC
	`
	var entries []models.WritingEntry
	if err := r.db.SelectContext(ctx, &entries, query, authorUserID); err != nil {
		return nil, fmt.Errorf("failed to query writing entries: %w", err)
	}
	return entries, nil
}

// ListAll returns every entry in creation order, used by backups
func (r *WritingRepository) ListAll(ctx context.Context) ([]models.WritingEntry, error) {
	var entries []models.WritingEntry
	if err := r.db.SelectContext(ctx, &entries, "SELECT id, author_user_id, text, topic_title, created_at FROM writing_entries ORDER BY created_at ASC"); err != nil {
		return nil, fmt.Errorf("failed to query writing entries: %w", err)
	}
	return entries, nil
}

// DeleteAll removes every entry
func (r *WritingRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM writing_entries"); err != nil {
		return fmt.Errorf("failed to delete writing entries: %w", err)
	}
	return nil
}
