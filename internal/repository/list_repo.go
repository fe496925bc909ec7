package repository

import (
	"context"
	"fmt"
	"time"

	"spellwrite/internal/database"
	"spellwrite/internal/models"
)

// WordListRepository handles database operations for word lists
type WordListRepository struct {
	db database.DBTX
}

// NewWordListRepository creates a new word list repository
func NewWordListRepository(db database.DBTX) *WordListRepository {
	return &WordListRepository{db: db}
}

// ListByOwner returns every list owned by the user, oldest first
func (r *WordListRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]models.WordList, error) {
	query := `
		SELECT id, owner_user_id, name, words, created_at
		FROM word_lists
		WHERE owner_user_id = ?
		ORDER BY id ASC
	`
	var lists []models.WordList
	if err := r.db.SelectContext(ctx, &lists, query, ownerUserID); err != nil {
		return nil, fmt.Errorf("failed to query word lists: %w", err)
	}
	return lists, nil
}

// ListAll returns every word list, used by backups
func (r *WordListRepository) ListAll(ctx context.Context) ([]models.WordList, error) {
	var lists []models.WordList
	if err := r.db.SelectContext(ctx, &lists, "SELECT id, owner_user_id, name, words, created_at FROM word_lists ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("failed to query word lists: %w", err)
	}
	return lists, nil
}

// Create stores a new word list
func (r *WordListRepository) Create(ctx context.Context, ownerUserID, name string, words []string) (*models.WordList, error) {
	list := &models.WordList{
		OwnerUserID: ownerUserID,
		Name:        name,
		Words:       models.StringList(words),
		CreatedAt:   time.Now().UTC(),
	}

	query := "INSERT INTO word_lists (owner_user_id, name, words, created_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, list.OwnerUserID, list.Name, list.Words, list.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create word list: %w", err)
	}
	list.ID = id
	return list, nil
}

// DeleteAll removes every word list
func (r *WordListRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM word_lists"); err != nil {
		return fmt.Errorf("failed to delete word lists: %w", err)
	}
	return nil
}
