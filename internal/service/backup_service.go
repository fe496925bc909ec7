package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"spellwrite/internal/database"
	"spellwrite/internal/logger"
	"spellwrite/internal/models"
	"spellwrite/internal/repository"

	"go.uber.org/zap"
)

const backupVersion = "2.0"

// BackupData is the portable JSON form of the database
type BackupData struct {
	Version        string                `json:"version"`
	ExportedAt     time.Time             `json:"exported_at"`
	DatabaseType   string                `json:"database_type"`
	Users          []UserBackup          `json:"users"`
	WordLists      []models.WordList     `json:"word_lists"`
	Topics         []models.Topic        `json:"topics"`
	WritingEntries []models.WritingEntry `json:"writing_entries"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ImportResult counts what an import wrote
type ImportResult struct {
	Users          int
	SkippedUsers   int
	WordLists      int
	Topics         int
	WritingEntries int
	Words          []string
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes every user, word list, topic and entry as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	users, err := repository.NewUserRepository(s.db).GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup(u))
	}

	if backup.WordLists, err = repository.NewWordListRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export word lists: %w", err)
	}
	if backup.Topics, err = repository.NewTopicRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export topics: %w", err)
	}
	if backup.WritingEntries, err = repository.NewWritingRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export writing entries: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	logger.Get().Info("Database exported",
		zap.Int("users", len(backup.Users)),
		zap.Int("word_lists", len(backup.WordLists)),
		zap.Int("topics", len(backup.Topics)),
		zap.Int("writing_entries", len(backup.WritingEntries)),
	)
	return backup, nil
}

// Import restores a backup in one transaction. With clearExisting the
// current content is deleted first; otherwise users whose email already
// exists are kept and their lists and entries are re-pointed at the
// existing account.
func (s *BackupService) Import(ctx context.Context, r io.Reader, clearExisting bool) (*ImportResult, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}

	result := &ImportResult{}
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		lists := repository.NewWordListRepository(tx)
		topics := repository.NewTopicRepository(tx)
		entries := repository.NewWritingRepository(tx)

		if clearExisting {
			if err := entries.DeleteAll(ctx); err != nil {
				return err
			}
			if err := lists.DeleteAll(ctx); err != nil {
				return err
			}
			if err := topics.DeleteAll(ctx); err != nil {
				return err
			}
			if err := users.DeleteAll(ctx); err != nil {
				return err
			}
		}

		ownerIDs := make(map[string]string, len(backup.Users))
		for _, u := range backup.Users {
			existing, err := users.GetUserByEmail(ctx, u.Email)
			if err != nil {
				return err
			}
			if existing != nil {
				ownerIDs[u.ID] = existing.ID
				result.SkippedUsers++
				continue
			}
			user := models.User(u)
			if err := users.InsertUser(ctx, &user); err != nil {
				return err
			}
			ownerIDs[u.ID] = u.ID
			result.Users++
		}

		remap := func(id string) string {
			if mapped, ok := ownerIDs[id]; ok {
				return mapped
			}
			return id
		}

		for _, l := range backup.WordLists {
			if _, err := lists.Create(ctx, remap(l.OwnerUserID), l.Name, l.Words); err != nil {
				return err
			}
			result.WordLists++
			result.Words = append(result.Words, l.Words...)
		}

		for _, t := range backup.Topics {
			if _, err := topics.Create(ctx, t.Title, t.Description, t.ImageRef); err != nil {
				return err
			}
			result.Topics++
		}

		for _, e := range backup.WritingEntries {
			e.AuthorUserID = remap(e.AuthorUserID)
			if err := entries.Create(ctx, &e); err != nil {
				return err
			}
			result.WritingEntries++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import backup: %w", err)
	}

	logger.Get().Info("Database imported",
		zap.Int("users", result.Users),
		zap.Int("skipped_users", result.SkippedUsers),
		zap.Int("word_lists", result.WordLists),
		zap.Int("topics", result.Topics),
		zap.Int("writing_entries", result.WritingEntries),
	)
	return result, nil
}
