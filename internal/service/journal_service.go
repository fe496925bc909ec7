package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"spellwrite/internal/logger"
	"spellwrite/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidEntry is returned for entries without an author or text
var ErrInvalidEntry = errors.New("writing entry needs an author and text")

const notifyTimeout = 10 * time.Second

// EntryStore appends writing entries
type EntryStore interface {
	Create(ctx context.Context, entry *models.WritingEntry) error
}

// UserLookup finds the author to notify
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SaveNotifier is told about each saved entry
type SaveNotifier interface {
	IsEnabled() bool
	SendWritingSaved(ctx context.Context, toEmail, toName, topicTitle, text string) error
}

// JournalService persists writing entries and e-mails the author a copy
type JournalService struct {
	entries  EntryStore
	users    UserLookup
	notifier SaveNotifier

	pending sync.WaitGroup
}

// NewJournalService creates a journal service. users and notifier may be nil.
func NewJournalService(entries EntryStore, users UserLookup, notifier SaveNotifier) *JournalService {
	return &JournalService{entries: entries, users: users, notifier: notifier}
}

// Create stores the entry, filling in ID and CreatedAt when unset. The
// author's e-mail copy is sent in the background.
func (s *JournalService) Create(ctx context.Context, entry *models.WritingEntry) error {
	if entry.AuthorUserID == "" || strings.TrimSpace(entry.Text) == "" {
		return ErrInvalidEntry
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return err
	}

	if s.notifier != nil && s.users != nil && s.notifier.IsEnabled() {
		saved := *entry
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.notify(ctx, &saved)
		}()
	}
	return nil
}

// Wait blocks until every queued save notification has been sent or given up
func (s *JournalService) Wait() {
	s.pending.Wait()
}

func (s *JournalService) notify(ctx context.Context, entry *models.WritingEntry) {
	log := logger.Get().With(zap.String("entry_id", entry.ID), zap.String("user_id", entry.AuthorUserID))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	user, err := s.users.GetUserByID(ctx, entry.AuthorUserID)
	if err != nil || user == nil {
		log.Warn("Could not look up author for save notification", zap.Error(err))
		return
	}

	if err := s.notifier.SendWritingSaved(ctx, user.Email, user.Name, entry.TopicTitle, entry.Text); err != nil {
		log.Warn("Failed to send save notification", zap.Error(err))
	}
}
