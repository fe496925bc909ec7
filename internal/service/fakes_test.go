package service

import (
	"context"
	"sync"
	"time"

	"spellwrite/internal/models"
	"spellwrite/internal/repository"

	"github.com/google/uuid"
)

// memoryUsers is an in-memory UserStore
type memoryUsers struct {
	mu       sync.Mutex
	users    map[string]*models.User
	sessions map[string]*models.Session
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{
		users:    make(map[string]*models.User),
		sessions: make(map[string]*models.Session),
	}
}

func (m *memoryUsers) CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, Name: name, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryUsers) CreateOAuthUser(ctx context.Context, email, name, provider, subject string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Email: email, Name: name, OAuthProvider: provider, OAuthSubject: subject}
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (m *memoryUsers) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.OAuthProvider == provider && u.OAuthSubject == subject {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) LinkOAuthProvider(ctx context.Context, userID, provider, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.OAuthProvider != "" {
		return repository.ErrOAuthAlreadyLinked
	}
	u.OAuthProvider, u.OAuthSubject = provider, subject
	return nil
}

func (m *memoryUsers) CreateSession(ctx context.Context, sessionID, userID string, expiresAt time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.Session{ID: sessionID, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	m.sessions[sessionID] = s
	return s, nil
}

func (m *memoryUsers) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (m *memoryUsers) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *memoryUsers) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryUsers) expireAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.ExpiresAt = time.Now().Add(-time.Minute)
	}
}

func journalEntry(authorID, text string) *models.WritingEntry {
	return &models.WritingEntry{AuthorUserID: authorID, Text: text}
}
