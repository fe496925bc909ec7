package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spellwrite/internal/models"
	"spellwrite/internal/security"
	"spellwrite/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// UserStore is the persistence AuthService needs. *repository.UserRepository implements it.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	CreateOAuthUser(ctx context.Context, email, name, provider, subject string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error)
	LinkOAuthProvider(ctx context.Context, userID, provider, subject string) error
	CreateSession(ctx context.Context, sessionID, userID string, expiresAt time.Time) (*models.Session, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// IssuedSession is a stored session plus the signed token the browser keeps
type IssuedSession struct {
	Session *models.Session
	Token   string
}

// AuthService handles authentication business logic
type AuthService struct {
	users           UserStore
	signer          *security.TokenSigner
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, signer *security.TokenSigner, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		users:           users,
		signer:          signer,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new password account
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	email = validation.NormalizeEmail(email)

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, hash, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*IssuedSession, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	issued, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return issued, user, nil
}

// OAuthLogin signs in the account linked to provider/subject. A first-time
// sign-in links an existing password account with the same email, or
// creates a new account.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*IssuedSession, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	email = validation.NormalizeEmail(email)

	user, err := s.users.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}

		switch {
		case existing != nil && existing.OAuthProvider != "":
			return nil, nil, ErrEmailTaken
		case existing != nil:
			if err := s.users.LinkOAuthProvider(ctx, existing.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			user = existing
		default:
			if strings.TrimSpace(name) == "" {
				name, _, _ = strings.Cut(email, "@")
			}
			user, err = s.users.CreateOAuthUser(ctx, email, strings.TrimSpace(name), provider, subject)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
	}

	issued, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return issued, user, nil
}

func (s *AuthService) startSession(ctx context.Context, userID string) (*IssuedSession, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration).UTC()

	session, err := s.users.CreateSession(ctx, sessionID, userID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signer.Sign(session.ID, userID, expiresAt)
	if err != nil {
		return nil, err
	}
	return &IssuedSession{Session: session, Token: token}, nil
}

// ValidateSession checks the token signature, then the stored session, and
// returns the signed-in user
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	session, err := s.users.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != claims.Subject {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.users.DeleteSession(ctx, session.ID)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout deletes the session behind the token. Unknown or malformed
// tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.users.DeleteSession(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}
