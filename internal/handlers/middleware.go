package handlers

import (
	"context"
	"net/http"
	"time"

	"spellwrite/internal/logger"
	"spellwrite/internal/models"
	"spellwrite/internal/security"

	"go.uber.org/zap"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	VisitorContextKey ContextKey = "visitor"
)

// SessionValidator resolves a session token to its user
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.User, error)
}

// AuthPublisher records the signed-in user of a visitor
type AuthPublisher interface {
	Publish(visitorID, userID string)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	sessions SessionValidator
	hub      AuthPublisher
	csrf     *security.CSRFGenerator
	limiter  *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(sessions SessionValidator, hub AuthPublisher, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		sessions: sessions,
		hub:      hub,
		csrf:     csrf,
		limiter:  limiter,
	}
}

// Identify assigns the visitor cookie, resolves the session cookie and
// publishes the visitor's current user so mounted workspaces follow
// sign-in, sign-out and expiry.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := ""
		if cookie, err := r.Cookie(security.VisitorCookieName); err == nil && cookie.Value != "" {
			visitorID = cookie.Value
		} else {
			visitorID = security.GenerateVisitorID()
			http.SetCookie(w, security.CreateVisitorCookie(r, visitorID))
		}

		var user *models.User
		if cookie, err := r.Cookie(security.SessionCookieName); err == nil && cookie.Value != "" {
			user, err = m.sessions.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				logger.Get().Debug("Discarding invalid session", zap.String("visitor_id", visitorID), zap.Error(err))
				http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
				user = nil
			}
		}

		userID := ""
		if user != nil {
			userID = user.ID
		}
		m.hub.Publish(visitorID, userID)

		ctx := context.WithValue(r.Context(), VisitorContextKey, visitorID)
		ctx = context.WithValue(ctx, UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFProtect rejects state-changing requests without a valid token for the visitor
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(CSRFHeaderName)
		if token == "" {
			token = r.FormValue(CSRFFormField)
		}
		if !m.csrf.ValidateToken(GetVisitorFromContext(r.Context()), token) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// CSRFToken returns the form token for the request's visitor
func (m *Middleware) CSRFToken(r *http.Request) string {
	token, err := m.csrf.GenerateToken(GetVisitorFromContext(r.Context()))
	if err != nil {
		return ""
	}
	return token
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			logger.Get().Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Get().Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetVisitorFromContext retrieves the visitor ID from the request context
func GetVisitorFromContext(ctx context.Context) string {
	visitorID, _ := ctx.Value(VisitorContextKey).(string)
	return visitorID
}
