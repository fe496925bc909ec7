package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookieName holds the signed session token
	SessionCookieName = "session_token"
	// VisitorCookieName identifies the browser's practice workspace
	VisitorCookieName = "visitor_id"

	visitorCookieLifetime = 365 * 24 * time.Hour
)

// GenerateSessionID creates a new UUID for session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// GenerateVisitorID creates a new UUID for a browser workspace
func GenerateVisitorID() string {
	return uuid.New().String()
}

// IsSecureRequest determines if the request arrived over HTTPS, directly
// or through a reverse proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if r.Header.Get("X-Forwarded-Proto") == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie creates a session cookie with proper security flags
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateVisitorCookie creates the long-lived workspace cookie
func CreateVisitorCookie(r *http.Request, visitorID string) *http.Cookie {
	return CreateSessionCookie(r, VisitorCookieName, visitorID, time.Now().Add(visitorCookieLifetime))
}

// CreateDeleteCookie creates a cookie that clears name
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
