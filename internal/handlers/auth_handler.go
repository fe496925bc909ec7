package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"spellwrite/internal/models"
	"spellwrite/internal/security"
	"spellwrite/internal/service"
	"spellwrite/internal/validation"
)

// Authenticator is the account API the auth pages use. *service.AuthService implements it.
type Authenticator interface {
	SessionValidator
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*service.IssuedSession, *models.User, error)
	OAuthLogin(ctx context.Context, provider, subject, email, name string) (*service.IssuedSession, *models.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth                 Authenticator
	hub                  AuthPublisher
	middleware           *Middleware
	templates            *template.Template
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator, hub AuthPublisher, middleware *Middleware, templates *template.Template, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		auth:                 auth,
		hub:                  hub,
		middleware:           middleware,
		templates:            templates,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, LoginViewData{})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data LoginViewData) {
	data.Title = "Login - " + PageTitle
	data.OAuthProviders = h.oauthProviderViews()
	data.CSRFToken = h.middleware.CSRFToken(r)
	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering login template", err)
	}
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	issued, user, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Login failed", err)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		h.renderLogin(w, r, LoginViewData{Error: ErrInvalidLogin, Email: email})
		return
	}

	h.signIn(w, r, issued, user)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if GetUserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, RegisterViewData{})
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, data RegisterViewData) {
	data.Title = "Register - " + PageTitle
	data.OAuthProviders = h.oauthProviderViews()
	data.CSRFToken = h.middleware.CSRFToken(r)
	if err := h.templates.ExecuteTemplate(w, "register.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering register template", err)
	}
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	name := r.FormValue("name")

	if _, err := h.auth.Register(r.Context(), email, password, name); err != nil {
		var validationErr validation.ValidationError
		switch {
		case errors.As(err, &validationErr):
			w.WriteHeader(http.StatusBadRequest)
			h.renderRegister(w, r, RegisterViewData{Error: validationErr.Message, Email: email, Name: name})
		case errors.Is(err, service.ErrEmailTaken):
			w.WriteHeader(http.StatusConflict)
			h.renderRegister(w, r, RegisterViewData{Error: ErrEmailAlreadyInUse, Email: email, Name: name})
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Registration failed", err)
		}
		return
	}

	// Auto-login after registration
	issued, user, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.signIn(w, r, issued, user)
}

// Logout ends the session and signs the visitor's workspace out
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Logout failed", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	h.hub.Publish(GetVisitorFromContext(r.Context()), "")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, issued *service.IssuedSession, user *models.User) {
	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookieName, issued.Token, issued.Session.ExpiresAt))
	h.hub.Publish(GetVisitorFromContext(r.Context()), user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
