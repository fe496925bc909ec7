package handlers

import (
	"spellwrite/internal/models"
	"spellwrite/internal/practice"
)

type OAuthProviderView struct {
	Name     string
	Label    string
	URL      string
	CSSClass string
}

type LoginViewData struct {
	Title          string
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	CSRFToken      string
}

type RegisterViewData struct {
	Title          string
	OAuthProviders []OAuthProviderView
	Error          string
	Email          string
	Name           string
	CSRFToken      string
}

// PageViewData renders the tabbed practice page
type PageViewData struct {
	Title     string
	Tab       string
	User      *models.User
	Spelling  practice.SpellingView
	Writing   practice.WritingView
	CSRFToken string
}

type wordCountResponse struct {
	Words int `json:"words"`
}

type healthResponse struct {
	Ready    bool   `json:"ready"`
	Current  string `json:"current"`
	Progress int    `json:"progress"`
}
