package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"spellwrite/internal/logger"
	"spellwrite/internal/practice"

	"go.uber.org/zap"
)

// WorkspaceSource hands out per-visitor workspaces
type WorkspaceSource interface {
	Acquire(visitorID string) (*practice.Workspace, error)
}

// AudioFiles resolves a generated audio reference to a file on disk
type AudioFiles interface {
	Path(filename string) string
}

// PracticeHandler serves the spelling and writing panels
type PracticeHandler struct {
	workspaces WorkspaceSource
	audio      AudioFiles
	middleware *Middleware
	templates  *template.Template
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(workspaces WorkspaceSource, audio AudioFiles, middleware *Middleware, templates *template.Template) *PracticeHandler {
	return &PracticeHandler{
		workspaces: workspaces,
		audio:      audio,
		middleware: middleware,
		templates:  templates,
	}
}

func (h *PracticeHandler) workspace(w http.ResponseWriter, r *http.Request) (*practice.Workspace, bool) {
	ws, err := h.workspaces.Acquire(GetVisitorFromContext(r.Context()))
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, ErrWorkspaceUnavailable, "Failed to acquire workspace", err)
		return nil, false
	}
	return ws, true
}

// ShowPage renders the tabbed page
func (h *PracticeHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	tab := TabSpelling
	if r.URL.Query().Get("tab") == TabWriting {
		tab = TabWriting
	}

	data := PageViewData{
		Title:     PageTitle,
		Tab:       tab,
		User:      GetUserFromContext(r.Context()),
		CSRFToken: h.middleware.CSRFToken(r),
	}
	ws.Do(func(ws *practice.Workspace) {
		data.Spelling = ws.Spelling.View()
		data.Writing = ws.Writing.View()
	})

	if err := h.templates.ExecuteTemplate(w, "page.tmpl", data); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error rendering page template", err)
	}
}

// CheckSpelling grades the submitted answer against the current word
func (h *PracticeHandler) CheckSpelling(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	ws.Do(func(ws *practice.Workspace) {
		ws.Spelling.SetInput(r.FormValue("answer"))
		ws.Spelling.Check()
	})
	http.Redirect(w, r, "/?tab="+TabSpelling, http.StatusSeeOther)
}

// NextWord advances the quiz
func (h *PracticeHandler) NextWord(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Do(func(ws *practice.Workspace) {
		ws.Spelling.Advance()
	})
	http.Redirect(w, r, "/?tab="+TabSpelling, http.StatusSeeOther)
}

// ResetQuiz returns to the first word
func (h *PracticeHandler) ResetQuiz(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	ws.Do(func(ws *practice.Workspace) {
		ws.Spelling.Reset()
	})
	http.Redirect(w, r, "/?tab="+TabSpelling, http.StatusSeeOther)
}

// SpeakWord serves the audio for the current word
func (h *PracticeHandler) SpeakWord(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	// speech synthesis may hit the network, so it runs outside the page lock
	filename, err := ws.Spelling.Speak(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to generate audio", "Speech synthesis failed", err)
		return
	}
	if filename == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, h.audio.Path(filename))
}

// SaveWriting stores the submitted composition
func (h *PracticeHandler) SaveWriting(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	ws.Do(func(ws *practice.Workspace) {
		ws.Writing.EditContent(r.FormValue("content"))
	})
	ws.Writing.Save(r.Context())
	http.Redirect(w, r, "/?tab="+TabWriting, http.StatusSeeOther)
}

// CountWords records the draft and returns its word count as JSON
func (h *PracticeHandler) CountWords(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	var count int
	ws.Do(func(ws *practice.Workspace) {
		ws.Writing.EditContent(r.FormValue("content"))
		count = ws.Writing.View().WordCount
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(wordCountResponse{Words: count}); err != nil {
		logger.Get().Warn("Failed to encode word count", zap.Error(err))
	}
}
