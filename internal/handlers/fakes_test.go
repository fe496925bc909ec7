package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"spellwrite/internal/models"
	"spellwrite/internal/practice"
	"spellwrite/internal/security"
	"spellwrite/internal/service"
	"spellwrite/internal/templates"
	"spellwrite/internal/validation"

	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	mu        sync.Mutex
	users     map[string]*models.User
	passwords map[string]string
	tokens    map[string]*models.User
	issued    int
}

func newFakeAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{
		users:     make(map[string]*models.User),
		passwords: make(map[string]string),
		tokens:    make(map[string]*models.User),
	}
}

func (f *fakeAuthenticator) addUser(email, password, name string) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &models.User{ID: "user-" + name, Email: email, Name: name}
	f.users[email] = user
	f.passwords[email] = password
	return user
}

func (f *fakeAuthenticator) issue(user *models.User) *service.IssuedSession {
	f.issued++
	token := fmt.Sprintf("token-%d", f.issued)
	f.tokens[token] = user
	return &service.IssuedSession{
		Session: &models.Session{ID: token, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)},
		Token:   token,
	}
}

func (f *fakeAuthenticator) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.tokens[token]; ok {
		return user, nil
	}
	return nil, service.ErrSessionNotFound
}

func (f *fakeAuthenticator) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if len(password) < 8 {
		return nil, validation.ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	f.mu.Lock()
	_, exists := f.users[email]
	f.mu.Unlock()
	if exists {
		return nil, service.ErrEmailTaken
	}
	return f.addUser(email, password, name), nil
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (*service.IssuedSession, *models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok || f.passwords[email] != password {
		return nil, nil, service.ErrInvalidCredentials
	}
	return f.issue(user), user, nil
}

func (f *fakeAuthenticator) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*service.IssuedSession, *models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		user = &models.User{ID: "user-" + subject, Email: email, Name: name, OAuthProvider: provider, OAuthSubject: subject}
		f.users[email] = user
	}
	return f.issue(user), user, nil
}

func (f *fakeAuthenticator) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type memoryWordLists struct {
	mu    sync.Mutex
	lists map[string][]string
}

func (m *memoryWordLists) ListByOwner(ctx context.Context, ownerUserID string) ([]models.WordList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	words, ok := m.lists[ownerUserID]
	if !ok {
		return nil, nil
	}
	return []models.WordList{{ID: 1, OwnerUserID: ownerUserID, Words: words}}, nil
}

type fileSpeaker struct{}

func (fileSpeaker) Speak(ctx context.Context, text string) (string, error) {
	return text + ".mp3", nil
}

type audioDir string

func (d audioDir) Path(filename string) string {
	return filepath.Join(string(d), filename)
}

type staticTopics struct{}

func (staticTopics) TopicOfDay(ctx context.Context) (*models.Topic, error) {
	return &models.Topic{ID: 1, Title: "Oceans", Description: "Write about a day at sea."}, nil
}

type entrySink struct {
	mu      sync.Mutex
	entries []models.WritingEntry
	// held, when set, makes Create signal started and wait for release
	held    bool
	started chan struct{}
	release chan struct{}
}

// hold makes the next Create block until the returned func is called
func (s *entrySink) hold(t *testing.T) (started <-chan struct{}, release func()) {
	s.mu.Lock()
	s.held = true
	s.started = make(chan struct{})
	s.release = make(chan struct{})
	ch, rel := s.started, s.release
	s.mu.Unlock()

	var once sync.Once
	release = func() { once.Do(func() { close(rel) }) }
	t.Cleanup(release)
	return ch, release
}

func (s *entrySink) Create(ctx context.Context, entry *models.WritingEntry) error {
	s.mu.Lock()
	if s.held {
		s.held = false
		started, release := s.started, s.release
		s.mu.Unlock()
		close(started)
		<-release
		s.mu.Lock()
	}
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *entrySink) all() []models.WritingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WritingEntry(nil), s.entries...)
}

type testApp struct {
	server    *httptest.Server
	client    *http.Client
	auth      *fakeAuthenticator
	hub       *service.SessionHub
	lists     *memoryWordLists
	sink      *entrySink
	csrf      *security.CSRFGenerator
	audioDir  string
	staticDir string
}

func newTestApp(t *testing.T, providers map[string]OAuthProvider) *testApp {
	t.Helper()

	tmpl, err := templates.Load()
	require.NoError(t, err)

	app := &testApp{
		auth:      newFakeAuthenticator(),
		hub:       service.NewSessionHub(),
		lists:     &memoryWordLists{lists: make(map[string][]string)},
		sink:      &entrySink{},
		csrf:      security.NewCSRFGenerator("test-secret"),
		audioDir:  t.TempDir(),
		staticDir: t.TempDir(),
	}

	registry := practice.NewRegistry(practice.Dependencies{
		Auth:      func(visitorID string) practice.AuthProvider { return app.hub.For(visitorID) },
		WordLists: app.lists,
		Speaker:   fileSpeaker{},
		Topics:    staticTopics{},
		Entries:   app.sink,
	})
	t.Cleanup(registry.Close)

	mw := NewMiddleware(app.auth, app.hub, app.csrf, security.NewRateLimiter(3, time.Minute))
	practiceHandler := NewPracticeHandler(registry, audioDir(app.audioDir), mw, tmpl)
	authHandler := NewAuthHandler(app.auth, app.hub, mw, tmpl, providers, "")

	status := NewStartupStatus()
	status.MarkReady()

	mux := http.NewServeMux()
	PublicRoutes(mux, app.staticDir, status)
	Routes(mux, mw, practiceHandler, authHandler)
	app.server = httptest.NewServer(mux)
	t.Cleanup(app.server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return app
}

func (a *testApp) visitorID(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(a.server.URL)
	require.NoError(t, err)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == security.VisitorCookieName {
			return c.Value
		}
	}
	// first contact assigns the visitor cookie
	resp := a.get(t, "/login")
	resp.Body.Close()
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == security.VisitorCookieName {
			return c.Value
		}
	}
	t.Fatal("no visitor cookie")
	return ""
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp
}

func (a *testApp) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	token, err := a.csrf.GenerateToken(a.visitorID(t))
	require.NoError(t, err)
	if form == nil {
		form = url.Values{}
	}
	form.Set(CSRFFormField, token)

	resp, err := a.client.Post(a.server.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	return resp
}

func (a *testApp) page(t *testing.T, tab string) string {
	t.Helper()
	resp := a.get(t, "/?tab="+tab)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return readBody(t, resp)
}

func (a *testApp) login(t *testing.T, email, password string) *http.Response {
	t.Helper()
	return a.post(t, "/login", url.Values{"email": {email}, "password": {password}})
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func writeFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644))
}
