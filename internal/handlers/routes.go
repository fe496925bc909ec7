package handlers

import "net/http"

// Routes registers the page, practice and account endpoints on mux. Each
// one runs behind Identify so it knows the visitor and signed-in user.
func Routes(mux *http.ServeMux, m *Middleware, practice *PracticeHandler, auth *AuthHandler) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, m.Identify(h))
	}

	handle("GET /{$}", practice.ShowPage)

	// Spelling panel
	handle("POST /spelling/check", m.CSRFProtect(practice.CheckSpelling))
	handle("POST /spelling/next", m.CSRFProtect(practice.NextWord))
	handle("POST /spelling/reset", m.CSRFProtect(practice.ResetQuiz))
	handle("GET /spelling/speak", practice.SpeakWord)

	// Writing panel
	handle("POST /writing/save", m.CSRFProtect(practice.SaveWriting))
	handle("POST /writing/count", m.CSRFProtect(practice.CountWords))

	// Accounts
	handle("GET /login", auth.ShowLogin)
	handle("POST /login", m.RateLimit(m.CSRFProtect(auth.Login)))
	handle("GET /register", auth.ShowRegister)
	handle("POST /register", m.RateLimit(m.CSRFProtect(auth.Register)))
	handle("POST /logout", m.CSRFProtect(auth.Logout))
	handle("GET /auth/{provider}/start", auth.StartOAuth)
	handle("GET /auth/{provider}/callback", auth.OAuthCallback)
}

// PublicRoutes registers static files and the health check. They carry no
// visitor identity, so they never touch sessions.
func PublicRoutes(mux *http.ServeMux, staticPath string, status *StartupStatus) {
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticPath))))
	mux.HandleFunc("GET /healthz", status.Health)
}
