package practice

import (
	"context"
	"errors"
	"sync"
	"time"

	"spellwrite/internal/logger"

	"go.uber.org/zap"
)

// ErrRegistryClosed is returned by Acquire after Close
var ErrRegistryClosed = errors.New("workspace registry closed")

// Dependencies are the collaborators shared by every workspace
type Dependencies struct {
	// Auth returns the auth change stream for one visitor
	Auth      func(visitorID string) AuthProvider
	WordLists WordListSource
	Speaker   Speaker
	Topics    TopicSource
	Entries   EntrySink
}

// Workspace is one visitor's mounted page: a gate feeding both controllers
type Workspace struct {
	VisitorID string
	Gate      *AuthGate
	Spelling  *SpellingController
	Writing   *WritingController

	// mu serializes page actions so a form post sees a consistent state
	mu sync.Mutex

	ctx      context.Context
	cancel   context.CancelFunc
	mount    sync.Once
	lastUsed time.Time
}

// Do runs fn with the workspace locked. Keep fn to state changes; Save and
// Speak snapshot their own state and must be called outside Do.
func (w *Workspace) Do(fn func(w *Workspace)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w)
}

func (w *Workspace) mountOnce() {
	w.mount.Do(func() {
		w.Gate.OnChange(func(userID string) {
			w.Spelling.OnUserChange(w.ctx, userID)
			w.Writing.OnUserChange(userID)
		})
		w.Writing.Load(w.ctx)
		w.Gate.Open()
	})
}

func (w *Workspace) unmount() {
	w.cancel()
	w.Gate.Close()
}

// Registry owns one workspace per visitor
type Registry struct {
	deps Dependencies
	now  func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
	closed     bool
}

// NewRegistry creates an empty registry
func NewRegistry(deps Dependencies) *Registry {
	return &Registry{
		deps:       deps,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Acquire returns the visitor's workspace, mounting it on first use
func (r *Registry) Acquire(visitorID string) (*Workspace, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	ws, ok := r.workspaces[visitorID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		ws = &Workspace{
			VisitorID: visitorID,
			Gate:      NewAuthGate(r.deps.Auth(visitorID)),
			Spelling:  NewSpellingController(r.deps.WordLists, r.deps.Speaker),
			Writing:   NewWritingController(r.deps.Topics, r.deps.Entries),
			ctx:       ctx,
			cancel:    cancel,
		}
		r.workspaces[visitorID] = ws
	}
	ws.lastUsed = r.now()
	r.mu.Unlock()

	ws.mountOnce()
	return ws, nil
}

// Release unmounts the visitor's workspace
func (r *Registry) Release(visitorID string) {
	r.mu.Lock()
	ws, ok := r.workspaces[visitorID]
	delete(r.workspaces, visitorID)
	r.mu.Unlock()

	if ok {
		ws.unmount()
	}
}

// Sweep unmounts workspaces unused for longer than idle
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*Workspace
	for id, ws := range r.workspaces {
		if ws.lastUsed.Before(cutoff) {
			stale = append(stale, ws)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range stale {
		ws.unmount()
	}
	return len(stale)
}

// Run sweeps idle workspaces every interval until ctx is done
func (r *Registry) Run(ctx context.Context, idle, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				logger.Get().Info("Released idle workspaces", zap.Int("count", n))
			}
		}
	}
}

// Len returns the number of mounted workspaces
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close unmounts every workspace and refuses new ones
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	all := r.workspaces
	r.workspaces = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, ws := range all {
		ws.unmount()
	}
}
