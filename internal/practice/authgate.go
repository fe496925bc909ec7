package practice

import "sync"

// AuthProvider is a change stream of the signed-in user ID. Subscribe must
// call fn soon with the current state ("" when signed out) and again on
// every change.
type AuthProvider interface {
	Subscribe(fn func(userID string)) (unsubscribe func())
}

// AuthGate holds the current user ID while it is open
type AuthGate struct {
	provider AuthProvider

	mu          sync.Mutex
	userID      string
	observers   []func(userID string)
	unsubscribe func()
	closed      bool
}

// NewAuthGate creates a closed gate
func NewAuthGate(provider AuthProvider) *AuthGate {
	return &AuthGate{provider: provider}
}

// OnChange registers fn to run after the user ID changes. Register
// observers before Open so they see the initial state.
func (g *AuthGate) OnChange(fn func(userID string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observers = append(g.observers, fn)
}

// Open subscribes to the provider. Opening twice, or after Close, does nothing.
func (g *AuthGate) Open() {
	g.mu.Lock()
	if g.unsubscribe != nil || g.closed {
		g.mu.Unlock()
		return
	}
	// placeholder so a re-entrant Open during Subscribe is a no-op
	g.unsubscribe = func() {}
	g.mu.Unlock()

	unsubscribe := g.provider.Subscribe(g.set)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		unsubscribe()
		return
	}
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
}

// Close unsubscribes. It is idempotent.
func (g *AuthGate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// UserID returns the current user ID, "" when signed out
func (g *AuthGate) UserID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.userID
}

func (g *AuthGate) set(userID string) {
	g.mu.Lock()
	if g.closed || g.userID == userID {
		// state starts signed out, so an initial "" is not a change
		g.mu.Unlock()
		return
	}
	g.userID = userID
	observers := make([]func(string), len(g.observers))
	copy(observers, g.observers)
	g.mu.Unlock()

	for _, fn := range observers {
		fn(userID)
	}
}
