package service

import (
	"sync"
	"time"
)

// SessionHub is the per-visitor auth change stream. Each browser (visitor
// cookie) has one stream holding the last known user ID, "" when signed
// out. Subscribers are notified when that value changes.
type SessionHub struct {
	mu      sync.Mutex
	streams map[string]*authStream
	now     func() time.Time
}

type authStream struct {
	// deliver serializes callbacks so subscribers see changes in order
	deliver sync.Mutex

	userID  string
	subs    map[int]func(userID string)
	nextID  int
	touched time.Time
}

// NewSessionHub creates an empty hub
func NewSessionHub() *SessionHub {
	return &SessionHub{
		streams: make(map[string]*authStream),
		now:     time.Now,
	}
}

func (h *SessionHub) stream(visitorID string) *authStream {
	st, ok := h.streams[visitorID]
	if !ok {
		st = &authStream{subs: make(map[int]func(string))}
		h.streams[visitorID] = st
	}
	st.touched = h.now()
	return st
}

// Subscribe registers fn for visitorID's stream and calls it right away
// with the current state. The returned function unregisters fn; it is safe
// to call more than once.
func (h *SessionHub) Subscribe(visitorID string, fn func(userID string)) (unsubscribe func()) {
	h.mu.Lock()
	st := h.stream(visitorID)
	id := st.nextID
	st.nextID++
	st.subs[id] = fn
	h.mu.Unlock()

	st.deliver.Lock()
	h.mu.Lock()
	current := st.userID
	_, stillSubscribed := st.subs[id]
	h.mu.Unlock()
	if stillSubscribed {
		fn(current)
	}
	st.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(st.subs, id)
		})
	}
}

// Publish records the visitor's current user. Subscribers are called only
// when the user ID differs from the last published value.
func (h *SessionHub) Publish(visitorID, userID string) {
	h.mu.Lock()
	st := h.stream(visitorID)
	h.mu.Unlock()

	st.deliver.Lock()
	defer st.deliver.Unlock()

	h.mu.Lock()
	if st.userID == userID {
		h.mu.Unlock()
		return
	}
	st.userID = userID
	subs := make([]func(string), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(userID)
	}
}

// Current returns the last published user for the visitor
func (h *SessionHub) Current(visitorID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if st, ok := h.streams[visitorID]; ok {
		return st.userID
	}
	return ""
}

// Sweep drops streams that have no subscribers and have not been touched
// for idle. It returns the number removed.
func (h *SessionHub) Sweep(idle time.Duration) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := h.now().Add(-idle)
	removed := 0
	for id, st := range h.streams {
		if len(st.subs) == 0 && st.touched.Before(cutoff) {
			delete(h.streams, id)
			removed++
		}
	}
	return removed
}

// For returns the visitor's stream as a subscription source
func (h *SessionHub) For(visitorID string) *VisitorAuth {
	return &VisitorAuth{hub: h, visitorID: visitorID}
}

// VisitorAuth binds a hub to one visitor
type VisitorAuth struct {
	hub       *SessionHub
	visitorID string
}

// Subscribe registers fn on the visitor's stream
func (v *VisitorAuth) Subscribe(fn func(userID string)) (unsubscribe func()) {
	return v.hub.Subscribe(v.visitorID, fn)
}
