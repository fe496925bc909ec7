package practice

import (
	"context"
	"sync"

	"spellwrite/internal/models"
)

type fakeAuth struct {
	mu           sync.Mutex
	current      string
	subs         map[int]func(string)
	next         int
	subscribes   int
	unsubscribes int
}

func newFakeAuth(initial string) *fakeAuth {
	return &fakeAuth{current: initial, subs: make(map[int]func(string))}
}

func (f *fakeAuth) Subscribe(fn func(string)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.subscribes++
	current := f.current
	f.mu.Unlock()

	fn(current)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[id]; ok {
			delete(f.subs, id)
			f.unsubscribes++
		}
	}
}

func (f *fakeAuth) Emit(userID string) {
	f.mu.Lock()
	f.current = userID
	subs := make([]func(string), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(userID)
	}
}

func (f *fakeAuth) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes, f.unsubscribes
}

type fakeWordLists struct {
	mu    sync.Mutex
	lists map[string][]models.WordList
	err   error
	calls int
	// gate, when set, blocks ListByOwner for that user until closed
	gate map[string]chan struct{}
}

func newFakeWordLists() *fakeWordLists {
	return &fakeWordLists{lists: make(map[string][]models.WordList), gate: make(map[string]chan struct{})}
}

func (f *fakeWordLists) set(userID string, words ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[userID] = []models.WordList{{ID: 1, OwnerUserID: userID, Words: words}}
}

func (f *fakeWordLists) ListByOwner(ctx context.Context, ownerUserID string) ([]models.WordList, error) {
	f.mu.Lock()
	f.calls++
	wait := f.gate[ownerUserID]
	f.mu.Unlock()

	if wait != nil {
		<-wait
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.lists[ownerUserID], nil
}

type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

func (f *fakeSpeaker) Speak(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.spoken = append(f.spoken, text)
	return "word_" + text + ".mp3", nil
}

type fakeTopics struct {
	mu    sync.Mutex
	topic *models.Topic
	err   error
	calls int
}

func (f *fakeTopics) TopicOfDay(ctx context.Context) (*models.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.topic, nil
}

type fakeSink struct {
	mu      sync.Mutex
	entries []models.WritingEntry
	err     error
	calls   int
}

func (f *fakeSink) Create(ctx context.Context, entry *models.WritingEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}
