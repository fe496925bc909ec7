package practice

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"spellwrite/internal/logger"
	"spellwrite/internal/models"

	"go.uber.org/zap"
)

const (
	MsgCorrect        = "Correct! Well done! 🎉"
	MsgIncorrect      = `Incorrect. The correct spelling is "%s"`
	MsgListLoadFailed = "Failed to load word list."
)

// FeedbackKind is the outcome shown after a check or save
type FeedbackKind string

const (
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Feedback is a transient message for the page
type Feedback struct {
	Kind    FeedbackKind
	Message string
}

// IsSuccess reports whether the feedback is a success message
func (f *Feedback) IsSuccess() bool {
	return f != nil && f.Kind == FeedbackSuccess
}

// WordListSource returns the word lists owned by a user, oldest first
type WordListSource interface {
	ListByOwner(ctx context.Context, ownerUserID string) ([]models.WordList, error)
}

// Speaker synthesizes audio for text and returns a reference the browser can play
type Speaker interface {
	Speak(ctx context.Context, text string) (string, error)
}

// SpellingView is a snapshot of the quiz for rendering
type SpellingView struct {
	Empty      bool
	Total      int
	Index      int
	Position   int
	Input      string
	Feedback   *Feedback
	CanAdvance bool
}

// SpellingController runs a one-word-at-a-time spelling quiz over the
// signed-in user's first word list
type SpellingController struct {
	source  WordListSource
	speaker Speaker

	mu         sync.Mutex
	words      []string
	index      int
	input      string
	feedback   *Feedback
	generation uint64
}

// NewSpellingController creates an empty quiz
func NewSpellingController(source WordListSource, speaker Speaker) *SpellingController {
	return &SpellingController{source: source, speaker: speaker}
}

// OnUserChange loads the user's word list, or clears the quiz when userID
// is "". When changes overlap, only the latest one's result is applied.
func (c *SpellingController) OnUserChange(ctx context.Context, userID string) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.words = nil
	c.index = 0
	c.input = ""
	c.feedback = nil
	c.mu.Unlock()

	if userID == "" {
		return
	}

	lists, err := c.source.ListByOwner(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if err != nil {
		logger.Get().Warn("Failed to load word list", zap.String("user_id", userID), zap.Error(err))
		c.feedback = &Feedback{Kind: FeedbackError, Message: MsgListLoadFailed}
		return
	}
	if len(lists) == 0 || len(lists[0].Words) == 0 {
		return
	}
	c.words = append([]string(nil), lists[0].Words...)
}

// Speak synthesizes the current word and returns its audio reference. It
// returns "" when there are no words.
func (c *SpellingController) Speak(ctx context.Context) (string, error) {
	c.mu.Lock()
	if len(c.words) == 0 {
		c.mu.Unlock()
		return "", nil
	}
	word := c.words[c.index]
	c.mu.Unlock()

	return c.speaker.Speak(ctx, word)
}

// SetInput records the typed answer
func (c *SpellingController) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

// Check compares the trimmed input with the current word, ignoring case
func (c *SpellingController) Check() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.words) == 0 {
		return
	}

	word := c.words[c.index]
	if strings.EqualFold(strings.TrimSpace(c.input), word) {
		c.feedback = &Feedback{Kind: FeedbackSuccess, Message: MsgCorrect}
	} else {
		c.feedback = &Feedback{Kind: FeedbackError, Message: fmt.Sprintf(MsgIncorrect, word)}
	}
}

// Advance moves to the next word. It does nothing on the last word.
func (c *SpellingController) Advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index >= len(c.words)-1 {
		return
	}
	c.index++
	c.input = ""
	c.feedback = nil
}

// Reset returns to the first word
func (c *SpellingController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
	c.input = ""
	c.feedback = nil
}

// View returns a snapshot for rendering
func (c *SpellingController) View() SpellingView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := SpellingView{
		Empty:    len(c.words) == 0,
		Total:    len(c.words),
		Index:    c.index,
		Input:    c.input,
		Feedback: c.feedback,
	}
	if !v.Empty {
		v.Position = c.index + 1
		v.CanAdvance = c.index < len(c.words)-1
	}
	return v
}
