package practice

import (
	"context"
	"strings"
	"sync"
	"time"

	"spellwrite/internal/logger"
	"spellwrite/internal/models"

	"go.uber.org/zap"
)

const (
	MsgNotAuthenticated = "User not authenticated. Please refresh or login."
	MsgEmptyContent     = "Please write something before saving!"
	MsgSaved            = "Your writing has been saved! 📝"
	MsgSaveFailed       = "Failed to save your writing. Please try again."
)

// TopicSource returns today's writing prompt
type TopicSource interface {
	TopicOfDay(ctx context.Context) (*models.Topic, error)
}

// EntrySink appends a writing entry
type EntrySink interface {
	Create(ctx context.Context, entry *models.WritingEntry) error
}

// WritingView is a snapshot of the journal for rendering
type WritingView struct {
	Loading   bool
	Topic     *models.Topic
	Content   string
	WordCount int
	Feedback  *Feedback
}

// WritingController manages the topic of the day and one composition
type WritingController struct {
	topics TopicSource
	sink   EntrySink
	now    func() time.Time

	mu        sync.Mutex
	attempted bool
	topic     *models.Topic
	userID    string
	content   string
	wordCount int
	feedback  *Feedback
}

// NewWritingController creates a controller in the Loading state
func NewWritingController(topics TopicSource, sink EntrySink) *WritingController {
	return &WritingController{topics: topics, sink: sink, now: time.Now}
}

// Load fetches the topic of the day. Only the first call fetches; a failed
// fetch leaves the controller loading.
func (c *WritingController) Load(ctx context.Context) {
	c.mu.Lock()
	if c.attempted {
		c.mu.Unlock()
		return
	}
	c.attempted = true
	c.mu.Unlock()

	topic, err := c.topics.TopicOfDay(ctx)
	if err != nil {
		logger.Get().Warn("Failed to load topic of the day", zap.Error(err))
		return
	}
	if topic == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
}

// OnUserChange tracks the signed-in user
func (c *WritingController) OnUserChange(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
}

// EditContent replaces the composition and recounts its words
func (c *WritingController) EditContent(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = text
	c.wordCount = CountWords(text)
}

// Save persists the composition for the current user
func (c *WritingController) Save(ctx context.Context) {
	c.mu.Lock()
	userID := c.userID
	content := c.content
	topicTitle := ""
	if c.topic != nil {
		topicTitle = c.topic.Title
	}

	switch {
	case userID == "":
		c.feedback = &Feedback{Kind: FeedbackError, Message: MsgNotAuthenticated}
		c.mu.Unlock()
		return
	case strings.TrimSpace(content) == "":
		c.feedback = &Feedback{Kind: FeedbackError, Message: MsgEmptyContent}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	entry := &models.WritingEntry{
		AuthorUserID: userID,
		Text:         content,
		TopicTitle:   topicTitle,
		CreatedAt:    c.now().UTC(),
	}
	err := c.sink.Create(ctx, entry)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		logger.Get().Error("Failed to save writing", zap.String("user_id", userID), zap.Error(err))
		c.feedback = &Feedback{Kind: FeedbackError, Message: MsgSaveFailed}
		return
	}
	c.feedback = &Feedback{Kind: FeedbackSuccess, Message: MsgSaved}
}

// View returns a snapshot for rendering
func (c *WritingController) View() WritingView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return WritingView{
		Loading:   c.topic == nil,
		Topic:     c.topic,
		Content:   c.content,
		WordCount: c.wordCount,
		Feedback:  c.feedback,
	}
}

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}
