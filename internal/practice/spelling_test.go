package practice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"spellwrite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedQuiz(t *testing.T, words ...string) *SpellingController {
	t.Helper()
	lists := newFakeWordLists()
	lists.set("user-1", words...)
	c := NewSpellingController(lists, &fakeSpeaker{})
	c.OnUserChange(context.Background(), "user-1")
	require.Equal(t, len(words), c.View().Total)
	return c
}

func TestSpellingLoadsFirstList(t *testing.T) {
	lists := newFakeWordLists()
	lists.lists["user-1"] = []models.WordList{
		{ID: 1, Words: models.StringList{"apple", "banana"}},
		{ID: 2, Words: models.StringList{"cherry"}},
	}
	c := NewSpellingController(lists, &fakeSpeaker{})

	c.OnUserChange(context.Background(), "user-1")

	v := c.View()
	assert.False(t, v.Empty)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 1, v.Position)
	assert.True(t, v.CanAdvance)
	assert.Nil(t, v.Feedback)
}

func TestSpellingEmptyResult(t *testing.T) {
	c := NewSpellingController(newFakeWordLists(), &fakeSpeaker{})
	c.OnUserChange(context.Background(), "user-1")

	v := c.View()
	assert.True(t, v.Empty)
	assert.Nil(t, v.Feedback)
	assert.False(t, v.CanAdvance)
}

func TestSpellingFetchFailure(t *testing.T) {
	lists := newFakeWordLists()
	lists.err = errors.New("store unavailable")
	c := NewSpellingController(lists, &fakeSpeaker{})

	c.OnUserChange(context.Background(), "user-1")

	v := c.View()
	assert.True(t, v.Empty)
	require.NotNil(t, v.Feedback)
	assert.Equal(t, FeedbackError, v.Feedback.Kind)
	assert.Equal(t, "Failed to load word list.", v.Feedback.Message)
	assert.Equal(t, 1, lists.calls)
}

func TestSpellingSignOutClearsList(t *testing.T) {
	c := loadedQuiz(t, "apple", "banana")
	c.Advance()

	c.OnUserChange(context.Background(), "")

	v := c.View()
	assert.True(t, v.Empty)
	assert.Equal(t, 0, v.Index)
}

func TestSpellingCheckScenarios(t *testing.T) {
	t.Run("uppercase answer is correct", func(t *testing.T) {
		c := loadedQuiz(t, "apple", "banana")
		c.SetInput("APPLE")
		c.Check()
		v := c.View()
		require.NotNil(t, v.Feedback)
		assert.Equal(t, FeedbackSuccess, v.Feedback.Kind)
		assert.Equal(t, "Correct! Well done! 🎉", v.Feedback.Message)
	})

	t.Run("misspelling names the word", func(t *testing.T) {
		c := loadedQuiz(t, "apple")
		c.SetInput("aple")
		c.Check()
		v := c.View()
		require.NotNil(t, v.Feedback)
		assert.Equal(t, FeedbackError, v.Feedback.Kind)
		assert.Equal(t, `Incorrect. The correct spelling is "apple"`, v.Feedback.Message)
	})

	t.Run("case variants all succeed", func(t *testing.T) {
		for _, answer := range []string{"Cat", "cat", "CAT", "  cat  "} {
			c := loadedQuiz(t, "cat")
			c.SetInput(answer)
			c.Check()
			assert.True(t, c.View().Feedback.IsSuccess(), answer)
		}
	})

	t.Run("punctuation is not ignored", func(t *testing.T) {
		c := loadedQuiz(t, "cat")
		c.SetInput("cat.")
		c.Check()
		assert.False(t, c.View().Feedback.IsSuccess())
	})

	t.Run("mismatch keeps the word verbatim", func(t *testing.T) {
		c := loadedQuiz(t, "Wednesday")
		c.SetInput("wensday")
		c.Check()
		assert.Contains(t, c.View().Feedback.Message, `"Wednesday"`)
	})

	t.Run("check does not move the index", func(t *testing.T) {
		c := loadedQuiz(t, "apple", "banana")
		c.SetInput("apple")
		c.Check()
		assert.Equal(t, 0, c.View().Index)
	})

	t.Run("check on empty list is a no-op", func(t *testing.T) {
		c := NewSpellingController(newFakeWordLists(), &fakeSpeaker{})
		c.SetInput("anything")
		c.Check()
		assert.Nil(t, c.View().Feedback)
	})
}

func TestSpellingAdvanceReachesLastWord(t *testing.T) {
	for n := 1; n <= 6; n++ {
		words := make([]string, n)
		for i := range words {
			words[i] = strings.Repeat("a", i+1)
		}
		c := loadedQuiz(t, words...)

		for i := 0; i < n-1; i++ {
			assert.True(t, c.View().CanAdvance)
			c.SetInput("x")
			c.Check()
			c.Advance()
			v := c.View()
			assert.Equal(t, i+1, v.Index)
			assert.Empty(t, v.Input)
			assert.Nil(t, v.Feedback)
		}

		assert.Equal(t, n-1, c.View().Index)
		assert.False(t, c.View().CanAdvance)

		c.SetInput("kept")
		c.Advance()
		c.Advance()
		v := c.View()
		assert.Equal(t, n-1, v.Index, "advance is a no-op at the last word")
		assert.Equal(t, "kept", v.Input)
	}
}

func TestSpellingReset(t *testing.T) {
	c := loadedQuiz(t, "apple", "banana", "cherry")
	c.Advance()
	c.Advance()
	c.SetInput("chery")
	c.Check()
	require.NotNil(t, c.View().Feedback)

	c.Reset()

	v := c.View()
	assert.Equal(t, 0, v.Index)
	assert.Empty(t, v.Input)
	assert.Nil(t, v.Feedback)

	empty := NewSpellingController(newFakeWordLists(), &fakeSpeaker{})
	empty.Reset()
	assert.Equal(t, 0, empty.View().Index)
}

func TestSpellingSpeak(t *testing.T) {
	lists := newFakeWordLists()
	lists.set("user-1", "apple", "banana")
	speaker := &fakeSpeaker{}
	c := NewSpellingController(lists, speaker)

	ref, err := c.Speak(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ref)
	assert.Empty(t, speaker.spoken)

	c.OnUserChange(context.Background(), "user-1")
	c.Advance()
	ref, err = c.Speak(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "word_banana.mp3", ref)
	assert.Equal(t, []string{"banana"}, speaker.spoken)
	assert.Equal(t, 1, c.View().Index)
}

func TestSpellingLatestUserWins(t *testing.T) {
	lists := newFakeWordLists()
	lists.set("slow", "old")
	lists.set("fast", "new")
	release := make(chan struct{})
	lists.gate["slow"] = release

	c := NewSpellingController(lists, &fakeSpeaker{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.OnUserChange(context.Background(), "slow")
	}()

	// wait until the slow fetch is in flight
	require.Eventually(t, func() bool {
		lists.mu.Lock()
		defer lists.mu.Unlock()
		return lists.calls == 1
	}, timeout, tick)

	c.OnUserChange(context.Background(), "fast")
	close(release)
	wg.Wait()

	v := c.View()
	require.Equal(t, 1, v.Total)
	c.SetInput("new")
	c.Check()
	assert.True(t, c.View().Feedback.IsSuccess())
}
