package audio

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the Google Translate text-to-speech endpoint
const DefaultBaseURL = "https://translate.google.com/translate_tts"

const ttsRequestTimeout = 10 * time.Second

// TTSService turns words into mp3 files under the static audio directory
type TTSService struct {
	audioDir string
	baseURL  string
	client   *http.Client
	group    singleflight.Group
}

// NewTTSService creates a new TTS service. An empty baseURL uses Google Translate.
func NewTTSService(audioDir, baseURL string) *TTSService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &TTSService{
		audioDir: audioDir,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Speak returns the filename (not full path) of the audio for text,
// generating it on first use. Concurrent requests for the same word share
// one download.
func (s *TTSService) Speak(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to speak")
	}

	filename := FilenameFor(text)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	_, err, _ := s.group.Do(filename, func() (interface{}, error) {
		if _, err := os.Stat(path); err == nil {
			return nil, nil
		}
		return nil, s.download(ctx, text, path)
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}
	return filename, nil
}

// Path returns the absolute location of a generated file
func (s *TTSService) Path(filename string) string {
	return filepath.Join(s.audioDir, filepath.Base(filename))
}

// Prewarm generates audio for every word, a few at a time
func (s *TTSService) Prewarm(ctx context.Context, words []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, word := range words {
		g.Go(func() error {
			if _, err := s.Speak(ctx, word); err != nil {
				return fmt.Errorf("failed to generate audio for '%s': %w", word, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// FilenameFor maps text to a stable, filesystem-safe mp3 name. Lowercase
// words keep a readable name; anything that would not map back one-to-one
// (capitals, underscores, punctuation, non-ASCII) is named by a hash of the
// trimmed text, so distinct words never share a file.
func FilenameFor(text string) string {
	trimmed := strings.TrimSpace(text)

	var b strings.Builder
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		default:
			sum := sha1.Sum([]byte(trimmed))
			return "hash_" + hex.EncodeToString(sum[:]) + ".mp3"
		}
	}
	return "word_" + b.String() + ".mp3"
}

func (s *TTSService) download(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.audioDir, ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return os.Rename(tmp.Name(), outputPath)
}
