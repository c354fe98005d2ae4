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
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ttsBaseURL        = "https://translate.google.com/translate_tts"
	ttsRequestTimeout = 10 * time.Second
)

// availableVoices is the fixed voice set the Google Translate endpoint serves.
// There is no enumeration API; PreloadVoices returns this list after warming
// the audio cache once.
var availableVoices = []Voice{
	{Name: "Google UK English Female", Lang: "en-GB"},
	{Name: "Google US English", Lang: "en-US"},
	{Name: "Google English", Lang: "en"},
}

// GoogleTTS narrates text by fetching MP3 audio from the Google Translate
// text-to-speech endpoint and caching the files on disk. It tracks a single
// current utterance; Stop invalidates it. No overlapping narrations exist by
// design, so there is no queue and no cancellation token beyond the handle.
type GoogleTTS struct {
	audioDir  string
	audioBase string // URL prefix the cached files are served under
	client    *http.Client

	mu      sync.Mutex
	current *Utterance

	voicesOnce sync.Once
	voicesErr  error
}

// NewGoogleTTS creates a narrator caching audio in audioDir and serving it
// under audioBase (e.g. "/static/audio")
func NewGoogleTTS(audioDir, audioBase string) *GoogleTTS {
	return &GoogleTTS{
		audioDir:  audioDir,
		audioBase: strings.TrimSuffix(audioBase, "/"),
		client:    &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Speak starts narration for text: any in-flight utterance is stopped first,
// the audio file is fetched into the cache if missing, and a fresh handle is
// returned for the player to track.
func (s *GoogleTTS) Speak(text string) (*Utterance, error) {
	// Narration for the previous item must never overlap the next one
	s.Stop()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to narrate")
	}

	filename, err := s.ensureAudioFile(text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate narration audio: %w", err)
	}

	utterance := &Utterance{
		ID:       uuid.New().String(),
		Text:     text,
		AudioURL: s.audioBase + "/" + filename,
	}

	s.mu.Lock()
	s.current = utterance
	s.mu.Unlock()

	return utterance, nil
}

// Stop cancels the current utterance. Calling it twice, or when nothing is
// speaking, has no effect.
func (s *GoogleTTS) Stop() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// IsSpeaking reports whether an utterance is currently live
func (s *GoogleTTS) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Current returns the live utterance, or nil
func (s *GoogleTTS) Current() *Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// PreloadVoices warms the audio cache once and returns the available voices.
// Some browsers need a first utterance before audio plays promptly; fetching
// one short file up front serves the same purpose here.
func (s *GoogleTTS) PreloadVoices(ctx context.Context) ([]Voice, error) {
	s.voicesOnce.Do(func() {
		if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
			s.voicesErr = fmt.Errorf("failed to create audio cache dir: %w", err)
			return
		}
		if _, err := s.ensureAudioFile("Hello"); err != nil {
			// Voice preload is best effort; narration will retry per item
			s.voicesErr = err
		}
	})
	return availableVoices, s.voicesErr
}

// ensureAudioFile returns the cached filename for text, fetching it first if
// needed. Filenames are a sanitized prefix plus a content hash so long spoken
// sentences stay within filesystem limits.
func (s *GoogleTTS) ensureAudioFile(text string) (string, error) {
	filename := audioFilename(text)
	path := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := s.fetchAudio(text, path); err != nil {
		return "", err
	}

	return filename, nil
}

// fetchAudio downloads MP3 narration for text from the Google Translate TTS
// endpoint (free, no API key needed) into outputPath
func (s *GoogleTTS) fetchAudio(text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(context.Background(), ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ttsBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// User agent required by the endpoint
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, resp.Body); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	return nil
}

// audioFilename builds a stable cache filename for a piece of narration text
func audioFilename(text string) string {
	sanitized := strings.ToLower(strings.TrimSpace(text))
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	if len(sanitized) > 32 {
		sanitized = sanitized[:32]
	}

	sum := sha1.Sum([]byte(text))
	return fmt.Sprintf("say_%s_%s.mp3", sanitized, hex.EncodeToString(sum[:4]))
}

// CleanupOrphanedAudio removes cached MP3 files not present in keep. Called at
// startup after lessons are loaded so the cache tracks the current content.
func (s *GoogleTTS) CleanupOrphanedAudio(keep map[string]bool) error {
	files, err := os.ReadDir(s.audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read audio directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".mp3" {
			continue
		}
		if keep[file.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(s.audioDir, file.Name())); err != nil {
			return fmt.Errorf("failed to remove orphaned audio file %s: %w", file.Name(), err)
		}
	}

	return nil
}

// AudioFilenameFor exposes the cache filename for text, used by the cleanup
// pass to decide which files are still referenced
func AudioFilenameFor(text string) string {
	return audioFilename(text)
}
