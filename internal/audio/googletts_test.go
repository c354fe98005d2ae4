package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAudioFilename(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "simple word", text: "Apple"},
		{name: "sentence with spaces", text: "Apples are red and crunchy."},
		{name: "long text", text: strings.Repeat("a very long narration ", 20)},
		{name: "leading and trailing space", text: "  banana  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := audioFilename(tt.text)

			if !strings.HasPrefix(got, "say_") || !strings.HasSuffix(got, ".mp3") {
				t.Errorf("audioFilename(%q) = %q, want say_*.mp3", tt.text, got)
			}
			if strings.Contains(got, " ") {
				t.Errorf("audioFilename(%q) contains spaces: %q", tt.text, got)
			}
			if len(got) > len("say_")+32+1+8+len(".mp3") {
				t.Errorf("audioFilename(%q) too long: %q", tt.text, got)
			}

			// Stable for the same input
			if again := audioFilename(tt.text); again != got {
				t.Errorf("audioFilename not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestAudioFilenameDistinguishesTexts(t *testing.T) {
	// Same 32-char prefix, different content hash
	a := audioFilename(strings.Repeat("x", 40) + "one")
	b := audioFilename(strings.Repeat("x", 40) + "two")
	if a == b {
		t.Errorf("different texts mapped to the same filename %q", a)
	}
}

func TestAudioFilenameForMatchesInternal(t *testing.T) {
	if AudioFilenameFor("hello there") != audioFilename("hello there") {
		t.Error("AudioFilenameFor disagrees with the internal filename")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	tts := NewGoogleTTS(t.TempDir(), "/static/audio")

	if tts.IsSpeaking() {
		t.Error("new narrator reports speaking")
	}

	tts.Stop()
	tts.Stop()
	if tts.IsSpeaking() {
		t.Error("narrator speaking after Stop")
	}
	if tts.Current() != nil {
		t.Error("Current() not nil after Stop")
	}
}

func TestSpeakRejectsEmptyText(t *testing.T) {
	tts := NewGoogleTTS(t.TempDir(), "/static/audio")

	if _, err := tts.Speak("   "); err == nil {
		t.Error("Speak with blank text succeeded")
	}
}

func TestCleanupOrphanedAudio(t *testing.T) {
	dir := t.TempDir()
	tts := NewGoogleTTS(dir, "/static/audio")

	kept := audioFilename("keep me")
	orphan := audioFilename("orphan")
	for _, name := range []string{kept, orphan, "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := tts.CleanupOrphanedAudio(map[string]bool{kept: true}); err != nil {
		t.Fatalf("CleanupOrphanedAudio() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, kept)); err != nil {
		t.Error("referenced audio file was removed")
	}
	if _, err := os.Stat(filepath.Join(dir, orphan)); !os.IsNotExist(err) {
		t.Error("orphaned audio file was not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("non-mp3 file was removed")
	}
}

func TestCleanupMissingDirIsNoop(t *testing.T) {
	tts := NewGoogleTTS(filepath.Join(t.TempDir(), "missing"), "/static/audio")
	if err := tts.CleanupOrphanedAudio(nil); err != nil {
		t.Errorf("CleanupOrphanedAudio() on missing dir error = %v", err)
	}
}
