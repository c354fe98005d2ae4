package audio

import "context"

// Voice describes one available narration voice
type Voice struct {
	Name string
	Lang string
}

// Utterance identifies one started narration and where its audio can be played
// from. Only one utterance is ever live at a time; starting a new one or
// calling Stop invalidates the previous handle.
type Utterance struct {
	ID       string
	Text     string
	AudioURL string
}

// Narrator is the speech synthesis port used by the lesson player. Speak
// cancels any in-flight utterance before starting a new one; Stop is
// idempotent and safe to call when nothing is speaking.
type Narrator interface {
	Speak(text string) (*Utterance, error)
	Stop()
	IsSpeaking() bool
	PreloadVoices(ctx context.Context) ([]Voice, error)
}
