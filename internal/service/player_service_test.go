package service

import (
	"context"
	"fmt"
	"testing"

	"mochiteach/internal/audio"
	"mochiteach/internal/models"
	"mochiteach/internal/repository"
)

// fakeNarrator records Speak/Stop calls for assertions
type fakeNarrator struct {
	speaking bool
	spoken   []string
	stops    int
}

func (f *fakeNarrator) Speak(text string) (*audio.Utterance, error) {
	f.speaking = true
	f.spoken = append(f.spoken, text)
	return &audio.Utterance{
		ID:       fmt.Sprintf("u%d", len(f.spoken)),
		Text:     text,
		AudioURL: "/static/audio/test.mp3",
	}, nil
}

func (f *fakeNarrator) Stop() {
	f.speaking = false
	f.stops++
}

func (f *fakeNarrator) IsSpeaking() bool { return f.speaking }

func (f *fakeNarrator) PreloadVoices(ctx context.Context) ([]audio.Voice, error) {
	return nil, nil
}

func newTestPlayer(t *testing.T, items ...models.ItemFormData) (*PlayerService, *fakeNarrator, string) {
	t.Helper()

	store := repository.NewLessonStore(newMemKV())
	lesson, err := store.Create(models.LessonFormData{Title: "Fruits", Items: items})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	narrator := &fakeNarrator{}
	return NewPlayerService(store, narrator), narrator, lesson.ID
}

func fourItems() []models.ItemFormData {
	return []models.ItemFormData{
		{Name: "Apple", SpokenText: "Apples are crunchy."},
		{Name: "Banana"},
		{Name: "Cherry"},
		{Name: "Mango"},
	}
}

func TestLoadUnknownLesson(t *testing.T) {
	player, _, _ := newTestPlayer(t, fourItems()...)

	if _, err := player.Load("sess", "missing"); err != ErrLessonNotFound {
		t.Errorf("Load() error = %v, want ErrLessonNotFound", err)
	}
}

func TestProgress(t *testing.T) {
	player, _, lessonID := newTestPlayer(t, fourItems()...)

	view, err := player.Load("sess", lessonID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if view.Index != 0 || view.Count != 4 {
		t.Fatalf("view = index %d count %d", view.Index, view.Count)
	}
	if view.ProgressPct != 25 {
		t.Errorf("ProgressPct at item 1/4 = %d, want 25", view.ProgressPct)
	}

	view = player.Next("sess")
	if view.Index != 1 {
		t.Fatalf("Index after Next = %d", view.Index)
	}
	if view.ProgressPct != 50 {
		t.Errorf("ProgressPct at item 2/4 = %d, want 50", view.ProgressPct)
	}
}

func TestNextSequenceCompletes(t *testing.T) {
	player, _, lessonID := newTestPlayer(t, fourItems()...)
	player.Load("sess", lessonID)

	for i := 0; i < 3; i++ {
		view := player.Next("sess")
		if view.Complete {
			t.Fatalf("lesson completed after %d advances", i+1)
		}
	}

	view := player.Next("sess")
	if !view.Complete {
		t.Fatal("lesson did not complete after the last item")
	}

	if player.Current("sess") != nil {
		t.Error("session still live after completion")
	}
}

func TestNextStopsNarrationFirst(t *testing.T) {
	player, narrator, lessonID := newTestPlayer(t, fourItems()...)
	player.Load("sess", lessonID)

	player.Speak("sess")
	if !narrator.speaking {
		t.Fatal("narrator not speaking after Speak")
	}

	view := player.Next("sess")
	if narrator.speaking {
		t.Error("narration still playing after Next")
	}
	if view.Speaking {
		t.Error("view reports speaking after Next")
	}
	if narrator.stops == 0 {
		t.Error("Next did not stop the narrator")
	}
}

func TestSpeakToggles(t *testing.T) {
	player, narrator, lessonID := newTestPlayer(t, fourItems()...)
	player.Load("sess", lessonID)

	view := player.Speak("sess")
	if !view.Speaking {
		t.Fatal("Speak did not start narration")
	}
	if len(narrator.spoken) != 1 || narrator.spoken[0] != "Apples are crunchy." {
		t.Errorf("spoken = %v", narrator.spoken)
	}
	if view.AudioURL == "" {
		t.Error("speaking view has no audio URL")
	}

	view = player.Speak("sess")
	if view.Speaking {
		t.Error("second Speak did not stop narration")
	}
	if len(narrator.spoken) != 1 {
		t.Errorf("toggle-off spoke again: %v", narrator.spoken)
	}
}

func TestSpeakFallsBackToName(t *testing.T) {
	player, narrator, lessonID := newTestPlayer(t, models.ItemFormData{Name: "Banana"})
	player.Load("sess", lessonID)

	player.Speak("sess")
	if len(narrator.spoken) != 1 || narrator.spoken[0] != "Banana" {
		t.Errorf("spoken = %v, want the item name", narrator.spoken)
	}
}

func TestRepeatAlwaysRestarts(t *testing.T) {
	player, narrator, lessonID := newTestPlayer(t, fourItems()...)
	player.Load("sess", lessonID)

	player.Speak("sess")
	stops := narrator.stops

	view := player.Repeat("sess")
	if !view.Speaking {
		t.Error("Repeat left narration stopped")
	}
	if narrator.stops != stops+1 {
		t.Error("Repeat did not stop before speaking again")
	}
	if len(narrator.spoken) != 2 {
		t.Errorf("Repeat spoke %d times total, want 2", len(narrator.spoken))
	}

	// Repeat from silence also speaks
	player.Speak("sess") // off
	view = player.Repeat("sess")
	if !view.Speaking {
		t.Error("Repeat from silence did not speak")
	}
}

func TestEmptyLessonNeverTransitions(t *testing.T) {
	player, narrator, lessonID := newTestPlayer(t)

	view, err := player.Load("sess", lessonID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !view.Empty {
		t.Fatal("zero-item lesson view is not Empty")
	}

	view = player.Next("sess")
	if view == nil || view.Complete {
		t.Error("Next on an empty lesson transitioned")
	}
	if view = player.Speak("sess"); view.Speaking {
		t.Error("Speak started narration on an empty lesson")
	}
	if len(narrator.spoken) != 0 {
		t.Errorf("narrator spoke on an empty lesson: %v", narrator.spoken)
	}
}

func TestExit(t *testing.T) {
	player, narrator, lessonID := newTestPlayer(t, fourItems()...)
	player.Load("sess", lessonID)
	player.Speak("sess")

	player.Exit("sess")
	if narrator.speaking {
		t.Error("narration still playing after Exit")
	}
	if player.Current("sess") != nil {
		t.Error("session still live after Exit")
	}

	// Exit without a session is a no-op
	player.Exit("sess")
	player.Exit("other")
}

func TestSessionsAreIndependent(t *testing.T) {
	player, _, lessonID := newTestPlayer(t, fourItems()...)

	player.Load("alice", lessonID)
	player.Load("bob", lessonID)

	player.Next("alice")

	if view := player.Current("alice"); view.Index != 1 {
		t.Errorf("alice index = %d, want 1", view.Index)
	}
	if view := player.Current("bob"); view.Index != 0 {
		t.Errorf("bob index = %d, want 0", view.Index)
	}
}
