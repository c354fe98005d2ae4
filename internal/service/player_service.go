package service

import (
	"log"
	"sync"

	"mochiteach/internal/audio"
	"mochiteach/internal/models"
	"mochiteach/internal/repository"
)

// PlayerState is the lifecycle state of one playback session
type PlayerState int

const (
	PlayerIdle PlayerState = iota
	PlayerReady
	PlayerPresenting
	PlayerComplete
)

// playerSession holds one browser session's position inside a lesson
type playerSession struct {
	lesson    models.Lesson
	index     int
	state     PlayerState
	utterance *audio.Utterance // live utterance for this session, nil when silent
}

// PlayerView is what the player page renders for the current position
type PlayerView struct {
	Lesson      models.Lesson
	Item        models.LessonItem
	Index       int
	Count       int
	ProgressPct int
	IsLast      bool
	Speaking    bool
	AudioURL    string
	Empty       bool // zero-item lesson: render nothing, no transitions
	Complete    bool
}

// PlayerService sequences lesson playback, one item visible at a time, and
// drives narration through the Narrator port. Narration for item i is always
// stopped before item i+1 can start: Next and Exit call Stop first.
type PlayerService struct {
	store    *repository.LessonStore
	narrator audio.Narrator

	mu       sync.Mutex
	sessions map[string]*playerSession
}

// NewPlayerService creates a new player service
func NewPlayerService(store *repository.LessonStore, narrator audio.Narrator) *PlayerService {
	return &PlayerService{
		store:    store,
		narrator: narrator,
		sessions: make(map[string]*playerSession),
	}
}

// Load starts (or restarts) playback of a lesson for the given browser
// session. Returns ErrLessonNotFound when the id is absent; the caller
// notifies and redirects to the library.
func (s *PlayerService) Load(sessionID, lessonID string) (*PlayerView, error) {
	lesson := s.store.GetByID(lessonID)
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	ps := &playerSession{lesson: *lesson, state: PlayerReady}
	if len(lesson.Items) > 0 {
		ps.state = PlayerPresenting
	}

	s.mu.Lock()
	s.sessions[sessionID] = ps
	s.mu.Unlock()

	return s.view(ps), nil
}

// Current returns the view for the session's current position, or nil when
// the session has no loaded lesson
func (s *PlayerService) Current(sessionID string) *PlayerView {
	s.mu.Lock()
	ps, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.view(ps)
}

// Next advances to the following item, or completes the lesson after the last
// one. In-flight narration is always stopped first so audio never overlaps.
// Returns the new view; view.Complete is set when the lesson finished and the
// session was discarded.
func (s *PlayerService) Next(sessionID string) *PlayerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	s.stopLocked(ps)

	if ps.state != PlayerPresenting {
		// Zero-item lessons never transition
		return s.view(ps)
	}

	if ps.index+1 < len(ps.lesson.Items) {
		ps.index++
		return s.view(ps)
	}

	ps.state = PlayerComplete
	delete(s.sessions, sessionID)
	view := s.view(ps)
	view.Complete = true
	return view
}

// Speak toggles narration for the current item: it starts narration when
// silent, and stops it when this session's utterance is already playing.
func (s *PlayerService) Speak(sessionID string) *PlayerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.sessions[sessionID]
	if !ok || ps.state != PlayerPresenting {
		return s.viewOrNil(ps, ok)
	}

	if ps.utterance != nil && s.narrator.IsSpeaking() {
		s.stopLocked(ps)
		return s.view(ps)
	}

	s.speakLocked(ps)
	return s.view(ps)
}

// Repeat restarts narration for the current item regardless of whether
// anything is playing: always stop, then speak again.
func (s *PlayerService) Repeat(sessionID string) *PlayerView {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, ok := s.sessions[sessionID]
	if !ok || ps.state != PlayerPresenting {
		return s.viewOrNil(ps, ok)
	}

	s.stopLocked(ps)
	s.speakLocked(ps)
	return s.view(ps)
}

// Exit halts narration and discards the session. Safe to call in any state.
func (s *PlayerService) Exit(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ps, ok := s.sessions[sessionID]; ok {
		s.stopLocked(ps)
		delete(s.sessions, sessionID)
	}
}

// speakLocked starts narration for the session's current item. Narration
// errors surface as a toast, never as a failed page.
func (s *PlayerService) speakLocked(ps *playerSession) {
	item := ps.lesson.Items[ps.index]
	utterance, err := s.narrator.Speak(item.NarrationText())
	if err != nil {
		log.Printf("Narration error for lesson %s item %d: %v", ps.lesson.ID, ps.index, err)
		ps.utterance = nil
		return
	}
	ps.utterance = utterance
}

// stopLocked halts narration and clears the session's utterance handle.
// Stop on the narrator is idempotent.
func (s *PlayerService) stopLocked(ps *playerSession) {
	s.narrator.Stop()
	ps.utterance = nil
}

func (s *PlayerService) viewOrNil(ps *playerSession, ok bool) *PlayerView {
	if !ok {
		return nil
	}
	return s.view(ps)
}

func (s *PlayerService) view(ps *playerSession) *PlayerView {
	count := len(ps.lesson.Items)
	view := &PlayerView{
		Lesson: ps.lesson,
		Index:  ps.index,
		Count:  count,
	}

	if count == 0 {
		view.Empty = true
		return view
	}

	view.Item = ps.lesson.Items[ps.index]
	view.ProgressPct = (ps.index + 1) * 100 / count
	view.IsLast = ps.index == count-1
	view.Speaking = ps.utterance != nil && s.narrator.IsSpeaking()
	if view.Speaking {
		view.AudioURL = ps.utterance.AudioURL
	}
	return view
}
