package handlers

import (
	"html/template"
	"log"
	"net/http"

	"mochiteach/internal/service"
)

// PlayerHandler drives the full-screen lesson player
type PlayerHandler struct {
	playerService *service.PlayerService
	middleware    *Middleware
	templates     *template.Template
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *service.PlayerService, middleware *Middleware, templates *template.Template) *PlayerHandler {
	return &PlayerHandler{
		playerService: playerService,
		middleware:    middleware,
		templates:     templates,
	}
}

// Play loads a lesson into the player and shows its first item
func (h *PlayerHandler) Play(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	view, err := h.playerService.Load(sessionID(r), id)
	if err != nil {
		SetFlash(w, r, Flash{Title: "Lesson not found", Severity: "error"})
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	h.renderPlayer(w, r, view)
}

// Show re-renders the player at the session's current position
func (h *PlayerHandler) Show(w http.ResponseWriter, r *http.Request) {
	view := h.playerService.Current(sessionID(r))
	if view == nil {
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}
	h.renderPlayer(w, r, view)
}

// Next advances the player, completing the lesson after the last item
func (h *PlayerHandler) Next(w http.ResponseWriter, r *http.Request) {
	view := h.playerService.Next(sessionID(r))
	if view == nil {
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	if view.Complete {
		SetFlash(w, r, Flash{Title: "Lesson complete!", Description: "Great job! 🎉", Severity: "success"})
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	h.renderPlayer(w, r, view)
}

// Speak toggles narration for the current item
func (h *PlayerHandler) Speak(w http.ResponseWriter, r *http.Request) {
	view := h.playerService.Speak(sessionID(r))
	if view == nil {
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}
	h.renderPlayer(w, r, view)
}

// Repeat restarts narration for the current item
func (h *PlayerHandler) Repeat(w http.ResponseWriter, r *http.Request) {
	view := h.playerService.Repeat(sessionID(r))
	if view == nil {
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}
	h.renderPlayer(w, r, view)
}

// Exit stops narration, discards the session and returns to the library
func (h *PlayerHandler) Exit(w http.ResponseWriter, r *http.Request) {
	h.playerService.Exit(sessionID(r))
	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}

func (h *PlayerHandler) renderPlayer(w http.ResponseWriter, r *http.Request, view *service.PlayerView) {
	data := PlayerViewData{
		Title:     view.Lesson.Title + " - Mochi",
		User:      GetUserFromContext(r.Context()),
		View:      view,
		CSRFToken: h.middleware.CSRFToken(r),
		Flash:     PopFlash(w, r),
	}

	if err := h.templates.ExecuteTemplate(w, "lesson_player.tmpl", data); err != nil {
		log.Printf("Error rendering lesson_player template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
