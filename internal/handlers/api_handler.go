package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mochiteach/internal/service"
)

// APIHandler serves the JSON endpoints used by the AI lesson generator
type APIHandler struct {
	aiService     *service.AILessonService
	lessonService *service.LessonService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(aiService *service.AILessonService, lessonService *service.LessonService) *APIHandler {
	return &APIHandler{
		aiService:     aiService,
		lessonService: lessonService,
	}
}

type generateLessonRequest struct {
	Topic     string `json:"topic"`
	ItemCount int    `json:"itemCount"`
}

// GenerateLesson generates a full lesson with illustrations and saves it to
// the library
func (h *APIHandler) GenerateLesson(w http.ResponseWriter, r *http.Request) {
	var req generateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	generated, err := h.aiService.GenerateLesson(r.Context(), req.Topic, req.ItemCount)
	if err != nil {
		h.respondGenerateError(w, err)
		return
	}

	lesson, err := h.lessonService.Save(&service.Draft{
		Title:       generated.Title,
		Description: generated.Description,
		Items:       generated.Items,
	})
	if err != nil {
		log.Printf("Failed to save generated lesson: %v", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save generated lesson"})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"lesson":  lesson,
	})
}

// GenerateLessonContent generates lesson text without illustrations and
// returns it unsaved, the faster path for previews
func (h *APIHandler) GenerateLessonContent(w http.ResponseWriter, r *http.Request) {
	var req generateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	generated, err := h.aiService.GenerateLessonContent(r.Context(), req.Topic, req.ItemCount)
	if err != nil {
		h.respondGenerateError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"lesson":  generated,
	})
}

// Health reports service status and whether AI generation is available
func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"gemini_configured": h.aiService.Configured(),
	})
}

func (h *APIHandler) respondGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTopicRequired):
		respondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "Topic is required"})
	case errors.Is(err, service.ErrGeminiNotConfigured):
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "GEMINI_API_KEY not configured"})
	default:
		log.Printf("Lesson generation failed: %v", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{"error": "Lesson generation failed"})
	}
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
