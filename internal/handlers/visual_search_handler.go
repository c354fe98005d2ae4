package handlers

import (
	"html/template"
	"log"
	"net/http"

	"mochiteach/internal/service"
)

// VisualSearchHandler serves the picture search and AI drawing page
type VisualSearchHandler struct {
	visualService *service.VisualSearchService
	middleware    *Middleware
	templates     *template.Template
}

// NewVisualSearchHandler creates a new visual search handler
func NewVisualSearchHandler(visualService *service.VisualSearchService, middleware *Middleware, templates *template.Template) *VisualSearchHandler {
	return &VisualSearchHandler{
		visualService: visualService,
		middleware:    middleware,
		templates:     templates,
	}
}

// Show renders the empty visual search page
func (h *VisualSearchHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, VisualSearchViewData{
		Title:     "Visual Search - Mochi",
		User:      GetUserFromContext(r.Context()),
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// Search runs a photo search and renders the results
func (h *VisualSearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	query := r.FormValue("query")
	data := VisualSearchViewData{
		Title:     "Visual Search - Mochi",
		User:      GetUserFromContext(r.Context()),
		Query:     query,
		CSRFToken: h.middleware.CSRFToken(r),
	}

	results, err := h.visualService.Search(r.Context(), query)
	if err != nil {
		data.Error = "Mochi needs to know what to look for!"
		h.render(w, r, data)
		return
	}

	data.Results = results
	h.render(w, r, data)
}

// Generate asks the AI to draw the query and renders the card
func (h *VisualSearchHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	query := r.FormValue("query")
	data := VisualSearchViewData{
		Title:     "Visual Search - Mochi",
		User:      GetUserFromContext(r.Context()),
		Query:     query,
		CSRFToken: h.middleware.CSRFToken(r),
	}

	generated, err := h.visualService.Generate(r.Context(), query)
	if err != nil {
		data.Error = "Mochi needs to know what to draw!"
		h.render(w, r, data)
		return
	}

	data.Generated = generated
	h.render(w, r, data)
}

// TrackDownload records an image pick with the photo provider, then returns
// to the search page
func (h *VisualSearchHandler) TrackDownload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	h.visualService.TrackDownload(r.Context(), r.FormValue("download_location"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *VisualSearchHandler) render(w http.ResponseWriter, r *http.Request, data VisualSearchViewData) {
	if err := h.templates.ExecuteTemplate(w, "visual_search.tmpl", data); err != nil {
		log.Printf("Error rendering visual_search template: %v", err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
