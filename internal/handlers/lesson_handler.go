package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"mochiteach/internal/models"
	"mochiteach/internal/service"
)

// LessonHandler serves the lesson library and the lesson editor
type LessonHandler struct {
	lessonService *service.LessonService
	middleware    *Middleware
	templates     *template.Template
	uploadMaxSize int64
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessonService *service.LessonService, middleware *Middleware, templates *template.Template, uploadMaxSize int64) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		middleware:    middleware,
		templates:     templates,
		uploadMaxSize: uploadMaxSize,
	}
}

// Library renders the lesson library page
func (h *LessonHandler) Library(w http.ResponseWriter, r *http.Request) {
	data := LessonLibraryViewData{
		Title:     "Lessons - Mochi",
		User:      GetUserFromContext(r.Context()),
		Lessons:   h.lessonService.List(),
		CSRFToken: h.middleware.CSRFToken(r),
		Flash:     PopFlash(w, r),
	}
	h.render(w, "lesson_library.tmpl", data)
}

// ShowCreate renders the editor with a fresh draft
func (h *LessonHandler) ShowCreate(w http.ResponseWriter, r *http.Request) {
	h.renderEditor(w, r, h.lessonService.BlankDraft(), "")
}

// ShowEdit renders the editor seeded from an existing lesson
func (h *LessonHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	draft, err := h.lessonService.DraftFromLesson(id)
	if err != nil {
		SetFlash(w, r, Flash{Title: "Lesson not found", Severity: "error"})
		http.Redirect(w, r, "/lessons", http.StatusSeeOther)
		return
	}

	h.renderEditor(w, r, draft, "")
}

// Save handles every editor form submission. The action field selects between
// saving, appending an item row and removing one; add and remove re-render
// the editor without touching the store.
func (h *LessonHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.uploadMaxSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
		return
	}

	draft, uploadErr := h.draftFromForm(r)
	errMsg := ""
	if uploadErr != nil {
		errMsg = uploadErr.Error()
	}

	switch r.FormValue("action") {
	case "add-item":
		draft.AddItem()
		h.renderEditor(w, r, draft, errMsg)
		return

	case "remove-item":
		index, err := strconv.Atoi(r.FormValue("remove_index"))
		if err != nil {
			h.renderEditor(w, r, draft, ErrInvalidFormData)
			return
		}
		if err := draft.RemoveItem(index); err != nil {
			h.renderEditor(w, r, draft, err.Error())
			return
		}
		h.renderEditor(w, r, draft, errMsg)
		return
	}

	if uploadErr != nil {
		h.renderEditor(w, r, draft, errMsg)
		return
	}

	lesson, err := h.lessonService.Save(draft)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			SetFlash(w, r, Flash{Title: "Lesson not found", Severity: "error"})
			http.Redirect(w, r, "/lessons", http.StatusSeeOther)
			return
		}
		h.renderEditor(w, r, draft, err.Error())
		return
	}

	title := "Lesson created!"
	if draft.LessonID != "" {
		title = "Lesson updated!"
	}
	SetFlash(w, r, Flash{Title: title, Description: lesson.Title, Severity: "success"})
	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}

// Delete removes a lesson and returns to the library
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.lessonService.Delete(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to delete lesson", err)
		return
	}

	if deleted {
		SetFlash(w, r, Flash{Title: "Lesson deleted", Severity: "success"})
	} else {
		SetFlash(w, r, Flash{Title: "Lesson not found", Severity: "error"})
	}
	http.Redirect(w, r, "/lessons", http.StatusSeeOther)
}

// draftFromForm rebuilds the editor draft from the posted form. Item rows
// arrive as parallel arrays in field order; a freshly uploaded image file
// replaces the row's carried-over image, inlined as a data URI. The draft is
// returned even when an upload fails so the user's typed input survives the
// error re-render.
func (h *LessonHandler) draftFromForm(r *http.Request) (*service.Draft, error) {
	draft := &service.Draft{
		LessonID:    r.FormValue("lesson_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		CoverImage:  r.FormValue("cover_image"),
	}

	var uploadErr error
	if uri, err := h.inlineImage(formFileHeader(r, "cover_image_file")); err != nil {
		uploadErr = err
	} else if uri != "" {
		draft.CoverImage = uri
	}

	names := r.Form["item_name"]
	spoken := r.Form["item_spoken"]
	images := r.Form["item_image"]

	var itemFiles []*multipart.FileHeader
	if r.MultipartForm != nil {
		itemFiles = r.MultipartForm.File["item_image_file"]
	}

	for i := range names {
		item := models.ItemFormData{Name: names[i]}
		if i < len(spoken) {
			item.SpokenText = spoken[i]
		}
		if i < len(images) {
			item.Image = images[i]
		}
		if i < len(itemFiles) {
			if uri, err := h.inlineImage(itemFiles[i]); err != nil {
				uploadErr = err
			} else if uri != "" {
				item.Image = uri
			}
		}
		draft.Items = append(draft.Items, item)
	}
	if len(draft.Items) == 0 {
		draft.Items = []models.ItemFormData{{}}
	}

	return draft, uploadErr
}

// inlineImage reads one uploaded image and encodes it as a self-contained
// data URI, so lessons carry their pictures inside the stored blob. A nil or
// empty file header means the user left the input untouched.
func (h *LessonHandler) inlineImage(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" || fh.Size == 0 {
		return "", nil
	}
	if fh.Size > h.uploadMaxSize {
		return "", fmt.Errorf("image %q is too large (max %dMB)", fh.Filename, h.uploadMaxSize/(1024*1024))
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read image %q: %w", fh.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.uploadMaxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image %q: %w", fh.Filename, err)
	}
	if int64(len(data)) > h.uploadMaxSize {
		return "", fmt.Errorf("image %q is too large (max %dMB)", fh.Filename, h.uploadMaxSize/(1024*1024))
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// formFileHeader returns the first uploaded file for a field, or nil
func formFileHeader(r *http.Request, name string) *multipart.FileHeader {
	if r.MultipartForm == nil || len(r.MultipartForm.File[name]) == 0 {
		return nil
	}
	return r.MultipartForm.File[name][0]
}

func (h *LessonHandler) renderEditor(w http.ResponseWriter, r *http.Request, draft *service.Draft, errMsg string) {
	title := "Edit Lesson - Mochi"
	if draft.LessonID == "" {
		title = "Create Lesson - Mochi"
	}

	data := LessonEditorViewData{
		Title:     title,
		User:      GetUserFromContext(r.Context()),
		Draft:     draft,
		IsNew:     draft.LessonID == "",
		Error:     errMsg,
		CSRFToken: h.middleware.CSRFToken(r),
	}
	h.render(w, "lesson_editor.tmpl", data)
}

func (h *LessonHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s template: %v", name, err)
		http.Error(w, ErrInternalServerError, http.StatusInternalServerError)
	}
}
