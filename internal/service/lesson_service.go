package service

import (
	"errors"
	"strings"

	"mochiteach/internal/models"
	"mochiteach/internal/repository"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrTitleRequired  = errors.New("please enter a lesson title")
	ErrNoValidItems   = errors.New("please add at least one lesson item")
	ErrLastItem       = errors.New("a lesson needs at least one item row")
)

// LessonService implements the lesson editor: it shapes drafts from user input
// or existing lessons, validates them, and hands the result to the store.
type LessonService struct {
	store *repository.LessonStore
}

// NewLessonService creates a new lesson service
func NewLessonService(store *repository.LessonStore) *LessonService {
	return &LessonService{store: store}
}

// Draft is the in-progress, unsaved editor state. A draft always shows at
// least one item row, even a blank one that will be discarded on save.
type Draft struct {
	LessonID    string // empty when creating
	Title       string
	Description string
	CoverImage  string
	Items       []models.ItemFormData
}

// BlankDraft returns a new-lesson draft with one empty item row
func (s *LessonService) BlankDraft() *Draft {
	return &Draft{
		Items: []models.ItemFormData{{}},
	}
}

// DraftFromLesson seeds a draft from an existing lesson for editing.
// Returns ErrLessonNotFound when the id is absent.
func (s *LessonService) DraftFromLesson(id string) (*Draft, error) {
	lesson := s.store.GetByID(id)
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	items := make([]models.ItemFormData, 0, len(lesson.Items))
	for _, item := range lesson.Items {
		items = append(items, models.ItemFormData{
			Image:      item.Image,
			Name:       item.Name,
			SpokenText: item.SpokenText,
		})
	}
	if len(items) == 0 {
		items = []models.ItemFormData{{}}
	}

	return &Draft{
		LessonID:    lesson.ID,
		Title:       lesson.Title,
		Description: lesson.Description,
		CoverImage:  lesson.CoverImage,
		Items:       items,
	}, nil
}

// AddItem appends a blank item row to the draft
func (d *Draft) AddItem() {
	d.Items = append(d.Items, models.ItemFormData{})
}

// RemoveItem deletes the item row at index. Removing the last remaining row is
// refused: the editor always shows at least one row.
func (d *Draft) RemoveItem(index int) error {
	if len(d.Items) <= 1 {
		return ErrLastItem
	}
	if index < 0 || index >= len(d.Items) {
		return errors.New("invalid item index")
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	return nil
}

// Save validates the draft and persists it: a new lesson when the draft has no
// id, an update otherwise. Validation failures leave the store untouched.
// Items with neither a name nor spoken text are dropped silently.
func (s *LessonService) Save(draft *Draft) (*models.Lesson, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	validItems := make([]models.ItemFormData, 0, len(draft.Items))
	for _, item := range draft.Items {
		if strings.TrimSpace(item.Name) != "" || strings.TrimSpace(item.SpokenText) != "" {
			validItems = append(validItems, item)
		}
	}
	if len(validItems) == 0 {
		return nil, ErrNoValidItems
	}

	form := models.LessonFormData{
		Title:       title,
		Description: strings.TrimSpace(draft.Description),
		CoverImage:  draft.CoverImage,
		Items:       validItems,
	}

	if draft.LessonID == "" {
		return s.store.Create(form)
	}

	lesson, err := s.store.Update(draft.LessonID, form)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

// List returns all lessons for the library view
func (s *LessonService) List() []models.Lesson {
	return s.store.List()
}

// Get returns a lesson by id, or ErrLessonNotFound
func (s *LessonService) Get(id string) (*models.Lesson, error) {
	lesson := s.store.GetByID(id)
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	return lesson, nil
}

// Delete removes a lesson; returns whether anything was removed
func (s *LessonService) Delete(id string) (bool, error) {
	return s.store.Delete(id)
}
