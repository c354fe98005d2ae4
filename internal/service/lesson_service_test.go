package service

import (
	"errors"
	"testing"

	"mochiteach/internal/models"
	"mochiteach/internal/repository"
)

// memKV is an in-memory storage port for service tests
type memKV struct {
	data      map[string]string
	writeHits int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Read(key string) (string, bool, error) {
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memKV) Write(key, value string) error {
	m.writeHits++
	m.data[key] = value
	return nil
}

func newTestLessonService() (*LessonService, *memKV) {
	kv := newMemKV()
	return NewLessonService(repository.NewLessonStore(kv)), kv
}

func TestSaveValidation(t *testing.T) {
	tests := []struct {
		name    string
		draft   *Draft
		wantErr error
	}{
		{
			name:    "blank title",
			draft:   &Draft{Title: "   ", Items: []models.ItemFormData{{Name: "Apple"}}},
			wantErr: ErrTitleRequired,
		},
		{
			name:    "no items",
			draft:   &Draft{Title: "Fruits", Items: []models.ItemFormData{}},
			wantErr: ErrNoValidItems,
		},
		{
			name: "all items blank",
			draft: &Draft{Title: "Fruits", Items: []models.ItemFormData{
				{Name: "  ", SpokenText: ""},
				{Name: "", SpokenText: "   "},
			}},
			wantErr: ErrNoValidItems,
		},
		{
			name:  "spoken text only is a valid item",
			draft: &Draft{Title: "Fruits", Items: []models.ItemFormData{{SpokenText: "An apple a day"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, kv := newTestLessonService()
			_, err := svc.Save(tt.draft)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && kv.writeHits != 0 {
				t.Errorf("rejected draft reached storage (%d writes)", kv.writeHits)
			}
		})
	}
}

func TestSaveFiltersBlankRows(t *testing.T) {
	svc, _ := newTestLessonService()

	lesson, err := svc.Save(&Draft{
		Title: "  Fruits  ",
		Items: []models.ItemFormData{
			{Name: "Apple"},
			{}, // blank row from the editor
			{Name: "Banana"},
		},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if lesson.Title != "Fruits" {
		t.Errorf("title = %q, want trimmed %q", lesson.Title, "Fruits")
	}
	if len(lesson.Items) != 2 {
		t.Fatalf("got %d items, want 2 after filtering", len(lesson.Items))
	}
	if lesson.Items[0].Name != "Apple" || lesson.Items[1].Name != "Banana" {
		t.Errorf("items = %+v", lesson.Items)
	}
}

func TestSaveUpdateUnknownLesson(t *testing.T) {
	svc, kv := newTestLessonService()

	_, err := svc.Save(&Draft{
		LessonID: "missing",
		Title:    "Fruits",
		Items:    []models.ItemFormData{{Name: "Apple"}},
	})
	if !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("Save() error = %v, want ErrLessonNotFound", err)
	}
	if kv.writeHits != 0 {
		t.Errorf("failed update reached storage (%d writes)", kv.writeHits)
	}
}

func TestDraftRemoveItem(t *testing.T) {
	draft := &Draft{Items: []models.ItemFormData{{Name: "Apple"}, {Name: "Banana"}}}

	if err := draft.RemoveItem(0); err != nil {
		t.Fatalf("RemoveItem(0) error = %v", err)
	}
	if len(draft.Items) != 1 || draft.Items[0].Name != "Banana" {
		t.Errorf("items after remove = %+v", draft.Items)
	}

	if err := draft.RemoveItem(0); !errors.Is(err, ErrLastItem) {
		t.Errorf("RemoveItem on last row error = %v, want ErrLastItem", err)
	}
	if len(draft.Items) != 1 {
		t.Error("last row was removed")
	}
}

func TestDraftRemoveItemBadIndex(t *testing.T) {
	draft := &Draft{Items: []models.ItemFormData{{Name: "Apple"}, {Name: "Banana"}}}
	if err := draft.RemoveItem(5); err == nil {
		t.Error("RemoveItem(5) succeeded on a 2-item draft")
	}
	if err := draft.RemoveItem(-1); err == nil {
		t.Error("RemoveItem(-1) succeeded")
	}
}

func TestBlankDraftHasOneRow(t *testing.T) {
	svc, _ := newTestLessonService()
	draft := svc.BlankDraft()
	if len(draft.Items) != 1 {
		t.Errorf("BlankDraft has %d rows, want 1", len(draft.Items))
	}
	if draft.LessonID != "" {
		t.Errorf("BlankDraft has lesson id %q", draft.LessonID)
	}
}

func TestDraftFromLessonRoundTrip(t *testing.T) {
	svc, _ := newTestLessonService()

	saved, err := svc.Save(&Draft{
		Title:       "Fruits",
		Description: "Tasty",
		Items:       []models.ItemFormData{{Name: "Apple", SpokenText: "Crunchy"}},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	draft, err := svc.DraftFromLesson(saved.ID)
	if err != nil {
		t.Fatalf("DraftFromLesson() error = %v", err)
	}
	if draft.LessonID != saved.ID || draft.Title != "Fruits" || draft.Description != "Tasty" {
		t.Errorf("draft = %+v", draft)
	}
	if len(draft.Items) != 1 || draft.Items[0].SpokenText != "Crunchy" {
		t.Errorf("draft items = %+v", draft.Items)
	}

	if _, err := svc.DraftFromLesson("missing"); !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("DraftFromLesson(missing) error = %v, want ErrLessonNotFound", err)
	}
}
