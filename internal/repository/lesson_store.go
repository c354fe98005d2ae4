package repository

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"

	"mochiteach/internal/models"
)

// LessonsKey is the fixed storage key holding the whole lesson collection as
// one JSON array.
const LessonsKey = "lessons"

// KeyValue is the storage port the lesson store writes through. Implemented by
// KVRepository; tests use an in-memory map.
type KeyValue interface {
	Read(key string) (string, bool, error)
	Write(key, value string) error
}

// LessonStore owns the persisted lesson collection. Every create/update/delete
// serializes and overwrites the entire collection; the single-threaded request
// flow makes that safe. Item ids are regenerated and order re-indexed 0..N-1
// on every write, matching the stored format the app has always used.
type LessonStore struct {
	kv  KeyValue
	now func() time.Time
}

// NewLessonStore creates a lesson store over the given storage port
func NewLessonStore(kv KeyValue) *LessonStore {
	return &LessonStore{kv: kv, now: time.Now}
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateID builds a base36 timestamp plus a random suffix. Uniqueness is not
// checked against the collection; the generator is relied upon.
func (s *LessonStore) generateID() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(s.now().UnixMilli(), 36))
	for i := 0; i < 11; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idAlphabet))))
		if err != nil {
			// crypto/rand failing is effectively fatal elsewhere too; fall
			// back to a clock-derived digit rather than panic here
			sb.WriteByte(idAlphabet[s.now().UnixNano()%36])
			continue
		}
		sb.WriteByte(idAlphabet[n.Int64()])
	}
	return sb.String()
}

// List returns all lessons in stored (insertion) order. A missing or
// unreadable collection degrades to an empty slice: this runs on every page
// load and must never fail the page.
func (s *LessonStore) List() []models.Lesson {
	raw, ok, err := s.kv.Read(LessonsKey)
	if err != nil {
		log.Printf("Warning: failed to read lesson collection: %v", err)
		return []models.Lesson{}
	}
	if !ok || raw == "" {
		return []models.Lesson{}
	}

	var lessons []models.Lesson
	if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
		log.Printf("Warning: lesson collection is corrupt, treating as empty: %v", err)
		return []models.Lesson{}
	}
	if lessons == nil {
		return []models.Lesson{}
	}
	return lessons
}

// GetByID returns the lesson with the given id, or nil when absent
func (s *LessonStore) GetByID(id string) *models.Lesson {
	for _, lesson := range s.List() {
		if lesson.ID == id {
			l := lesson
			return &l
		}
	}
	return nil
}

// Create assigns a fresh id and timestamps, rebuilds the items with new ids
// and sequential order, appends the lesson to the collection and persists it.
func (s *LessonStore) Create(form models.LessonFormData) (*models.Lesson, error) {
	lessons := s.List()

	now := s.now().UTC().Format(time.RFC3339)
	lesson := models.Lesson{
		ID:          s.generateID(),
		Title:       form.Title,
		Description: form.Description,
		CoverImage:  form.CoverImage,
		Items:       s.buildItems(form.Items),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	lessons = append(lessons, lesson)
	if err := s.persist(lessons); err != nil {
		return nil, err
	}

	return &lesson, nil
}

// Update replaces title, description, cover image and items of the lesson with
// the given id, preserving id and createdAt and bumping updatedAt. Items get
// fresh ids and re-indexed order. Returns nil without writing when the id is
// not found.
func (s *LessonStore) Update(id string, form models.LessonFormData) (*models.Lesson, error) {
	lessons := s.List()

	for i := range lessons {
		if lessons[i].ID != id {
			continue
		}

		lessons[i].Title = form.Title
		lessons[i].Description = form.Description
		lessons[i].CoverImage = form.CoverImage
		lessons[i].Items = s.buildItems(form.Items)
		lessons[i].UpdatedAt = s.now().UTC().Format(time.RFC3339)

		if err := s.persist(lessons); err != nil {
			return nil, err
		}

		updated := lessons[i]
		return &updated, nil
	}

	return nil, nil
}

// Delete removes the lesson with the given id and reports whether a lesson was
// actually removed. No write happens when the id is absent.
func (s *LessonStore) Delete(id string) (bool, error) {
	lessons := s.List()

	filtered := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		if lesson.ID != id {
			filtered = append(filtered, lesson)
		}
	}

	if len(filtered) == len(lessons) {
		return false, nil
	}

	if err := s.persist(filtered); err != nil {
		return false, err
	}
	return true, nil
}

// buildItems rebuilds the item list from form rows: fresh ids, order 0..N-1
func (s *LessonStore) buildItems(items []models.ItemFormData) []models.LessonItem {
	built := make([]models.LessonItem, 0, len(items))
	for i, item := range items {
		built = append(built, models.LessonItem{
			ID:         s.generateID(),
			Image:      item.Image,
			Name:       item.Name,
			SpokenText: item.SpokenText,
			Order:      i,
		})
	}
	return built
}

// persist serializes the whole collection and overwrites the stored blob
func (s *LessonStore) persist(lessons []models.Lesson) error {
	data, err := json.Marshal(lessons)
	if err != nil {
		return fmt.Errorf("failed to serialize lesson collection: %w", err)
	}
	if err := s.kv.Write(LessonsKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist lesson collection: %w", err)
	}
	return nil
}
