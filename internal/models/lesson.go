package models

// LessonItem is one unit of lesson content: an image, a short label and the
// text narrated when the item is presented.
type LessonItem struct {
	ID         string `json:"id"`
	Image      string `json:"image"` // URI or data URI, may be empty
	Name       string `json:"name"`
	SpokenText string `json:"spokenText"`
	Order      int    `json:"order"` // zero-based, recomputed on every save
}

// Lesson is a titled collection of ordered items intended for sequential
// narrated presentation. The persisted timestamps are RFC 3339 strings for
// compatibility with the stored collection format.
type Lesson struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CoverImage  string       `json:"coverImage"`
	Items       []LessonItem `json:"items"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

// ItemFormData is one draft item row in the editor, before ids and order are
// assigned on save.
type ItemFormData struct {
	Image      string `json:"image"`
	Name       string `json:"name"`
	SpokenText string `json:"spokenText"`
}

// LessonFormData is the editor's draft of a lesson handed to the store on save
type LessonFormData struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CoverImage  string         `json:"coverImage"`
	Items       []ItemFormData `json:"items"`
}

// NarrationText returns the text narrated for an item: the spoken text, or the
// name when no spoken text was provided.
func (it LessonItem) NarrationText() string {
	if it.SpokenText != "" {
		return it.SpokenText
	}
	return it.Name
}
