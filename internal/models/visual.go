package models

import "time"

// VisualResult is one image result returned by the visual search proxy
type VisualResult struct {
	ID          string
	Title       string
	ImageURL    string
	Type        string // always "image" for now
	Description string
}

// GeneratedContent is an AI-generated image card
type GeneratedContent struct {
	ID          string
	Title       string
	ImageURL    string
	Type        string
	GeneratedAt time.Time
	Description string
}
