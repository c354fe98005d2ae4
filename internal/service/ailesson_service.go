package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"mochiteach/internal/models"
)

var (
	ErrTopicRequired       = errors.New("topic is required")
	ErrGeminiNotConfigured = errors.New("GEMINI_API_KEY not configured")
)

const (
	geminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultItemCount     = 5
	maxItemCount         = 10
	contentTemperature   = 0.7
	contentMaxOutTokens  = 1024
	geminiContentTimeout = 30 * time.Second
)

// jsonObjectPattern pulls the first JSON object out of a model reply that may
// wrap it in prose or a code fence
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// AILessonService generates lesson drafts with the Gemini REST API: one text
// call for title, description and items, then one image call per item. Image
// failures degrade to an empty image so the educator can fill them in later.
type AILessonService struct {
	apiKey       string
	textModel    string
	imageModel   string
	client       *http.Client
	imageTimeout time.Duration
}

// NewAILessonService creates a new AI lesson service
func NewAILessonService(apiKey, textModel, imageModel string, imageTimeout time.Duration) *AILessonService {
	return &AILessonService{
		apiKey:       apiKey,
		textModel:    textModel,
		imageModel:   imageModel,
		client:       &http.Client{Timeout: imageTimeout},
		imageTimeout: imageTimeout,
	}
}

// Configured reports whether an API key is set, surfaced by the health check
func (s *AILessonService) Configured() bool {
	return s.apiKey != ""
}

// GeneratedLesson is a lesson draft produced by the AI, not yet saved
type GeneratedLesson struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Items       []models.ItemFormData `json:"items"`
}

// geminiRequest is the generateContent request body
type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	MaxOutputTokens    int      `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// geminiResponse is the subset of the generateContent reply we read
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateLesson produces a full lesson draft: content first, then one
// illustration per item
func (s *AILessonService) GenerateLesson(ctx context.Context, topic string, itemCount int) (*GeneratedLesson, error) {
	lesson, err := s.GenerateLessonContent(ctx, topic, itemCount)
	if err != nil {
		return nil, err
	}

	for i := range lesson.Items {
		image, err := s.generateItemImage(ctx, topic, lesson.Items[i].Name)
		if err != nil {
			// Missing pictures are fine; the editor shows a placeholder
			log.Printf("Image generation failed for %q: %v", lesson.Items[i].Name, err)
			continue
		}
		lesson.Items[i].Image = image
	}

	return lesson, nil
}

// GenerateLessonContent produces a lesson draft without images, the faster
// path when illustration is not needed
func (s *AILessonService) GenerateLessonContent(ctx context.Context, topic string, itemCount int) (*GeneratedLesson, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrTopicRequired
	}
	if !s.Configured() {
		return nil, ErrGeminiNotConfigured
	}
	if itemCount <= 0 {
		itemCount = defaultItemCount
	}
	if itemCount > maxItemCount {
		itemCount = maxItemCount
	}

	prompt := fmt.Sprintf(`Generate an educational lesson about "%s" for children aged 4-8.

Return a valid JSON object with this exact structure:
{
    "title": "Learn About %s",
    "description": "A fun lesson about %s for young learners.",
    "items": [
        {"name": "item name", "spokenText": "Simple, engaging text about this item (1-2 sentences)"}
    ]
}

Generate exactly %d items. Keep language simple and child-friendly.
Only return the JSON, no other text.`, topic, topic, topic, itemCount)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:     contentTemperature,
			MaxOutputTokens: contentMaxOutTokens,
		},
	}

	ctx, cancel := context.WithTimeout(ctx, geminiContentTimeout)
	defer cancel()

	text, err := s.generateText(ctx, s.textModel, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to generate lesson content: %w", err)
	}

	jsonText := jsonObjectPattern.FindString(text)
	if jsonText == "" {
		return nil, errors.New("could not parse JSON from content response")
	}

	lesson := &GeneratedLesson{}
	if err := json.Unmarshal([]byte(jsonText), lesson); err != nil {
		return nil, fmt.Errorf("failed to parse generated lesson: %w", err)
	}

	if lesson.Title == "" {
		lesson.Title = fmt.Sprintf("Learn About %s", topic)
	}
	if lesson.Description == "" {
		lesson.Description = fmt.Sprintf("A fun lesson about %s", topic)
	}

	return lesson, nil
}

// generateItemImage asks the image model for one child-friendly illustration
// and returns it as a data URI, or "" when the model produced no image
func (s *AILessonService) generateItemImage(ctx context.Context, topic, itemName string) (string, error) {
	prompt := fmt.Sprintf(`Create a simple, colorful, child-friendly cartoon illustration of "%s" for an educational children's app about "%s".
The image should be:
- Bright and cheerful colors
- Simple and clear shapes
- Cute and friendly style suitable for ages 4-8
- No text in the image
- White or simple background
- Single subject focused`, itemName, topic)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, s.imageTimeout)
	defer cancel()

	resp, err := s.generate(ctx, s.imageModel, reqBody)
	if err != nil {
		return "", err
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && strings.HasPrefix(part.InlineData.MimeType, "image/") {
				return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data), nil
			}
		}
	}

	return "", nil
}

// generateText runs a generateContent call and returns the first text part
func (s *AILessonService) generateText(ctx context.Context, model string, reqBody geminiRequest) (string, error) {
	resp, err := s.generate(ctx, model, reqBody)
	if err != nil {
		return "", err
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}

	return "", errors.New("no content in Gemini response")
}

// generate posts a generateContent request to the named model
func (s *AILessonService) generate(ctx context.Context, model string, reqBody geminiRequest) (*geminiResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("gemini API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	result := &geminiResponse{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}

	return result, nil
}
