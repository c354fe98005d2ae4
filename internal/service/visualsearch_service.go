package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"mochiteach/internal/models"
)

var ErrQueryRequired = errors.New("query is required")

const (
	visualSearchTimeout = 15 * time.Second

	// fallbackPuppyURL is shown when the image backend is unreachable or a
	// query was blocked, so the page never renders broken
	fallbackPuppyURL = "https://images.unsplash.com/photo-1583511655857-d19b40a7a54e?w=1024&q=80"
)

var base64Junk = regexp.MustCompile(`[^A-Za-z0-9+/=]`)

// BlocklistSource supplies the safety terms that force a harmless fallback
// instead of passing the query to the image backend
type BlocklistSource interface {
	BlockedTerms() ([]string, error)
}

// VisualSearchService proxies picture lookups and AI image generation to the
// visual search backend. Failures degrade to empty results or a friendly
// fallback card; the classroom screen never sees an error page.
type VisualSearchService struct {
	backendURL string
	blocklist  BlocklistSource
	client     *http.Client
}

// NewVisualSearchService creates a new visual search service. backendURL may
// be empty, in which case every call degrades gracefully.
func NewVisualSearchService(backendURL string, blocklist BlocklistSource) *VisualSearchService {
	return &VisualSearchService{
		backendURL: strings.TrimSuffix(backendURL, "/"),
		blocklist:  blocklist,
		client:     &http.Client{Timeout: visualSearchTimeout},
	}
}

// searchResponse is the backend's /visual-search reply
type searchResponse struct {
	Results []searchItem `json:"results"`
	Items   []searchItem `json:"items"`
}

type searchItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"imageUrl"`
	Link        string `json:"link"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
}

// generateResponse is the backend's /generate-content reply. Some versions
// nest the card under "content".
type generateResponse struct {
	Content *generatedItem `json:"content"`
	generatedItem
}

type generatedItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ImageURL    string `json:"imageUrl"`
	ImageBase64 string `json:"image_base64"`
	Description string `json:"description"`
}

// Search runs a picture search for query. Backend failures return an empty
// slice, never an error page.
func (s *VisualSearchService) Search(ctx context.Context, query string) ([]models.VisualResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	if s.backendURL == "" {
		return []models.VisualResult{}, nil
	}

	var resp searchResponse
	if err := s.post(ctx, "/visual-search", map[string]string{"query": query}, &resp); err != nil {
		log.Printf("Visual search backend error: %v", err)
		return []models.VisualResult{}, nil
	}

	items := resp.Results
	if len(items) == 0 {
		items = resp.Items
	}

	results := make([]models.VisualResult, 0, len(items))
	for _, item := range items {
		imageURL := firstNonEmpty(item.ImageURL, item.Link, item.Thumbnail)
		id := firstNonEmpty(item.ID, item.Link)
		if id == "" {
			id = uuid.New().String()
		}
		title := item.Title
		if title == "" {
			title = "Image"
		}
		results = append(results, models.VisualResult{
			ID:          id,
			Title:       title,
			ImageURL:    FormatImageSource(imageURL),
			Type:        "image",
			Description: firstNonEmpty(item.Description, item.Snippet),
		})
	}

	return results, nil
}

// Generate asks the backend to draw query as an AI image. Blocked queries and
// backend failures both come back as a friendly fallback card.
func (s *VisualSearchService) Generate(ctx context.Context, query string) (*models.GeneratedContent, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	restricted, err := s.isRestricted(query)
	if err != nil {
		log.Printf("Blocklist lookup failed: %v", err)
	}
	if restricted {
		return s.fallbackCard(true), nil
	}

	if s.backendURL == "" {
		return s.fallbackCard(false), nil
	}

	var resp generateResponse
	if err := s.post(ctx, "/generate-content", map[string]string{"query": query}, &resp); err != nil {
		log.Printf("AI generation backend error: %v", err)
		return s.fallbackCard(false), nil
	}

	content := resp.generatedItem
	if resp.Content != nil {
		content = *resp.Content
	}

	rawImage := firstNonEmpty(content.ImageURL, content.ImageBase64)
	id := content.ID
	if id == "" {
		id = fmt.Sprintf("ai-%d", time.Now().UnixMilli())
	}
	title := content.Title
	if title == "" {
		title = fmt.Sprintf("Mochi's %s", query)
	}

	return &models.GeneratedContent{
		ID:          id,
		Title:       title,
		ImageURL:    FormatImageSource(rawImage),
		Type:        "image",
		GeneratedAt: time.Now(),
		Description: content.Description,
	}, nil
}

// TrackDownload forwards the attribution ping the photo provider requires
// when an educator picks an image. Best effort.
func (s *VisualSearchService) TrackDownload(ctx context.Context, downloadLocation string) {
	if s.backendURL == "" || downloadLocation == "" {
		return
	}
	var ignored struct{}
	if err := s.post(ctx, "/track-download", map[string]string{"download_location": downloadLocation}, &ignored); err != nil {
		log.Printf("Download tracking failed: %v", err)
	}
}

// isRestricted reports whether query contains a blocked safety term
func (s *VisualSearchService) isRestricted(query string) (bool, error) {
	if s.blocklist == nil {
		return false, nil
	}
	terms, err := s.blocklist.BlockedTerms()
	if err != nil {
		return false, err
	}
	normalized := strings.ToLower(strings.TrimSpace(query))
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			return true, nil
		}
	}
	return false, nil
}

// fallbackCard is the card shown when nothing could be generated
func (s *VisualSearchService) fallbackCard(restricted bool) *models.GeneratedContent {
	title := "Mochi's Happy Puppy"
	description := "Mochi is taking a quick nap. Here is a puppy friend!"
	if restricted {
		title = "Friendly Puppy Friend!"
	}
	return &models.GeneratedContent{
		ID:          fmt.Sprintf("static-%s", uuid.New().String()),
		Title:       title,
		ImageURL:    fallbackPuppyURL,
		Type:        "image",
		GeneratedAt: time.Now(),
		Description: description,
	}
}

// post sends a JSON body to the backend and decodes the reply into out
func (s *VisualSearchService) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.backendURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}

	return nil
}

// FormatImageSource normalizes whatever the image backend returned into a
// usable src: data URIs and http URLs pass through, bare base64 gets a PNG
// prefix, and anything else becomes a placeholder-service prompt URL.
func FormatImageSource(raw string) string {
	if raw == "" {
		return ""
	}

	str := strings.TrimSpace(raw)
	// Some backends leak Python byte-string quoting around base64 payloads
	str = strings.TrimPrefix(str, "b'")
	str = strings.TrimPrefix(str, `b"`)
	str = strings.TrimSuffix(str, "'")
	str = strings.TrimSuffix(str, `"`)
	str = strings.Join(strings.Fields(str), "")

	if strings.HasPrefix(str, "data:image") {
		return str
	}

	if len(str) > 50 && !strings.HasPrefix(str, "http") {
		return "data:image/png;base64," + base64Junk.ReplaceAllString(str, "")
	}

	if strings.HasPrefix(str, "http") {
		return str
	}

	return fmt.Sprintf("https://image.pollinations.ai/prompt/%s?width=1024&height=768&nologo=true&seed=%d",
		url.QueryEscape(str), rand.Intn(1000))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
