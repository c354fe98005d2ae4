package handlers

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mochiteach/internal/repository"
	"mochiteach/internal/service"
)

type stubKV struct {
	data map[string]string
}

func (s *stubKV) Read(key string) (string, bool, error) {
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *stubKV) Write(key, value string) error {
	s.data[key] = value
	return nil
}

// pngBytes carries the PNG magic number so content sniffing sees a real image
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x42}, 24)...)

type formFile struct {
	field    string
	filename string
	data     []byte
}

func editorRequest(t *testing.T, maxSize int64, fields map[string][]string, files []formFile) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, values := range fields {
		for _, value := range values {
			if err := mw.WriteField(name, value); err != nil {
				t.Fatalf("WriteField(%s) error = %v", name, err)
			}
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("CreateFormFile(%s) error = %v", f.field, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/lessons/save", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(maxSize); err != nil {
		t.Fatalf("ParseMultipartForm() error = %v", err)
	}
	return req
}

func TestDraftFromFormInlinesUploads(t *testing.T) {
	h := &LessonHandler{uploadMaxSize: 5 * 1024 * 1024}

	req := editorRequest(t, h.uploadMaxSize, map[string][]string{
		"title":       {"Fruits"},
		"item_name":   {"Apple"},
		"item_spoken": {"Apples are crunchy."},
		"item_image":  {""},
	}, []formFile{
		{field: "cover_image_file", filename: "cover.png", data: pngBytes},
		{field: "item_image_file", filename: "apple.png", data: pngBytes},
	})

	draft, err := h.draftFromForm(req)
	if err != nil {
		t.Fatalf("draftFromForm() error = %v", err)
	}

	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(draft.CoverImage, prefix) {
		t.Fatalf("cover image = %.40q, want a %s data URI", draft.CoverImage, prefix)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(draft.CoverImage, prefix))
	if err != nil {
		t.Fatalf("cover image payload is not base64: %v", err)
	}
	if !bytes.Equal(decoded, pngBytes) {
		t.Error("cover image payload does not round-trip the uploaded bytes")
	}

	if len(draft.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(draft.Items))
	}
	if draft.Items[0].Name != "Apple" || draft.Items[0].SpokenText != "Apples are crunchy." {
		t.Errorf("item text fields = %+v", draft.Items[0])
	}
	if !strings.HasPrefix(draft.Items[0].Image, prefix) {
		t.Errorf("item image = %.40q, want a %s data URI", draft.Items[0].Image, prefix)
	}
}

func TestDraftFromFormKeepsCarriedImageWithoutUpload(t *testing.T) {
	h := &LessonHandler{uploadMaxSize: 5 * 1024 * 1024}
	carried := "data:image/png;base64,YWJj"

	req := editorRequest(t, h.uploadMaxSize, map[string][]string{
		"title":       {"Fruits"},
		"cover_image": {carried},
		"item_name":   {"Apple"},
		"item_image":  {carried},
	}, []formFile{
		// A browser submits an empty part when no file is chosen
		{field: "cover_image_file", filename: "", data: nil},
		{field: "item_image_file", filename: "", data: nil},
	})

	draft, err := h.draftFromForm(req)
	if err != nil {
		t.Fatalf("draftFromForm() error = %v", err)
	}
	if draft.CoverImage != carried {
		t.Errorf("cover image = %q, want the carried-over value", draft.CoverImage)
	}
	if draft.Items[0].Image != carried {
		t.Errorf("item image = %q, want the carried-over value", draft.Items[0].Image)
	}
}

func TestDraftFromFormRejectsOversizedUpload(t *testing.T) {
	h := &LessonHandler{uploadMaxSize: 8}

	req := editorRequest(t, 1024, map[string][]string{
		"title":     {"Fruits"},
		"item_name": {"Apple"},
	}, []formFile{
		{field: "cover_image_file", filename: "huge.png", data: pngBytes},
	})

	draft, err := h.draftFromForm(req)
	if err == nil {
		t.Fatal("draftFromForm() accepted an upload over the size limit")
	}
	if !strings.Contains(err.Error(), "too large") {
		t.Errorf("error = %v, want a size message", err)
	}

	// The typed input survives for the error re-render
	if draft == nil || draft.Title != "Fruits" || draft.Items[0].Name != "Apple" {
		t.Errorf("draft after rejected upload = %+v", draft)
	}
	if draft.CoverImage != "" {
		t.Errorf("cover image = %q, want empty after rejected upload", draft.CoverImage)
	}
}

func TestSaveRemoveLastRowShowsMessage(t *testing.T) {
	lessonService := service.NewLessonService(
		repository.NewLessonStore(&stubKV{data: map[string]string{}}))
	tmpl := template.Must(template.New("lesson_editor.tmpl").Parse("{{.Error}}"))
	h := NewLessonHandler(lessonService, NewMiddleware(nil, nil, nil), tmpl, 1<<20)

	form := url.Values{
		"action":       {"remove-item"},
		"remove_index": {"0"},
		"title":        {"Fruits"},
		"item_name":    {"Apple"},
	}
	req := httptest.NewRequest("POST", "/lessons/save", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.Save(rec, req)

	if !strings.Contains(rec.Body.String(), service.ErrLastItem.Error()) {
		t.Errorf("removing the only row rendered %q, want the %q message",
			rec.Body.String(), service.ErrLastItem.Error())
	}
}

func TestDraftFromFormPlainForm(t *testing.T) {
	h := &LessonHandler{uploadMaxSize: 5 * 1024 * 1024}

	req := httptest.NewRequest("POST", "/lessons/save",
		strings.NewReader("title=Fruits&item_name=Apple&item_spoken=Crunchy"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := req.ParseForm(); err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}

	draft, err := h.draftFromForm(req)
	if err != nil {
		t.Fatalf("draftFromForm() error = %v", err)
	}
	if draft.Title != "Fruits" || len(draft.Items) != 1 || draft.Items[0].SpokenText != "Crunchy" {
		t.Errorf("draft = %+v", draft)
	}
}
