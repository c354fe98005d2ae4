package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGenerateLessonContentValidation(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		topic   string
		wantErr error
	}{
		{
			name:    "blank topic",
			apiKey:  "key",
			topic:   "   ",
			wantErr: ErrTopicRequired,
		},
		{
			name:    "missing api key",
			apiKey:  "",
			topic:   "Fruits",
			wantErr: ErrGeminiNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAILessonService(tt.apiKey, "text-model", "image-model", time.Second)
			_, err := svc.GenerateLessonContent(context.Background(), tt.topic, 5)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateLessonContent() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigured(t *testing.T) {
	if NewAILessonService("", "t", "i", time.Second).Configured() {
		t.Error("Configured() = true without an API key")
	}
	if !NewAILessonService("key", "t", "i", time.Second).Configured() {
		t.Error("Configured() = false with an API key")
	}
}

func TestJSONObjectPattern(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "bare object",
			text: `{"title":"Fruits"}`,
			want: `{"title":"Fruits"}`,
		},
		{
			name: "object wrapped in code fence",
			text: "```json\n{\"title\":\"Fruits\"}\n```",
			want: `{"title":"Fruits"}`,
		},
		{
			name: "object wrapped in prose",
			text: "Here is your lesson: {\"title\":\"Fruits\"} enjoy!",
			want: `{"title":"Fruits"}`,
		},
		{
			name: "no object",
			text: "sorry, I cannot do that",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jsonObjectPattern.FindString(tt.text); got != tt.want {
				t.Errorf("FindString(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
