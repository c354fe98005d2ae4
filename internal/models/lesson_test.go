package models

import "testing"

func TestNarrationText(t *testing.T) {
	tests := []struct {
		name string
		item LessonItem
		want string
	}{
		{
			name: "spoken text wins",
			item: LessonItem{Name: "Apple", SpokenText: "Apples are crunchy."},
			want: "Apples are crunchy.",
		},
		{
			name: "falls back to name",
			item: LessonItem{Name: "Banana"},
			want: "Banana",
		},
		{
			name: "both empty",
			item: LessonItem{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.NarrationText(); got != tt.want {
				t.Errorf("NarrationText() = %q, want %q", got, tt.want)
			}
		})
	}
}
