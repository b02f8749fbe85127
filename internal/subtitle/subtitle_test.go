package subtitle

import (
	"testing"

	"remora/internal/media"
)

func sampleTracks() []media.Subtitle {
	return []media.Subtitle{
		{ID: "1", Name: "English - SDH", Language: "English"},
		{ID: "2", Name: "English", Language: "English"},
		{ID: "3", Name: "Spanish", Language: "Spanish"},
		{ID: "4", Name: "Portuguese - BR", Language: "Portuguese"},
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		url  string
		want media.SubtitleFormat
	}{
		{"https://cdn.example.com/subs/en.vtt", media.SubtitleVTT},
		{"https://cdn.example.com/subs/en.srt", media.SubtitleSRT},
		{"https://cdn.example.com/subs/en.SRT?token=abc", media.SubtitleSRT},
		{"https://cdn.example.com/subs/en", media.SubtitleVTT},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := DetectFormat(tt.url); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	got := Filter(sampleTracks(), "english")
	if len(got) != 2 {
		t.Fatalf("Filter returned %d tracks, want 2", len(got))
	}

	if got := Filter(sampleTracks(), ""); len(got) != 4 {
		t.Errorf("empty language should pass everything through, got %d", len(got))
	}

	if got := Filter(sampleTracks(), "japanese"); len(got) != 0 {
		t.Errorf("unmatched language returned %d tracks", len(got))
	}
}

func TestBestMatchPrefersNonSDH(t *testing.T) {
	best := BestMatch(sampleTracks(), "english")
	if best == nil {
		t.Fatal("BestMatch returned nil")
	}
	if best.ID != "2" {
		t.Errorf("BestMatch picked %q, want the non-SDH English track", best.Name)
	}
}

func TestBestMatchNoResult(t *testing.T) {
	if best := BestMatch(sampleTracks(), "korean"); best != nil {
		t.Errorf("BestMatch = %v, want nil", best)
	}
}
