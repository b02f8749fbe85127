package ui

import (
	"strings"
	"testing"

	"remora/internal/media"
)

func TestRenderCarousels(t *testing.T) {
	out := RenderCarousels([]media.Carousel{
		{Title: "Trending", Items: []media.Content{
			{Title: "Heat", Year: "1995", Type: media.Movie},
		}},
		{Title: "Latest TV Shows"},
	})

	for _, want := range []string{"Trending", "Heat", "(1995)", "[movie]", "Latest TV Shows", "(nothing here)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSearchPage(t *testing.T) {
	out := RenderSearchPage(&media.SearchPage{
		Items:      []media.Content{{Title: "Dark", Year: "2017", Type: media.TV}},
		Page:       2,
		TotalPages: 7,
	})
	for _, want := range []string{"Dark", "[tv]", "page 2 of 7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	empty := RenderSearchPage(&media.SearchPage{Page: 1, TotalPages: 1})
	if !strings.Contains(empty, "no results") {
		t.Errorf("empty page output = %q", empty)
	}
}

func TestRenderDetails(t *testing.T) {
	out := RenderDetails(&media.Content{
		Title:       "Dark",
		Year:        "2017",
		Type:        media.TV,
		Description: "A family saga.",
		Seasons: []media.Season{
			{Number: 1, EpisodeCount: 2, Episodes: []media.Episode{
				{Number: 1, Title: "Secrets"},
				{Number: 2, Title: "Lies"},
			}},
		},
	})
	for _, want := range []string{"Dark", "Season 1", "(2 episodes)", "Secrets", "Lies"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderLinks(t *testing.T) {
	out := RenderLinks([]media.ExtractedLink{
		{
			URL:     "https://cdn.test/master.m3u8",
			Quality: "Auto",
			Server:  "FlixHQ - UpCloud",
			Subtitles: []media.Subtitle{
				{Name: "English", Format: media.SubtitleVTT},
			},
		},
		{URL: "https://cdn.test/720.mp4", Server: "Streamtape"},
	})
	for _, want := range []string{"Auto", "FlixHQ - UpCloud", "https://cdn.test/master.m3u8", "English", "vtt", "?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
