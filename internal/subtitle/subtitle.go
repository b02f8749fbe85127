// Package subtitle filters and ranks subtitle tracks attached to extracted
// links. Downloading tracks is the playback collaborator's job.
package subtitle

import (
	"net/url"
	"strings"

	"remora/internal/media"
)

// DetectFormat guesses a track's container format from its URL. VTT is the
// default; hosts that serve SRT always name the file that way.
func DetectFormat(trackURL string) media.SubtitleFormat {
	path := trackURL
	if u, err := url.Parse(trackURL); err == nil && u.Path != "" {
		path = u.Path
	}
	if strings.HasSuffix(strings.ToLower(path), ".srt") {
		return media.SubtitleSRT
	}
	return media.SubtitleVTT
}

// Filter returns subtitles matching the preferred language (case-insensitive).
func Filter(subtitles []media.Subtitle, language string) []media.Subtitle {
	if language == "" {
		return subtitles
	}

	lang := strings.ToLower(language)
	var matched []media.Subtitle

	for _, sub := range subtitles {
		if strings.Contains(strings.ToLower(sub.Language), lang) ||
			strings.Contains(strings.ToLower(sub.Name), lang) {
			matched = append(matched, sub)
		}
	}

	return matched
}

// BestMatch returns the best matching subtitle for the given language.
// Prefers a non-SDH exact match, then falls back to the first match.
func BestMatch(subtitles []media.Subtitle, language string) *media.Subtitle {
	filtered := Filter(subtitles, language)
	if len(filtered) == 0 {
		return nil
	}

	lang := strings.ToLower(language)
	for i, sub := range filtered {
		name := strings.ToLower(sub.Name)
		if strings.Contains(name, lang) && !strings.Contains(name, "sdh") {
			return &filtered[i]
		}
	}

	return &filtered[0]
}
