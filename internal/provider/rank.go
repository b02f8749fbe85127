package provider

import (
	"encoding/base64"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"remora/internal/media"
)

// adaptiveRank sorts Auto/Adaptive streams above every fixed resolution.
const adaptiveRank = 1 << 20

var (
	resolutionRe = regexp.MustCompile(`(\d{3,4})\s*[pP]?\b`)
	urlPixelRe   = regexp.MustCompile(`[/_.-](\d{3,4})p?[/_.-]`)
)

// QualityRank maps heterogeneous quality hints onto a comparable rank.
// "Auto"/"Adaptive" rank highest, then descending numeric resolution parsed
// from forms like "1080p", "2160", "4k" or a base64-obfuscated marker.
// Unrecognized quality ranks lowest but the link is still kept.
func QualityRank(quality string) int {
	q := strings.TrimSpace(strings.ToLower(quality))
	if q == "" {
		return -1
	}
	if q == "auto" || q == "adaptive" {
		return adaptiveRank
	}

	if n, ok := parseResolution(q); ok {
		return n
	}

	// some hosts ship the marker base64-encoded
	if decoded, err := base64.StdEncoding.DecodeString(quality); err == nil {
		if n, ok := parseResolution(strings.ToLower(string(decoded))); ok {
			return n
		}
	}

	return -1
}

func parseResolution(q string) (int, bool) {
	switch {
	case strings.Contains(q, "4k") || strings.Contains(q, "uhd"):
		return 2160, true
	case strings.Contains(q, "2k"):
		return 1440, true
	}
	if m := resolutionRe.FindStringSubmatch(q); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// rankLink ranks one link, falling back to a pixel dimension embedded in
// the URL when the quality label is unrecognized.
func rankLink(l media.ExtractedLink) int {
	if r := QualityRank(l.Quality); r >= 0 {
		return r
	}
	if m := urlPixelRe.FindStringSubmatch(l.URL); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return -1
}

// DedupLinks removes links sharing a URL; the first occurrence wins.
func DedupLinks(links []media.ExtractedLink) []media.ExtractedLink {
	seen := make(map[string]struct{}, len(links))
	out := links[:0:0]
	for _, l := range links {
		if _, dup := seen[l.URL]; dup {
			continue
		}
		seen[l.URL] = struct{}{}
		out = append(out, l)
	}
	return out
}

// SortLinks orders links by quality rank, best first, stably so that
// fan-out order breaks ties deterministically.
func SortLinks(links []media.ExtractedLink) {
	sort.SliceStable(links, func(i, j int) bool {
		return rankLink(links[i]) > rankLink(links[j])
	})
}

// PreferQuality stably moves links matching the wanted resolution to the
// front. "auto" and unknown wants leave the ranked order untouched.
func PreferQuality(links []media.ExtractedLink, quality string) []media.ExtractedLink {
	want, ok := parseResolution(strings.TrimSpace(strings.ToLower(quality)))
	if !ok {
		return links
	}
	out := make([]media.ExtractedLink, 0, len(links))
	var rest []media.ExtractedLink
	for _, l := range links {
		if QualityRank(l.Quality) == want {
			out = append(out, l)
		} else {
			rest = append(rest, l)
		}
	}
	return append(out, rest...)
}

// finishLinks is the shared tail of every multi-server aggregation:
// dedup by URL, then deterministic quality ordering.
func finishLinks(links []media.ExtractedLink) []media.ExtractedLink {
	links = DedupLinks(links)
	SortLinks(links)
	return links
}
