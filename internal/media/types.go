// Package media defines shared value types produced by providers and
// extractors and consumed by the playback collaborator.
package media

// MediaType represents whether content is a movie or TV show.
type MediaType int

const (
	Movie MediaType = iota
	TV
)

func (m MediaType) String() string {
	switch m {
	case Movie:
		return "movie"
	case TV:
		return "tv"
	default:
		return "unknown"
	}
}

// LinkType classifies what kind of resource an extracted URL points at.
type LinkType int

const (
	// LinkDirect is a plain file URL (mp4 and friends).
	LinkDirect LinkType = iota
	// LinkHLS is a streaming manifest (.m3u8).
	LinkHLS
	// LinkOther is anything the extractor could not classify.
	LinkOther
)

func (t LinkType) String() string {
	switch t {
	case LinkDirect:
		return "direct"
	case LinkHLS:
		return "hls"
	default:
		return "other"
	}
}

// SubtitleFormat is the container format of a subtitle track.
type SubtitleFormat int

const (
	SubtitleVTT SubtitleFormat = iota
	SubtitleSRT
)

func (f SubtitleFormat) String() string {
	if f == SubtitleSRT {
		return "srt"
	}
	return "vtt"
}

// Subtitle is a subtitle track attached to an ExtractedLink.
type Subtitle struct {
	ID       string
	Name     string // display label, e.g. "English - SDH"
	Language string // e.g. "English"
	URL      string
	Format   SubtitleFormat
}

// ExtractedLink is one playable stream produced by an extractor or provider.
// Headers must contain everything required to fetch URL; the playback side
// performs no header inference. Identity for deduplication is URL.
type ExtractedLink struct {
	ID              string
	URL             string
	Quality         string // "1080p", "Auto", ... empty when unknown
	Server          string // human label, e.g. "FlixHQ - Vidcloud"
	RequiresReferer bool
	Headers         map[string]string
	Type            LinkType
	Subtitles       []Subtitle
}

// Content is a catalog entity: one movie or one show.
type Content struct {
	ID          string // provider-specific, e.g. "movie/free-the-exorcist-hd-75043"
	Title       string
	AltTitle    string // original/alternate title when the site exposes one
	Type        MediaType
	Year        string
	Poster      string
	Description string
	URL         string
	Seasons     []Season // populated on detail fetch for TV
}

// Season belongs to exactly one Content item.
type Season struct {
	ID     string
	Number int
	// EpisodeCount is a provider-reported hint; it may be 0 before
	// Episodes is populated, and must equal len(Episodes) after.
	EpisodeCount int
	Episodes     []Episode
}

// Episode belongs to exactly one Season. ID may carry opaque routing data
// needed later for stream extraction.
type Episode struct {
	ID     string
	Number int
	Title  string
}

// Carousel is one titled section of a provider's landing page.
type Carousel struct {
	Title string
	Items []Content
}

// SearchPage is one page of search results. Pagination fields are
// best-effort; TotalPages defaults to 1 when the site omits pagination.
type SearchPage struct {
	Items        []Content
	Page         int
	TotalPages   int
	TotalResults int
}
