package extract

import (
	"context"
	"net/http"
	"net/url"

	"remora/internal/media"
	"remora/internal/scrape"
)

// Registry holds an ordered set of extractors and dispatches embed URLs to
// the first one whose domain set matches.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds a registry over the given extractors; order decides
// precedence when domain sets overlap.
func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

// DefaultRegistry wires up every built-in extractor on a shared client.
func DefaultRegistry(client *http.Client) *Registry {
	return NewRegistry(
		NewVidCloud(client),
		NewStreamtape(client),
		NewVOE(client),
	)
}

// ExtractorFor returns the extractor claiming the embed URL's host.
func (r *Registry) ExtractorFor(embedURL string) (Extractor, error) {
	u, err := url.Parse(embedURL)
	if err != nil || u.Host == "" {
		return nil, scrape.InvalidURL(embedURL, err)
	}

	for _, ex := range r.extractors {
		for _, domain := range ex.Domains() {
			if matchesDomain(u.Host, domain) {
				return ex, nil
			}
		}
	}
	return nil, scrape.ExtractionFailed("no extractor registered for host " + u.Host)
}

// Extract dispatches the embed URL to its extractor and returns its links.
func (r *Registry) Extract(ctx context.Context, embedURL string) ([]media.ExtractedLink, error) {
	ex, err := r.ExtractorFor(embedURL)
	if err != nil {
		return nil, err
	}
	return ex.Extract(ctx, embedURL)
}
