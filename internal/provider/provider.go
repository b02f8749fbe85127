// Package provider implements content providers: one variant per catalog
// site, each exposing browsing, search, detail parsing and stream
// extraction behind a single interface. Variants are stateless aside from
// injected collaborators and safe to share across concurrent calls.
package provider

import (
	"context"

	"remora/internal/media"
)

// Provider is the contract every catalog site variant implements.
type Provider interface {
	// Name is the human label prefixed onto server names in links.
	Name() string

	// FetchHomeContent returns the landing page's sections. A section
	// whose markup is missing yields an empty carousel; only failure to
	// fetch or parse the page itself is an error.
	FetchHomeContent(ctx context.Context) ([]media.Carousel, error)

	// Search returns one page of results. An empty query returns an
	// empty page without a network call. Pagination fields are
	// best-effort; TotalPages defaults to 1.
	Search(ctx context.Context, query string, page int) (*media.SearchPage, error)

	// FetchContentDetails returns full metadata for one item, including
	// seasons and episodes for TV. Fails with a content-not-found error
	// when the page has no recognizable title.
	FetchContentDetails(ctx context.Context, id string, mediaType media.MediaType) (*media.Content, error)

	// ExtractStreamingLinks resolves a selection into playable links.
	// seasonID and episodeID are empty for movies. It fails only when
	// zero links could be produced from any server or path.
	ExtractStreamingLinks(ctx context.Context, contentID, seasonID, episodeID string) ([]media.ExtractedLink, error)
}
