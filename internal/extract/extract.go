// Package extract resolves embed URLs into playable links. Each extractor
// encapsulates one hosting site's obfuscation protocol; the Registry
// dispatches an arbitrary embed URL to the extractor claiming its domain.
package extract

import (
	"context"
	"strings"

	"remora/internal/media"
)

// Extractor resolves one host's embed URLs into playable links.
type Extractor interface {
	// Name is the human label used in ExtractedLink.Server.
	Name() string

	// Domains returns the host names this extractor recognizes. Matching
	// is exact or by dot-suffix, so "megacloud.tv" also claims
	// "eu1.megacloud.tv".
	Domains() []string

	// Extract fetches the embed page and resolves candidate links.
	Extract(ctx context.Context, embedURL string) ([]media.ExtractedLink, error)
}

// matchesDomain reports whether host falls under domain.
func matchesDomain(host, domain string) bool {
	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// classifyFile maps a source record to a link type: .m3u8 suffixes and
// explicit "hls" types are streaming manifests, everything else is direct.
func classifyFile(file, typ string) media.LinkType {
	if strings.EqualFold(typ, "hls") || strings.Contains(file, ".m3u8") {
		return media.LinkHLS
	}
	return media.LinkDirect
}
