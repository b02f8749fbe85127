package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"remora/internal/httputil"
	"remora/internal/media"
	"remora/internal/scrape"
)

// robotlinkRe captures the two script fragments the page splices together:
// a literal URL prefix plus a substring() of a second token.
var robotlinkRe = regexp.MustCompile(`robotlink'\)\.innerHTML = '([^']+)'\s*\+\s*\('([^']+)'\)\.substring\((\d+)\)`)

// Streamtape resolves streamtape embeds. The page hides the download URL by
// assembling it in script from two fragments with a substring offset.
type Streamtape struct {
	client *http.Client
}

func NewStreamtape(client *http.Client) *Streamtape {
	return &Streamtape{client: client}
}

func (s *Streamtape) Name() string { return "Streamtape" }

func (s *Streamtape) Domains() []string {
	return []string{"streamtape.com", "streamtape.to", "strtape.cloud"}
}

func (s *Streamtape) Extract(ctx context.Context, embedURL string) ([]media.ExtractedLink, error) {
	u, err := url.Parse(embedURL)
	if err != nil || u.Host == "" {
		return nil, scrape.InvalidURL(embedURL, err)
	}

	page, err := httputil.Get(ctx, s.client, embedURL, map[string]string{"Referer": embedURL})
	if err != nil {
		return nil, fmt.Errorf("fetching embed page: %w", err)
	}

	m := robotlinkRe.FindStringSubmatch(string(page))
	if m == nil {
		return nil, scrape.ParsingFailed("robotlink fragments not found on embed page")
	}

	offset, err := strconv.Atoi(m[3])
	if err != nil || offset > len(m[2]) {
		return nil, scrape.ParsingFailed("bad substring offset in robotlink script")
	}

	link := strings.TrimSpace(m[1] + m[2][offset:])
	if strings.HasPrefix(link, "//") {
		link = "https:" + link
	}
	if err := httputil.ValidateURL(link); err != nil {
		return nil, scrape.ParsingFailedErr("assembled link is not a URL", err)
	}

	return []media.ExtractedLink{{
		ID:              lastPathSegment(u.Path),
		URL:             link + "&stream=1",
		Server:          s.Name(),
		RequiresReferer: false,
		Headers: map[string]string{
			"User-Agent": httputil.UserAgent,
		},
		Type: media.LinkDirect,
	}}, nil
}
