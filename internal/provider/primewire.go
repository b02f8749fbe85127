package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remora/internal/httputil"
	"remora/internal/media"
	"remora/internal/pipeline"
	"remora/internal/scrape"
	"remora/internal/subtitle"
)

// PrimeWire's endpoints are fronted by a symmetric-cipher layer that must
// be reproduced to even construct the request: the page embeds a raw token,
// and every ajax path takes that token encrypted, hex-XORed against a
// keystream and re-encoded through the site's permuted base64 alphabet.
// The parameters are fixed in the site's player script.
var (
	primewireKey       = []byte("7d29dc1af02f68b7bcf4fd8edbb08833")
	primewireIV        = []byte("a93e3f70b9c12a5e")
	primewireKeystream = []byte{0x1f, 0x44, 0x8c, 0x2a, 0x90, 0x07}
	primewireAlphabet  = "_-9876543210zyxwvutsrqponmlkjihgfedcbaZYXWVUTSRQPONMLKJIHGFEDCBA"
)

var primewireDataRe = regexp.MustCompile(`"data"\s*:\s*"([A-Za-z0-9_-]+)"`)

// PrimeWire implements the Provider contract for the primewire catalog.
type PrimeWire struct {
	base   string
	client *http.Client
	pipe   pipeline.Pipeline
}

func NewPrimeWire(base string, client *http.Client) *PrimeWire {
	alphabet, err := pipeline.NewAlphabet(primewireAlphabet)
	if err != nil {
		panic(fmt.Sprintf("primewire alphabet table: %v", err))
	}
	return &PrimeWire{
		base:   strings.TrimRight(base, "/"),
		client: client,
		pipe: pipeline.Pipeline{
			Key:       primewireKey,
			IV:        primewireIV,
			Keystream: primewireKeystream,
			Strategy:  pipeline.XORHexStrategy,
			Alphabet:  alphabet,
		},
	}
}

func (p *PrimeWire) Name() string { return "PrimeWire" }

var primewireSections = []struct {
	title    string
	selector string
}{
	{"Featured", "#featured"},
	{"New Movies", "#new-movies"},
	{"New TV Shows", "#new-tv"},
}

func (p *PrimeWire) FetchHomeContent(ctx context.Context) ([]media.Carousel, error) {
	doc, err := p.fetchDocument(ctx, p.base+"/")
	if err != nil {
		return nil, fmt.Errorf("fetching front page: %w", err)
	}

	carousels := make([]media.Carousel, 0, len(primewireSections))
	for _, sec := range primewireSections {
		carousels = append(carousels, media.Carousel{
			Title: sec.title,
			Items: p.parseIndexItems(doc.Find(sec.selector)),
		})
	}
	return carousels, nil
}

func (p *PrimeWire) Search(ctx context.Context, query string, page int) (*media.SearchPage, error) {
	if strings.TrimSpace(query) == "" {
		return &media.SearchPage{Page: 1, TotalPages: 1}, nil
	}
	if page < 1 {
		page = 1
	}

	doc, err := p.fetchDocument(ctx, fmt.Sprintf("%s/filter?s=%s&page=%d",
		p.base, httputil.EncodeQuery(query), page))
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	items := p.parseIndexItems(doc.Selection)

	totalPages := 1
	doc.Find(".pagination a").Each(func(_ int, s *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil && n > totalPages {
			totalPages = n
		}
	})

	return &media.SearchPage{
		Items:        items,
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: len(items),
	}, nil
}

func (p *PrimeWire) FetchContentDetails(ctx context.Context, id string, mediaType media.MediaType) (*media.Content, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, scrape.InvalidURL(id, err)
	}

	doc, err := p.fetchDocument(ctx, p.base+"/"+id)
	if err != nil {
		return nil, fmt.Errorf("fetching details: %w", err)
	}

	title := strings.TrimSpace(doc.Find("h1.movie-title").First().Text())
	if title == "" {
		return nil, scrape.ContentNotFound(id)
	}

	c := &media.Content{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(doc.Find(".movie-description").First().Text()),
		URL:         p.base + "/" + id,
		Type:        media.Movie,
	}
	if strings.HasPrefix(id, "tv/") {
		c.Type = media.TV
		c.Seasons = parsePrimewireSeasons(doc)
	}
	if year, ok := doc.Find(".movie-year").Attr("data-year"); ok {
		c.Year = year
	}

	return c, nil
}

// parsePrimewireSeasons reads the inline season/episode accordion; the site
// ships the full episode list on the detail page, no extra requests needed.
func parsePrimewireSeasons(doc *goquery.Document) []media.Season {
	var seasons []media.Season
	doc.Find(".show-season").Each(func(i int, s *goquery.Selection) {
		season := media.Season{
			ID:     s.AttrOr("data-id", ""),
			Number: i + 1,
		}
		if n, err := strconv.Atoi(s.AttrOr("data-season", "")); err == nil {
			season.Number = n
		}
		s.Find(".episode a").Each(func(j int, e *goquery.Selection) {
			ep := media.Episode{
				ID:     e.AttrOr("data-id", ""),
				Number: j + 1,
				Title:  strings.TrimSpace(e.Text()),
			}
			if n, err := strconv.Atoi(e.AttrOr("data-episode", "")); err == nil {
				ep.Number = n
			}
			if ep.ID != "" {
				season.Episodes = append(season.Episodes, ep)
			}
		})
		season.EpisodeCount = len(season.Episodes)
		if season.ID != "" {
			seasons = append(seasons, season)
		}
	})
	return seasons
}

// ExtractStreamingLinks runs the encrypt→fetch→decrypt handshake: token
// from the page, encrypted token to the servers endpoint, then one source
// request per server with per-server failures swallowed.
func (p *PrimeWire) ExtractStreamingLinks(ctx context.Context, contentID, seasonID, episodeID string) ([]media.ExtractedLink, error) {
	if err := httputil.ValidateID(contentID); err != nil {
		return nil, scrape.InvalidURL(contentID, err)
	}

	pageURL := p.base + "/" + contentID
	if episodeID != "" {
		pageURL += "?ep=" + episodeID
	}

	page, err := httputil.Get(ctx, p.client, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching player page: %w", err)
	}

	m := primewireDataRe.FindStringSubmatch(string(page))
	if m == nil {
		return nil, scrape.ParsingFailed("data token not found on player page")
	}
	token := m[1]

	servers, err := p.fetchServers(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, scrape.ExtractionFailed("no servers listed for " + contentID)
	}

	batches := fanOut(ctx, servers, func(ctx context.Context, s server) ([]media.ExtractedLink, error) {
		return p.resolveServer(ctx, token, s)
	})

	links := finishLinks(flatten(batches))
	if len(links) == 0 {
		return nil, scrape.ExtractionFailed("all servers failed for " + contentID)
	}
	return links, nil
}

func (p *PrimeWire) fetchServers(ctx context.Context, token string) ([]server, error) {
	blob, err := p.pipe.Encode(token)
	if err != nil {
		return nil, scrape.ParsingFailedErr("encoding server token", err)
	}

	payload, err := p.fetchEnvelope(ctx, fmt.Sprintf("%s/ajax/v2/embeds/%s", p.base, blob))
	if err != nil {
		return nil, err
	}

	var servers []server
	if err := json.Unmarshal([]byte(payload), &servers); err != nil {
		return nil, scrape.ParsingFailedErr("server list", err)
	}
	return servers, nil
}

func (p *PrimeWire) resolveServer(ctx context.Context, token string, s server) ([]media.ExtractedLink, error) {
	blob, err := p.pipe.Encode(token + "|" + s.ID)
	if err != nil {
		return nil, scrape.ParsingFailedErr("encoding source token", err)
	}

	payload, err := p.fetchEnvelope(ctx, fmt.Sprintf("%s/ajax/v2/source/%s", p.base, blob))
	if err != nil {
		return nil, err
	}

	var src struct {
		File   string `json:"file"`
		Type   string `json:"type"`
		Label  string `json:"label"`
		Tracks []struct {
			File  string `json:"file"`
			Label string `json:"label"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal([]byte(payload), &src); err != nil {
		return nil, scrape.ParsingFailedErr("source payload", err)
	}
	if src.File == "" {
		return nil, scrape.ParsingFailed("empty file for server " + s.Name)
	}

	var subs []media.Subtitle
	for i, t := range src.Tracks {
		if t.File == "" {
			continue
		}
		subs = append(subs, media.Subtitle{
			ID:       fmt.Sprintf("%s-%d", s.ID, i),
			Name:     t.Label,
			Language: t.Label,
			URL:      t.File,
			Format:   subtitle.DetectFormat(t.File),
		})
	}

	typ := media.LinkDirect
	quality := src.Label
	if strings.EqualFold(src.Type, "hls") || strings.Contains(src.File, ".m3u8") {
		typ = media.LinkHLS
		if quality == "" {
			quality = "Auto"
		}
	}

	return []media.ExtractedLink{{
		ID:              s.ID,
		URL:             src.File,
		Quality:         quality,
		Server:          p.Name() + " - " + s.Name,
		RequiresReferer: true,
		Headers: map[string]string{
			"Referer":    p.base + "/",
			"User-Agent": httputil.UserAgent,
		},
		Type:      typ,
		Subtitles: subs,
	}}, nil
}

// fetchEnvelope GETs an ajax URL returning {"data": "<blob>"} and decodes
// the blob through the inverse pipeline.
func (p *PrimeWire) fetchEnvelope(ctx context.Context, url string) (string, error) {
	body, err := httputil.GetJSON(ctx, p.client, url, p.base+"/")
	if err != nil {
		return "", err
	}

	var envelope struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", scrape.ParsingFailedErr("response envelope", err)
	}
	if envelope.Data == "" {
		return "", scrape.ParsingFailed("empty response envelope")
	}

	payload, err := p.pipe.Decode(envelope.Data)
	if err != nil {
		return "", scrape.ParsingFailedErr("decoding response envelope", err)
	}
	return payload, nil
}

func (p *PrimeWire) parseIndexItems(sel *goquery.Selection) []media.Content {
	var items []media.Content
	sel.Find(".index_item a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		c := media.Content{
			ID:    extractID(href),
			Title: strings.TrimSpace(s.AttrOr("title", "")),
			URL:   absoluteURL(p.base, href),
			Type:  media.Movie,
		}
		if strings.HasPrefix(c.ID, "tv/") {
			c.Type = media.TV
		}
		// titles come as "Name (2021)"
		if i := strings.LastIndex(c.Title, "("); i != -1 && strings.HasSuffix(c.Title, ")") {
			c.Year = strings.TrimSuffix(c.Title[i+1:], ")")
			c.Title = strings.TrimSpace(c.Title[:i])
		}
		if c.Title != "" {
			items = append(items, c)
		}
	})
	return items
}

func (p *PrimeWire) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := httputil.Get(ctx, p.client, url, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, scrape.ParsingFailedErr("parsing HTML", err)
	}
	return doc, nil
}
