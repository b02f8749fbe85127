package provider

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
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

// hianimeTokenRe finds the per-page routing token the player script stashes
// under an "en" key. It is required alongside the episode's numeric id to
// call the sources endpoint.
var hianimeTokenRe = regexp.MustCompile(`"en"\s*:\s*"([A-Za-z0-9+/=_-]+)"`)

// episodeTokenSep joins an episode's numeric id with its routing token
// inside a single Episode.ID so the two travel together through the
// Provider contract.
const episodeTokenSep = "::"

// HiAnime scrapes the hianime catalog. The catalog is series-only, and the
// site rotates its source cipher without notice, so the cipher parameters
// are fetched from a community-maintained config endpoint on every
// extraction rather than baked in.
type HiAnime struct {
	base      string
	configURL string
	client    *http.Client
}

func NewHiAnime(base, configURL string, client *http.Client) *HiAnime {
	return &HiAnime{
		base:      strings.TrimRight(base, "/"),
		configURL: configURL,
		client:    client,
	}
}

func (h *HiAnime) Name() string { return "HiAnime" }

var hianimeSections = []struct {
	title    string
	selector string
}{
	{"Trending", "#anime-trending"},
	{"Latest Episodes", "#anime-recently-updated"},
	{"Top Airing", "#anime-top-airing"},
}

func (h *HiAnime) FetchHomeContent(ctx context.Context) ([]media.Carousel, error) {
	doc, err := h.fetchDocument(ctx, h.base+"/home")
	if err != nil {
		return nil, fmt.Errorf("fetching home: %w", err)
	}

	carousels := make([]media.Carousel, 0, len(hianimeSections))
	for _, sec := range hianimeSections {
		items := parseFilmItems(doc.Find(sec.selector), h.base)
		for i := range items {
			items[i].Type = media.TV
		}
		carousels = append(carousels, media.Carousel{Title: sec.title, Items: items})
	}
	return carousels, nil
}

func (h *HiAnime) Search(ctx context.Context, query string, page int) (*media.SearchPage, error) {
	if strings.TrimSpace(query) == "" {
		return &media.SearchPage{Page: 1, TotalPages: 1}, nil
	}
	if page < 1 {
		page = 1
	}

	doc, err := h.fetchDocument(ctx, fmt.Sprintf("%s/search?keyword=%s&page=%d",
		h.base, httputil.EncodeQuery(query), page))
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	items := parseFilmItems(doc.Selection, h.base)
	for i := range items {
		items[i].Type = media.TV
	}

	return &media.SearchPage{
		Items:        items,
		Page:         page,
		TotalPages:   parseLastPage(doc),
		TotalResults: len(items),
	}, nil
}

// FetchContentDetails loads a series page and its episode list. The episode
// ids it returns carry the page routing token so ExtractStreamingLinks can
// call the sources endpoint without refetching the page.
func (h *HiAnime) FetchContentDetails(ctx context.Context, id string, mediaType media.MediaType) (*media.Content, error) {
	if mediaType == media.Movie {
		return nil, scrape.InvalidConfiguration("hianime catalogs series only")
	}
	if err := httputil.ValidateID(id); err != nil {
		return nil, scrape.InvalidURL(id, err)
	}

	doc, err := h.fetchDocument(ctx, h.base+"/"+id)
	if err != nil {
		return nil, fmt.Errorf("fetching details: %w", err)
	}

	title := strings.TrimSpace(doc.Find(".anisc-detail .film-name").First().Text())
	if title == "" {
		return nil, scrape.ContentNotFound(id)
	}

	c := &media.Content{
		ID:          id,
		Title:       title,
		AltTitle:    strings.TrimSpace(doc.Find(".anisc-detail .film-name").First().AttrOr("data-jname", "")),
		Type:        media.TV,
		Description: strings.TrimSpace(doc.Find(".film-description .text").First().Text()),
		URL:         h.base + "/" + id,
	}

	token := ""
	if m := hianimeTokenRe.FindStringSubmatch(docHTML(doc)); m != nil {
		token = m[1]
	}

	episodes, err := h.fetchEpisodes(ctx, id, token)
	if err != nil {
		return nil, err
	}
	c.Seasons = []media.Season{{
		ID:           extractNumericID(id),
		Number:       1,
		EpisodeCount: len(episodes),
		Episodes:     episodes,
	}}

	return c, nil
}

func (h *HiAnime) fetchEpisodes(ctx context.Context, id, token string) ([]media.Episode, error) {
	numID := extractNumericID(id)
	if numID == "" {
		return nil, scrape.ParsingFailed("no numeric id in " + id)
	}

	body, err := httputil.GetJSON(ctx, h.client,
		fmt.Sprintf("%s/ajax/v2/episode/list/%s", h.base, numID), h.base+"/"+id)
	if err != nil {
		return nil, fmt.Errorf("fetching episode list: %w", err)
	}

	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, scrape.ParsingFailedErr("episode list envelope", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	if err != nil {
		return nil, scrape.ParsingFailedErr("episode list markup", err)
	}

	var episodes []media.Episode
	doc.Find("a[data-id]").Each(func(i int, s *goquery.Selection) {
		dataID := s.AttrOr("data-id", "")
		if dataID == "" {
			return
		}
		ep := media.Episode{
			ID:     dataID,
			Number: i + 1,
			Title:  strings.TrimSpace(s.AttrOr("title", "")),
		}
		if n, err := strconv.Atoi(s.AttrOr("data-number", "")); err == nil {
			ep.Number = n
		}
		if token != "" {
			ep.ID = dataID + episodeTokenSep + token
		}
		episodes = append(episodes, ep)
	})
	return episodes, nil
}

// ExtractStreamingLinks resolves one episode's streams. The cipher
// parameters are refreshed from the config endpoint first; without them no
// source payload can be read, so that failure is fatal rather than a
// per-server skip.
func (h *HiAnime) ExtractStreamingLinks(ctx context.Context, contentID, seasonID, episodeID string) ([]media.ExtractedLink, error) {
	if err := httputil.ValidateID(contentID); err != nil {
		return nil, scrape.InvalidURL(contentID, err)
	}
	dataID, token, ok := strings.Cut(episodeID, episodeTokenSep)
	if !ok || dataID == "" || token == "" {
		return nil, scrape.MissingEpisodeInfo("episode routing token required for " + contentID)
	}
	if err := httputil.ValidateNumericID(dataID); err != nil {
		return nil, scrape.InvalidURL(dataID, err)
	}

	cfg, err := h.fetchCipherConfig(ctx)
	if err != nil {
		return nil, err
	}

	servers, err := h.fetchServers(ctx, dataID, cfg.CSRF)
	if err != nil {
		return nil, err
	}
	if len(servers) == 0 {
		return nil, scrape.ExtractionFailed("no servers listed for " + contentID)
	}

	batches := fanOut(ctx, servers, func(ctx context.Context, s server) ([]media.ExtractedLink, error) {
		return h.resolveServer(ctx, s, token, cfg)
	})

	links := finishLinks(flatten(batches))
	if len(links) == 0 {
		return nil, scrape.ExtractionFailed("all servers failed for " + contentID)
	}
	return links, nil
}

// cipherConfig is the rotating decryption material published at the config
// endpoint, plus the sources route it currently applies to. Keystream bytes
// travel hex-encoded.
type cipherConfig struct {
	pipe        pipeline.Pipeline
	CSRF        string
	sourcesPath string
	method      string
}

func (h *HiAnime) fetchCipherConfig(ctx context.Context) (*cipherConfig, error) {
	// the network error kind propagates so callers can treat a missed
	// config fetch as transient
	body, err := httputil.Get(ctx, h.client, h.configURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching cipher config: %w", err)
	}

	var raw struct {
		Key         string `json:"key"`
		IV          string `json:"iv"`
		Keystream   string `json:"keystream"`
		Alphabet    string `json:"alphabet"`
		CSRF        string `json:"csrf"`
		SourcesPath string `json:"sources_path"`
		Method      string `json:"method"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, scrape.ParsingFailedErr("cipher config", err)
	}

	keystream, err := hex.DecodeString(raw.Keystream)
	if err != nil || len(keystream) == 0 {
		return nil, scrape.ParsingFailed("cipher config has no usable keystream")
	}
	alphabet, err := pipeline.NewAlphabet(raw.Alphabet)
	if err != nil {
		return nil, scrape.ParsingFailedErr("cipher config alphabet", err)
	}
	if raw.SourcesPath == "" {
		raw.SourcesPath = "/ajax/v2/episode/sources"
	}
	if raw.Method == "" {
		raw.Method = http.MethodGet
	}

	return &cipherConfig{
		pipe: pipeline.Pipeline{
			Key:       []byte(raw.Key),
			IV:        []byte(raw.IV),
			Keystream: keystream,
			Strategy:  pipeline.XORByteStrategy,
			Alphabet:  alphabet,
		},
		CSRF:        raw.CSRF,
		sourcesPath: raw.SourcesPath,
		method:      raw.Method,
	}, nil
}

func (h *HiAnime) fetchServers(ctx context.Context, dataID, csrf string) ([]server, error) {
	body, err := h.getAjax(ctx,
		fmt.Sprintf("%s/ajax/v2/episode/servers?episodeId=%s", h.base, dataID), csrf)
	if err != nil {
		return nil, fmt.Errorf("fetching servers: %w", err)
	}

	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, scrape.ParsingFailedErr("server list envelope", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	if err != nil {
		return nil, scrape.ParsingFailedErr("server list markup", err)
	}

	var servers []server
	doc.Find(".server-item").Each(func(_ int, s *goquery.Selection) {
		id := s.AttrOr("data-id", "")
		if id == "" {
			return
		}
		name := strings.TrimSpace(s.Text())
		if name == "" {
			name = "Server " + id
		}
		servers = append(servers, server{ID: id, Name: name})
	})
	return servers, nil
}

func (h *HiAnime) resolveServer(ctx context.Context, s server, token string, cfg *cipherConfig) ([]media.ExtractedLink, error) {
	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          h.base + "/",
	}
	if cfg.CSRF != "" {
		headers["X-CSRF-Token"] = cfg.CSRF
	}
	body, err := httputil.Send(ctx, h.client, httputil.Endpoint{
		Base:    h.base,
		Path:    cfg.sourcesPath,
		Method:  cfg.method,
		Query:   url.Values{"id": {s.ID}, "_k": {token}},
		Headers: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("server %s: %w", s.Name, err)
	}

	var resp struct {
		Sources   json.RawMessage `json:"sources"`
		Encrypted bool            `json:"encrypted"`
		Tracks    []struct {
			File  string `json:"file"`
			Label string `json:"label"`
			Kind  string `json:"kind"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, scrape.ParsingFailedErr("sources payload for "+s.Name, err)
	}

	sourcesJSON := resp.Sources
	if resp.Encrypted {
		var blob string
		if err := json.Unmarshal(resp.Sources, &blob); err != nil {
			return nil, scrape.ParsingFailedErr("encrypted sources blob", err)
		}
		plain, err := cfg.pipe.Decode(blob)
		if err != nil {
			return nil, scrape.ParsingFailedErr("decrypting sources for "+s.Name, err)
		}
		sourcesJSON = []byte(plain)
	}

	var sources []struct {
		File string `json:"file"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(sourcesJSON, &sources); err != nil {
		return nil, scrape.ParsingFailedErr("decoded sources for "+s.Name, err)
	}

	var subs []media.Subtitle
	for i, t := range resp.Tracks {
		if t.File == "" || (t.Kind != "" && t.Kind != "captions" && t.Kind != "subtitles") {
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

	var links []media.ExtractedLink
	for _, src := range sources {
		if src.File == "" {
			continue
		}
		typ := media.LinkDirect
		quality := ""
		if strings.EqualFold(src.Type, "hls") || strings.Contains(src.File, ".m3u8") {
			typ = media.LinkHLS
			quality = "Auto"
		}
		links = append(links, media.ExtractedLink{
			ID:              s.ID,
			URL:             src.File,
			Quality:         quality,
			Server:          h.Name() + " - " + s.Name,
			RequiresReferer: true,
			Headers: map[string]string{
				"Referer":    h.base + "/",
				"User-Agent": httputil.UserAgent,
			},
			Type:      typ,
			Subtitles: subs,
		})
	}
	return links, nil
}

// getAjax issues the site's ajax calls, which demand both the XHR marker
// and the CSRF token or they answer with an error page.
func (h *HiAnime) getAjax(ctx context.Context, url, csrf string) ([]byte, error) {
	headers := map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          h.base + "/",
	}
	if csrf != "" {
		headers["X-CSRF-Token"] = csrf
	}
	return httputil.Get(ctx, h.client, url, headers)
}

func (h *HiAnime) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := httputil.Get(ctx, h.client, url, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, scrape.ParsingFailedErr("parsing HTML", err)
	}
	return doc, nil
}

// docHTML renders a parsed document back to markup for regex scans that
// need script bodies goquery selections cannot reach.
func docHTML(doc *goquery.Document) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	return html
}
