package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"remora/internal/extract"
	"remora/internal/httputil"
	"remora/internal/media"
	"remora/internal/scrape"
)

// FlixHQ scrapes the flixhq catalog and resolves its streams through the
// extractor registry: the site only hands out embed URLs on third-party
// hosts, never streams of its own.
type FlixHQ struct {
	base     string // origin, e.g. "https://flixhq.to"
	client   *http.Client
	registry *extract.Registry
}

// NewFlixHQ creates a FlixHQ provider on the given origin URL.
func NewFlixHQ(base string, client *http.Client, registry *extract.Registry) *FlixHQ {
	return &FlixHQ{
		base:     strings.TrimRight(base, "/"),
		client:   client,
		registry: registry,
	}
}

func (f *FlixHQ) Name() string { return "FlixHQ" }

// homeSections maps landing-page panels to carousel titles. Panels come and
// go with site redesigns; a missing one yields an empty carousel.
var homeSections = []struct {
	title    string
	selector string
}{
	{"Trending Movies", "#trending-movies"},
	{"Trending TV Shows", "#trending-tv"},
	{"Latest Movies", "#latest-movies"},
	{"Latest TV Shows", "#latest-tv"},
}

// FetchHomeContent returns the landing page's sections.
func (f *FlixHQ) FetchHomeContent(ctx context.Context) ([]media.Carousel, error) {
	doc, err := f.fetchDocument(ctx, f.base+"/home")
	if err != nil {
		return nil, fmt.Errorf("fetching home: %w", err)
	}

	carousels := make([]media.Carousel, 0, len(homeSections))
	for _, sec := range homeSections {
		items := parseFilmItems(doc.Find(sec.selector), f.base)
		carousels = append(carousels, media.Carousel{Title: sec.title, Items: items})
	}
	return carousels, nil
}

// Search returns one page of results for a query.
func (f *FlixHQ) Search(ctx context.Context, query string, page int) (*media.SearchPage, error) {
	if strings.TrimSpace(query) == "" {
		return &media.SearchPage{Page: 1, TotalPages: 1}, nil
	}
	if page < 1 {
		page = 1
	}

	searchURL := fmt.Sprintf("%s/search/%s", f.base, httputil.EncodeQuery(query))
	if page > 1 {
		searchURL += fmt.Sprintf("?page=%d", page)
	}

	doc, err := f.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	items := parseFilmItems(doc.Selection, f.base)
	totalPages := parseLastPage(doc)

	return &media.SearchPage{
		Items:        items,
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: len(items),
	}, nil
}

// FetchContentDetails loads a detail page and, for TV, enumerates seasons
// and episodes.
func (f *FlixHQ) FetchContentDetails(ctx context.Context, id string, mediaType media.MediaType) (*media.Content, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, scrape.InvalidURL(id, err)
	}

	doc, err := f.fetchDocument(ctx, f.base+"/"+id)
	if err != nil {
		return nil, fmt.Errorf("fetching details: %w", err)
	}

	content := parseDetail(doc, id, f.base)
	if content.Title == "" {
		// the title is the parse-health canary for the whole page
		return nil, scrape.ContentNotFound(id)
	}

	if content.Type == media.TV {
		seasons, err := f.fetchSeasons(ctx, id)
		if err != nil {
			return nil, err
		}
		content.Seasons = seasons
	}

	return content, nil
}

func (f *FlixHQ) fetchSeasons(ctx context.Context, id string) ([]media.Season, error) {
	numID := extractNumericID(id)
	if numID == "" {
		return nil, scrape.ParsingFailed("no numeric id in " + id)
	}

	doc, err := f.fetchDocument(ctx, fmt.Sprintf("%s/ajax/v2/tv/seasons/%s", f.base, numID))
	if err != nil {
		return nil, fmt.Errorf("fetching seasons: %w", err)
	}

	seasons := parseSeasons(doc)

	// episodes per season fetched concurrently; a failed season simply
	// stays empty rather than failing the details call
	filled := fanOut(ctx, seasons, func(ctx context.Context, s media.Season) (media.Season, error) {
		episodes, err := f.fetchEpisodes(ctx, s.ID)
		if err != nil {
			return s, err
		}
		s.Episodes = episodes
		s.EpisodeCount = len(episodes)
		return s, nil
	})

	// completion order is nondeterministic; the caller-visible list is not
	sort.Slice(filled, func(i, j int) bool { return filled[i].Number < filled[j].Number })
	return filled, nil
}

func (f *FlixHQ) fetchEpisodes(ctx context.Context, seasonID string) ([]media.Episode, error) {
	if err := httputil.ValidateNumericID(seasonID); err != nil {
		return nil, scrape.InvalidURL(seasonID, err)
	}

	doc, err := f.fetchDocument(ctx, fmt.Sprintf("%s/ajax/v2/season/episodes/%s", f.base, seasonID))
	if err != nil {
		return nil, fmt.Errorf("fetching episodes: %w", err)
	}
	return parseEpisodes(doc), nil
}

// ExtractStreamingLinks fans out over the site's server list, resolves each
// server's embed URL through the registry, and aggregates the survivors.
func (f *FlixHQ) ExtractStreamingLinks(ctx context.Context, contentID, seasonID, episodeID string) ([]media.ExtractedLink, error) {
	if err := httputil.ValidateID(contentID); err != nil {
		return nil, scrape.InvalidURL(contentID, err)
	}

	var serversURL string
	if strings.HasPrefix(contentID, "tv/") {
		if episodeID == "" {
			return nil, scrape.MissingEpisodeInfo("episode id required for " + contentID)
		}
		if err := httputil.ValidateNumericID(episodeID); err != nil {
			return nil, scrape.InvalidURL(episodeID, err)
		}
		serversURL = fmt.Sprintf("%s/ajax/v2/episode/servers/%s", f.base, episodeID)
	} else {
		numID := extractNumericID(contentID)
		if numID == "" {
			return nil, scrape.ParsingFailed("no numeric id in " + contentID)
		}
		serversURL = fmt.Sprintf("%s/ajax/movie/episodes/%s", f.base, numID)
	}

	doc, err := f.fetchDocument(ctx, serversURL)
	if err != nil {
		return nil, fmt.Errorf("fetching servers: %w", err)
	}

	servers := parseServers(doc)
	if len(servers) == 0 {
		return nil, scrape.ExtractionFailed("no servers listed for " + contentID)
	}

	batches := fanOut(ctx, servers, func(ctx context.Context, s server) ([]media.ExtractedLink, error) {
		return f.resolveServer(ctx, s)
	})

	links := finishLinks(flatten(batches))
	if len(links) == 0 {
		return nil, scrape.ExtractionFailed("all servers failed for " + contentID)
	}
	return links, nil
}

// resolveServer turns one server entry into links: the site's sources
// endpoint returns an embed URL, the registry does the rest.
func (f *FlixHQ) resolveServer(ctx context.Context, s server) ([]media.ExtractedLink, error) {
	body, err := httputil.GetJSON(ctx, f.client,
		fmt.Sprintf("%s/ajax/episode/sources/%s", f.base, s.ID), f.base+"/")
	if err != nil {
		return nil, fmt.Errorf("server %s: %w", s.Name, err)
	}

	var resp struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, scrape.ParsingFailedErr("embed response for "+s.Name, err)
	}
	if resp.Link == "" {
		return nil, scrape.ParsingFailed("no embed link for server " + s.Name)
	}

	links, err := f.registry.Extract(ctx, resp.Link)
	if err != nil {
		return nil, err
	}

	for i := range links {
		links[i].Server = f.Name() + " - " + s.Name
	}
	logrus.WithFields(logrus.Fields{"server": s.Name, "links": len(links)}).Debug("server resolved")
	return links, nil
}

func (f *FlixHQ) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := httputil.Get(ctx, f.client, url, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, scrape.ParsingFailedErr("parsing HTML", err)
	}
	return doc, nil
}
