package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"remora/internal/httputil"
	"remora/internal/media"
	"remora/internal/scrape"
	"remora/internal/subtitle"
)

// Soaper scrapes the soaper catalog. Its detail pages live at slug-derived
// paths with no search-result id to anchor on, so cross-provider lookups go
// through a slug fallback chain instead of an id.
type Soaper struct {
	base   string
	client *http.Client
}

func NewSoaper(base string, client *http.Client) *Soaper {
	return &Soaper{base: strings.TrimRight(base, "/"), client: client}
}

func (s *Soaper) Name() string { return "Soaper" }

var soaperSections = []struct {
	title    string
	selector string
}{
	{"Latest Movies", "#movies-latest"},
	{"Latest TV Shows", "#tv-latest"},
}

func (s *Soaper) FetchHomeContent(ctx context.Context) ([]media.Carousel, error) {
	doc, err := s.fetchDocument(ctx, s.base+"/")
	if err != nil {
		return nil, fmt.Errorf("fetching front page: %w", err)
	}

	carousels := make([]media.Carousel, 0, len(soaperSections))
	for _, sec := range soaperSections {
		carousels = append(carousels, media.Carousel{
			Title: sec.title,
			Items: s.parseThumbnails(doc.Find(sec.selector)),
		})
	}
	return carousels, nil
}

func (s *Soaper) Search(ctx context.Context, query string, page int) (*media.SearchPage, error) {
	if strings.TrimSpace(query) == "" {
		return &media.SearchPage{Page: 1, TotalPages: 1}, nil
	}
	if page < 1 {
		page = 1
	}

	doc, err := s.fetchDocument(ctx, fmt.Sprintf("%s/search.html?keyword=%s&page=%d",
		s.base, httputil.EncodeQuery(query), page))
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	items := s.parseThumbnails(doc.Selection)

	return &media.SearchPage{
		Items:        items,
		Page:         page,
		TotalPages:   parseLastPage(doc),
		TotalResults: len(items),
	}, nil
}

func (s *Soaper) FetchContentDetails(ctx context.Context, id string, mediaType media.MediaType) (*media.Content, error) {
	if err := httputil.ValidateID(id); err != nil {
		return nil, scrape.InvalidURL(id, err)
	}

	c, err := s.fetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, scrape.ContentNotFound(id)
	}
	return c, nil
}

// FindByTitle locates content whose id is unknown by probing slug-derived
// detail pages. Attempts run most-specific first; a page whose title parses
// ends the chain, a miss moves to the next slug. Only when every slug
// misses does the lookup fail.
func (s *Soaper) FindByTitle(ctx context.Context, title, altTitle, year string, mediaType media.MediaType) (*media.Content, error) {
	prefix := "movie_"
	includeYear := true
	if mediaType == media.TV {
		prefix = "tv_"
		includeYear = false
	}

	attempts := slugAttempts(title, altTitle, year, includeYear)
	if len(attempts) == 0 {
		return nil, scrape.InvalidURL(title, fmt.Errorf("no slug can be derived"))
	}

	for _, slug := range attempts {
		id := prefix + slug + ".html"
		c, err := s.fetchDetail(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, scrape.NetworkError(ctx.Err())
			}
			// any per-attempt failure moves the chain along; only
			// exhaustion fails the lookup
			logrus.WithError(err).WithField("slug", slug).Debug("slug attempt failed")
			continue
		}
		if c != nil {
			return c, nil
		}
		logrus.WithField("slug", slug).Debug("slug attempt missed")
	}
	return nil, scrape.ExtractionFailed("no slug variant resolved for " + title)
}

// fetchDetail parses one detail page. A nil Content with nil error means
// the page loaded but did not resolve to a recognizable title.
func (s *Soaper) fetchDetail(ctx context.Context, id string) (*media.Content, error) {
	doc, err := s.fetchDocument(ctx, s.base+"/"+id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h4").First().Text())
	if title == "" {
		return nil, nil
	}

	c := &media.Content{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(doc.Find("#film-content").First().Text()),
		URL:         s.base + "/" + id,
		Type:        media.Movie,
	}
	if strings.HasPrefix(id, "tv_") {
		c.Type = media.TV
		c.Seasons = parseSoaperSeasons(doc)
	}

	doc.Find(".panel-body div").Each(func(_ int, d *goquery.Selection) {
		text := strings.TrimSpace(d.Text())
		if strings.HasPrefix(text, "Release:") {
			value := strings.TrimSpace(strings.TrimPrefix(text, "Release:"))
			if len(value) >= 4 {
				c.Year = value[:4]
			}
		}
	})

	return c, nil
}

func parseSoaperSeasons(doc *goquery.Document) []media.Season {
	var seasons []media.Season
	doc.Find(".alert-info-ex").Each(func(i int, div *goquery.Selection) {
		season := media.Season{Number: i + 1}
		heading := strings.TrimSpace(div.Find("h4").Text())
		if parts := strings.Fields(heading); len(parts) >= 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				season.Number = n
			}
		}
		season.ID = strconv.Itoa(season.Number)

		div.Find("a").Each(func(j int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			ep := media.Episode{
				ID:     extractID(href),
				Number: j + 1,
				Title:  strings.TrimSpace(a.Text()),
			}
			if parts := strings.Fields(ep.Title); len(parts) >= 1 {
				if n, err := strconv.Atoi(strings.TrimSuffix(parts[0], ".")); err == nil {
					ep.Number = n
				}
			}
			season.Episodes = append(season.Episodes, ep)
		})
		// the site lists newest episode first
		for l, r := 0, len(season.Episodes)-1; l < r; l, r = l+1, r-1 {
			season.Episodes[l], season.Episodes[r] = season.Episodes[r], season.Episodes[l]
		}
		season.EpisodeCount = len(season.Episodes)
		seasons = append(seasons, season)
	})

	for l, r := 0, len(seasons)-1; l < r; l, r = l+1, r-1 {
		seasons[l], seasons[r] = seasons[r], seasons[l]
	}
	return seasons
}

// ExtractStreamingLinks posts the site's info endpoint, which only answers
// multipart form submissions carrying the page path in the "pass" field.
func (s *Soaper) ExtractStreamingLinks(ctx context.Context, contentID, seasonID, episodeID string) ([]media.ExtractedLink, error) {
	if err := httputil.ValidateID(contentID); err != nil {
		return nil, scrape.InvalidURL(contentID, err)
	}

	path := "/home/index/GetMInfoAjax"
	pass := contentID
	if strings.HasPrefix(contentID, "tv_") {
		if episodeID == "" {
			return nil, scrape.MissingEpisodeInfo("episode id required for " + contentID)
		}
		path = "/home/index/GetEInfoAjax"
		pass = episodeID
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("pass", strings.TrimSuffix(strings.TrimPrefix("/"+pass, "//"), ".html")); err != nil {
		return nil, scrape.ParsingFailedErr("building form", err)
	}
	if err := w.Close(); err != nil {
		return nil, scrape.ParsingFailedErr("building form", err)
	}

	body, err := httputil.Send(ctx, s.client, httputil.Endpoint{
		Base:   s.base,
		Path:   path,
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type":     w.FormDataContentType(),
			"Referer":          s.base + "/" + contentID,
			"X-Requested-With": "XMLHttpRequest",
		},
		Body: buf.Bytes(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching stream info: %w", err)
	}

	var resp struct {
		Val  string `json:"val"`
		Subs []struct {
			Name string `json:"name"`
			Path string `json:"path"`
		} `json:"subs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, scrape.ParsingFailedErr("stream info payload", err)
	}
	if resp.Val == "" {
		return nil, scrape.ExtractionFailed("no stream returned for " + contentID)
	}

	var subs []media.Subtitle
	for i, sub := range resp.Subs {
		if sub.Path == "" {
			continue
		}
		subs = append(subs, media.Subtitle{
			ID:       strconv.Itoa(i),
			Name:     sub.Name,
			Language: strings.TrimSuffix(sub.Name, ".srt"),
			URL:      absoluteURL(s.base, sub.Path),
			Format:   subtitle.DetectFormat(sub.Path),
		})
	}

	link := media.ExtractedLink{
		ID:              contentID,
		URL:             absoluteURL(s.base, resp.Val),
		Quality:         "Auto",
		Server:          s.Name(),
		RequiresReferer: true,
		Headers: map[string]string{
			"Referer":    s.base + "/",
			"User-Agent": httputil.UserAgent,
		},
		Type:      media.LinkHLS,
		Subtitles: subs,
	}
	if !strings.Contains(link.URL, ".m3u8") {
		link.Type = media.LinkDirect
		link.Quality = ""
	}

	return finishLinks([]media.ExtractedLink{link}), nil
}

func (s *Soaper) parseThumbnails(sel *goquery.Selection) []media.Content {
	var items []media.Content
	sel.Find(".thumbnail").Each(func(_ int, t *goquery.Selection) {
		link := t.Find("h5 a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		c := media.Content{
			ID:    extractID(href),
			Title: strings.TrimSpace(link.Text()),
			URL:   absoluteURL(s.base, href),
			Type:  media.Movie,
		}
		if strings.HasPrefix(c.ID, "tv_") {
			c.Type = media.TV
		}
		if poster, ok := t.Find("img").Attr("src"); ok {
			c.Poster = absoluteURL(s.base, poster)
		}
		if year := strings.TrimSpace(t.Find(".img-tip").Text()); len(year) == 4 {
			c.Year = year
		}
		if c.Title != "" {
			items = append(items, c)
		}
	})
	return items
}

func (s *Soaper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := httputil.Get(ctx, s.client, url, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, scrape.ParsingFailedErr("parsing HTML", err)
	}
	return doc, nil
}
