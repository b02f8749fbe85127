package provider

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"remora/internal/media"
)

// server is one entry of a site's alternate-server list.
type server struct {
	ID   string
	Name string
}

// parseFilmItems extracts catalog cards from any container holding the
// standard .flw-item grid.
func parseFilmItems(sel *goquery.Selection, base string) []media.Content {
	var items []media.Content

	sel.Find(".film_list-wrap .flw-item").Each(func(_ int, s *goquery.Selection) {
		var c media.Content

		link := s.Find(".film-name a")
		c.Title = strings.TrimSpace(link.Text())
		if href, ok := link.Attr("href"); ok {
			c.ID = extractID(href)
			c.URL = absoluteURL(base, href)
		}

		if strings.HasPrefix(c.ID, "tv/") {
			c.Type = media.TV
		} else {
			c.Type = media.Movie
		}

		if poster, ok := s.Find(".film-poster img").Attr("data-src"); ok {
			c.Poster = poster
		}

		s.Find(".fd-infor span").Each(func(_ int, span *goquery.Selection) {
			text := strings.TrimSpace(span.Text())
			if len(text) == 4 {
				if _, err := strconv.Atoi(text); err == nil {
					c.Year = text
				}
			}
		})

		if c.Title != "" {
			items = append(items, c)
		}
	})

	return items
}

// parseLastPage reads the highest page number out of the pagination strip.
// Markup without pagination means a single page.
func parseLastPage(doc *goquery.Document) int {
	last := 1
	doc.Find(".pagination li a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		if i := strings.LastIndex(href, "page="); i != -1 {
			if n, err := strconv.Atoi(href[i+len("page="):]); err == nil && n > last {
				last = n
			}
		}
	})
	return last
}

// parseDetail extracts the detail-page metadata. The returned Content has
// an empty Title when the heading is absent; the caller treats that as the
// page being unrecognizable.
func parseDetail(doc *goquery.Document, id, base string) *media.Content {
	c := &media.Content{ID: id, URL: base + "/" + id}

	c.Title = strings.TrimSpace(doc.Find(".heading-name a").First().Text())
	if c.Title == "" {
		c.Title = strings.TrimSpace(doc.Find(".heading-name").First().Text())
	}
	c.AltTitle = strings.TrimSpace(doc.Find(".alternate-title").First().Text())
	c.Description = strings.TrimSpace(doc.Find(".description").First().Text())
	if poster, ok := doc.Find(".film-poster img").Attr("src"); ok {
		c.Poster = poster
	}

	doc.Find(".row-line").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find(".type").Text())
		if strings.HasPrefix(label, "Released") {
			value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s.Text()), label))
			if len(value) >= 4 {
				c.Year = value[:4]
			}
		}
	})

	if strings.HasPrefix(id, "tv/") {
		c.Type = media.TV
	} else {
		c.Type = media.Movie
	}

	return c
}

// parseSeasons extracts the season dropdown of a show page.
func parseSeasons(doc *goquery.Document) []media.Season {
	var seasons []media.Season

	doc.Find(".dropdown-menu a, .dropdown-menu .dropdown-item").Each(func(_ int, s *goquery.Selection) {
		dataID, ok := s.Attr("data-id")
		if !ok {
			return
		}

		num := 0
		if parts := strings.Fields(strings.TrimSpace(s.Text())); len(parts) >= 2 {
			num, _ = strconv.Atoi(parts[len(parts)-1])
		}

		seasons = append(seasons, media.Season{ID: dataID, Number: num})
	})

	return seasons
}

// parseEpisodes extracts the episode list of one season.
func parseEpisodes(doc *goquery.Document) []media.Episode {
	var episodes []media.Episode

	doc.Find(".nav-item a").Each(func(_ int, s *goquery.Selection) {
		dataID, ok := s.Attr("data-id")
		if !ok {
			return
		}

		title := strings.TrimSpace(s.AttrOr("title", ""))
		if title == "" {
			title = strings.TrimSpace(s.Text())
		}

		num := 0
		if parts := strings.Fields(strings.TrimSpace(s.Text())); len(parts) >= 2 {
			if n, err := strconv.Atoi(strings.TrimSuffix(parts[1], ":")); err == nil {
				num = n
			}
		}

		episodes = append(episodes, media.Episode{ID: dataID, Number: num, Title: title})
	})

	return episodes
}

// parseServers extracts server options. Movie endpoints use data-linkid,
// TV episode endpoints use data-id.
func parseServers(doc *goquery.Document) []server {
	var servers []server
	seen := map[string]struct{}{}

	doc.Find("[data-linkid], .link-item, .server-item a, .nav-item a[data-id]").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("data-linkid")
		if !ok {
			id, ok = s.Attr("data-id")
		}
		if !ok || id == "" {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		name := strings.TrimSpace(s.Find("span").Text())
		if name == "" {
			name = strings.TrimSpace(s.Text())
		}
		if name == "" {
			name = s.AttrOr("title", "Unknown")
		}

		servers = append(servers, server{ID: id, Name: name})
	})

	return servers
}

// extractID turns a site href into a content id.
// e.g. "/movie/free-the-exorcist-hd-75043" -> "movie/free-the-exorcist-hd-75043"
func extractID(href string) string {
	id := strings.TrimPrefix(href, "/")
	if i := strings.Index(id, "?"); i != -1 {
		id = id[:i]
	}
	return id
}

// extractNumericID pulls the trailing numeric id out of a content path.
// e.g. "movie/free-the-exorcist-hd-75043" -> "75043"
func extractNumericID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) == 0 {
		return ""
	}
	last := parts[len(parts)-1]
	if _, err := strconv.Atoi(last); err != nil {
		return ""
	}
	return last
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return base + href
}
