// Package ui renders engine results for the terminal. Rendering is pure
// string building so every view is testable without a TTY.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"remora/internal/media"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	qualityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
)

// ContentLine renders one catalog entry as a single list row.
func ContentLine(c media.Content) string {
	line := titleStyle.Render(c.Title)
	if c.Year != "" {
		line += " " + dimStyle.Render("("+c.Year+")")
	}
	line += " " + typeStyle.Render("["+c.Type.String()+"]")
	return line
}

// RenderCarousels renders the home sections. Empty sections are shown with
// a placeholder rather than hidden, so a scrape regression is visible.
func RenderCarousels(carousels []media.Carousel) string {
	var b strings.Builder
	for i, car := range carousels {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headerStyle.Render(car.Title))
		b.WriteString("\n")
		if len(car.Items) == 0 {
			b.WriteString(dimStyle.Render("  (nothing here)"))
			b.WriteString("\n")
			continue
		}
		for _, item := range car.Items {
			b.WriteString("  " + ContentLine(item) + "\n")
		}
	}
	return b.String()
}

// RenderSearchPage renders one page of search results with its position in
// the full result set.
func RenderSearchPage(page *media.SearchPage) string {
	var b strings.Builder
	if len(page.Items) == 0 {
		b.WriteString(dimStyle.Render("no results"))
		b.WriteString("\n")
		return b.String()
	}
	for _, item := range page.Items {
		b.WriteString(ContentLine(item) + "\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("page %d of %d", page.Page, page.TotalPages)))
	b.WriteString("\n")
	return b.String()
}

// RenderDetails renders a detail view including the episode tree for shows.
func RenderDetails(c *media.Content) string {
	var b strings.Builder
	b.WriteString(ContentLine(*c) + "\n")
	if c.Description != "" {
		b.WriteString(dimStyle.Render(c.Description) + "\n")
	}
	for _, season := range c.Seasons {
		b.WriteString(headerStyle.Render(fmt.Sprintf("Season %d", season.Number)))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d episodes)", season.EpisodeCount)))
		b.WriteString("\n")
		for _, ep := range season.Episodes {
			b.WriteString(fmt.Sprintf("  %3d  %s\n", ep.Number, ep.Title))
		}
	}
	return b.String()
}

// RenderLinks renders extracted links best-first, as produced by the
// provider's ordering.
func RenderLinks(links []media.ExtractedLink) string {
	var b strings.Builder
	for _, l := range links {
		quality := l.Quality
		if quality == "" {
			quality = "?"
		}
		b.WriteString(qualityStyle.Render(fmt.Sprintf("%-8s", quality)))
		b.WriteString(" " + dimStyle.Render(fmt.Sprintf("%-28s", l.Server)))
		b.WriteString(" " + urlStyle.Render(l.URL))
		b.WriteString("\n")
		for _, sub := range l.Subtitles {
			b.WriteString(dimStyle.Render(fmt.Sprintf("         sub: %s (%s)", sub.Name, sub.Format)))
			b.WriteString("\n")
		}
	}
	return b.String()
}
