package provider

import "strings"

// Slugify derives a URL-safe slug from a title: lowercase, strip everything
// but letters, digits, spaces and hyphens, collapse whitespace to single
// hyphens.
func Slugify(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '\t':
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}

// slugAttempts builds the ordered fallback chain for title-guessed lookups:
// title+year, alternate title+year, then both without the year. The year is
// only meaningful for non-series content. Duplicates are removed preserving
// first-seen order so no lookup is wasted on a repeated slug.
func slugAttempts(title, altTitle, year string, includeYear bool) []string {
	var raw []string
	add := func(t string, withYear bool) {
		if t == "" {
			return
		}
		s := Slugify(t)
		if s == "" {
			return
		}
		if withYear && year != "" {
			s += "-" + year
		}
		raw = append(raw, s)
	}

	if includeYear {
		add(title, true)
		add(altTitle, true)
	}
	add(title, false)
	add(altTitle, false)

	seen := make(map[string]struct{}, len(raw))
	attempts := raw[:0:0]
	for _, s := range raw {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		attempts = append(attempts, s)
	}
	return attempts
}
