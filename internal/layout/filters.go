package layout

import (
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/sitegen/sitegen/internal/slug"
)

func registerFilters(e *liquid.Engine, site Site) {
	e.RegisterFilter("relative_url", func(u string) string {
		return joinURL(site.BaseURL, u)
	})
	e.RegisterFilter("absolute_url", func(u string) string {
		return joinURL(site.URL, u)
	})
	e.RegisterFilter("slugify", slug.Make)
}

func isAbsolute(u string) bool {
	return strings.Contains(u, "://") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "mailto:")
}

// joinURL prefixes a site relative path with base. Absolute URLs are
// returned unchanged.
func joinURL(base, u string) string {
	if isAbsolute(u) {
		return u
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(u, "/")
}

// dateLayouts are tried in order when a date arrives as a string
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05 -0700",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

// ParseDate parses the date formats commonly found in front matter
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
