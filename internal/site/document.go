package site

import (
	"path"
	"strings"

	"github.com/sitegen/sitegen/internal/layout"
	"github.com/sitegen/sitegen/internal/slug"
)

// Link points at a neighbouring document
type Link struct {
	Title string
	URL   string
}

// Document is one markdown source and the page generated from it.
// Paths are slash separated; SourcePath is relative to the site root and
// OutputPath to the output root.
type Document struct {
	Collection string
	SourcePath string
	OutputPath string
	URL        string

	Meta  Meta
	Extra map[string]any
	Body  string

	Previous *Link
	Next     *Link
}

// Name returns the source file name without its extension
func (d *Document) Name() string {
	base := path.Base(d.SourcePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Slug returns the slug from front matter or one derived from the title
func (d *Document) Slug() string {
	if d.Meta.Slug != "" {
		return d.Meta.Slug
	}
	if s := slug.Make(d.Meta.Title); s != "" {
		return s
	}
	return slug.Make(d.Name())
}

// Context builds the variables a layout sees when rendering this document
func (d *Document) Context(site SiteInfo, content string) layout.Context {
	page := make(map[string]any, len(d.Extra)+24)
	for k, v := range d.Extra {
		page[k] = v
	}

	m := d.Meta
	page["title"] = m.Title
	page["date"] = m.Date.Value()
	page["tags"] = []string(m.Tags)
	page["slug"] = d.Slug()
	page["draft"] = m.Draft
	page["stats"] = statVars(m.Stats)

	// unset fields stay undefined so {% if page.image %} is false
	setString(page, "excerpt", m.Excerpt)
	setString(page, "description", m.Description)
	setString(page, "author", m.Author)
	setString(page, "category", m.Category)
	setString(page, "reading_time", m.ReadingTime)
	setString(page, "image", m.Image)
	setString(page, "duration", m.Duration)
	setString(page, "status", m.Status)
	setString(page, "github_url", m.GithubURL)
	setString(page, "live_url", m.LiveURL)

	page["collection"] = d.Collection
	page["path"] = d.SourcePath
	page["url"] = d.URL
	page["content"] = content
	if d.Previous != nil {
		page["previous"] = linkVars(d.Previous)
	}
	if d.Next != nil {
		page["next"] = linkVars(d.Next)
	}

	return layout.Context{
		"site":    site.vars(),
		"page":    page,
		"content": content,
	}
}

func setString(vars map[string]any, key, value string) {
	if value != "" {
		vars[key] = value
	}
}

func statVars(stats []Stat) []any {
	out := make([]any, len(stats))
	for i, s := range stats {
		out[i] = map[string]any{"number": s.Number, "label": s.Label}
	}
	return out
}

func linkVars(l *Link) map[string]any {
	return map[string]any{"title": l.Title, "url": l.URL}
}

// linkNeighbours sets Previous and Next on docs, which must be sorted.
// Links are relative to the shared output directory.
func linkNeighbours(docs []*Document) {
	for i, d := range docs {
		d.Previous, d.Next = nil, nil
		if i > 0 {
			d.Previous = &Link{Title: docs[i-1].Meta.Title, URL: path.Base(docs[i-1].OutputPath)}
		}
		if i < len(docs)-1 {
			d.Next = &Link{Title: docs[i+1].Meta.Title, URL: path.Base(docs[i+1].OutputPath)}
		}
	}
}
