// Package site loads markdown collections and builds them into HTML pages.
package site

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/sitegen/sitegen/internal/layout"
)

var (
	ErrReadSource        = errors.New("failed to read source file")
	ErrWritePage         = errors.New("failed to write page")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrNoLayout          = errors.New("no layout for collection")
	ErrExists            = errors.New("file already exists")
)

// Collection names
const (
	Articles = "articles"
	Projects = "projects"
)

// Collection is a directory of markdown documents sharing one layout
type Collection struct {
	Name   string
	Dir    string
	Layout string
}

// SiteInfo is exposed to layouts as the site variable
type SiteInfo struct {
	Title   string
	URL     string
	BaseURL string
	Author  string
}

func (s SiteInfo) vars() map[string]any {
	return map[string]any{
		"title":   s.Title,
		"url":     s.URL,
		"baseurl": s.BaseURL,
		"author":  s.Author,
	}
}

// FindCollection returns the collection with the given name
func FindCollection(collections []Collection, name string) (Collection, error) {
	for _, c := range collections {
		if c.Name == name {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
}

// LoadLayouts parses the layout of every collection with the URL filters
// bound to site. Collections sharing a layout file share the parsed template.
func LoadLayouts(fsys fs.FS, collections []Collection, site SiteInfo) (map[string]*layout.Template, error) {
	engine := layout.NewEngine(layout.Site{URL: site.URL, BaseURL: site.BaseURL})
	byFile := make(map[string]*layout.Template)
	out := make(map[string]*layout.Template, len(collections))
	for _, c := range collections {
		tmpl, ok := byFile[c.Layout]
		if !ok {
			var err error
			tmpl, err = engine.ParseFile(fsys, c.Layout)
			if err != nil {
				return nil, err
			}
			byFile[c.Layout] = tmpl
		}
		out[c.Name] = tmpl
	}
	return out, nil
}
