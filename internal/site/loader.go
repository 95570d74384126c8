package site

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/sitegen/sitegen/internal/frontmatter"
)

const markdownExt = ".md"

// Failure records a source file that could not be loaded
type Failure struct {
	Path string
	Err  error
}

// LoadResult is the outcome of loading one collection
type LoadResult struct {
	Documents []*Document
	Failures  []Failure
	// Skipped lists excluded files and drafts
	Skipped []string
}

// Loader reads collections from a site root
type Loader struct {
	FS            fs.FS
	Exclude       []string
	Defaults      Defaults
	IncludeDrafts bool
}

// Load reads every markdown file directly inside the collection directory.
// Files that fail to parse are reported in Failures and do not stop the walk.
func (l *Loader) Load(c Collection) (*LoadResult, error) {
	excludes, err := compileGlobs(l.Exclude)
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(l.FS, c.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}

	result := &LoadResult{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(path.Ext(name), markdownExt) {
			continue
		}

		src := path.Join(c.Dir, name)
		if matchAny(excludes, name) {
			result.Skipped = append(result.Skipped, src)
			continue
		}

		doc, err := l.LoadFile(c, src)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Path: src, Err: err})
			continue
		}
		if doc.Meta.Draft && !l.IncludeDrafts {
			result.Skipped = append(result.Skipped, src)
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	SortDocuments(result.Documents)
	linkNeighbours(result.Documents)
	return result, nil
}

// LoadFile parses a single source file of collection c
func (l *Loader) LoadFile(c Collection, src string) (*Document, error) {
	data, err := fs.ReadFile(l.FS, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSource, err)
	}
	return ParseDocument(c, src, string(data), l.Defaults)
}

// ParseDocument builds a Document from the content of src
func ParseDocument(c Collection, src, content string, d Defaults) (*Document, error) {
	raw, body, err := frontmatter.Split(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Collection: c.Name,
		SourcePath: src,
		Body:       body,
	}
	if err := frontmatter.Decode(raw, &doc.Meta); err != nil {
		return nil, err
	}
	if err := frontmatter.Decode(raw, &doc.Extra); err != nil {
		return nil, err
	}
	doc.Meta.applyDefaults(c.Name, d, body)

	doc.OutputPath = OutputPath(src)
	doc.URL = doc.OutputPath
	return doc, nil
}

// OutputPath maps foo/bar.md to foo/bar.html
func OutputPath(src string) string {
	return strings.TrimSuffix(src, path.Ext(src)) + ".html"
}

// SortDocuments orders documents newest first, then by source path.
// Undated documents sort last.
func SortDocuments(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].Meta.Date.Time, docs[j].Meta.Date.Time
		if !a.Equal(b) {
			return a.After(b)
		}
		return docs[i].SourcePath < docs[j].SourcePath
	})
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
