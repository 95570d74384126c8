package site

import (
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/sitegen/sitegen/internal/frontmatter"
	"github.com/sitegen/sitegen/internal/slug"
)

type articleStub struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Excerpt  string   `yaml:"excerpt"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
}

type projectStub struct {
	Title     string   `yaml:"title"`
	Date      string   `yaml:"date"`
	Excerpt   string   `yaml:"excerpt"`
	Tags      []string `yaml:"tags"`
	Duration  string   `yaml:"duration"`
	Status    string   `yaml:"status"`
	GithubURL string   `yaml:"github_url"`
	LiveURL   string   `yaml:"live_url"`
	Stats     []Stat   `yaml:"stats"`
}

// Scaffold returns the file name and content of a new document in c
func Scaffold(c Collection, title string, now time.Time) (name, content string, err error) {
	s := slug.Make(title)
	if s == "" {
		return "", "", fmt.Errorf("title %q has no usable characters", title)
	}

	var stub any
	date := now.Format("2006-01-02")
	switch c.Name {
	case Projects:
		stub = projectStub{
			Title:  title,
			Date:   date,
			Tags:   []string{},
			Status: "In Progress",
			Stats:  []Stat{},
		}
	default:
		stub = articleStub{
			Title: title,
			Date:  date,
			Tags:  []string{},
		}
	}

	content, err = frontmatter.Marshal(stub, "\n# "+title+"\n")
	if err != nil {
		return "", "", err
	}
	return path.Join(c.Dir, s+markdownExt), content, nil
}

// CreateDocument scaffolds a document and writes it, refusing to overwrite
func CreateDocument(src fs.StatFS, out OutputFS, c Collection, title string, now time.Time) (string, error) {
	name, content, err := Scaffold(c, title, now)
	if err != nil {
		return "", err
	}

	if _, err := src.Stat(name); err == nil {
		return "", fmt.Errorf("%w: %s", ErrExists, name)
	}

	if err := out.MkdirAll(c.Dir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWritePage, name, err)
	}
	if err := out.WriteFile(name, []byte(content), filePermissions); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWritePage, name, err)
	}
	return name, nil
}
