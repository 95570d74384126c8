package site

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sitegen/sitegen/internal/layout"
)

// Date is a front matter date. Raw keeps the original text when it could
// not be parsed.
type Date struct {
	time.Time
	Raw string
}

// UnmarshalYAML accepts YAML timestamps and date strings
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var v any
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
	case time.Time:
		d.Time = x
	case string:
		d.Raw = x
		if t, ok := layout.ParseDate(x); ok {
			d.Time = t
		}
	default:
		d.Raw = fmt.Sprint(x)
	}
	return nil
}

// Value returns the date for templates: a time.Time, the raw text, or nil
func (d Date) Value() any {
	switch {
	case !d.IsZero():
		return d.Time
	case d.Raw != "":
		return d.Raw
	default:
		return nil
	}
}

// Tags accepts either a YAML list or a comma separated string
type Tags []string

func (t *Tags) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*t = list
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*t = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

// Stat is a headline number shown on project pages
type Stat struct {
	Number any    `yaml:"number"`
	Label  string `yaml:"label"`
}

// Meta is the typed front matter shared by every collection
type Meta struct {
	Title       string `yaml:"title"`
	Date        Date   `yaml:"date"`
	Excerpt     string `yaml:"excerpt"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Category    string `yaml:"category"`
	Tags        Tags   `yaml:"tags"`
	ReadingTime string `yaml:"reading_time"`
	Image       string `yaml:"image"`
	Slug        string `yaml:"slug"`
	Draft       bool   `yaml:"draft"`

	// project fields
	Duration  string `yaml:"duration"`
	Status    string `yaml:"status"`
	GithubURL string `yaml:"github_url"`
	LiveURL   string `yaml:"live_url"`
	Stats     []Stat `yaml:"stats"`
}

// Defaults fills in front matter the author left out
type Defaults struct {
	Author string
	// ReadingTime overrides the word count estimate when set
	ReadingTime string
}

const (
	untitledProject = "Untitled Project"
	untitledArticle = "Article Title"
	unknownAuthor   = "Unknown Author"
	wordsPerMinute  = 200
)

func (m *Meta) applyDefaults(collection string, d Defaults, body string) {
	if m.Title == "" {
		if collection == Projects {
			m.Title = untitledProject
		} else {
			m.Title = untitledArticle
		}
	}

	if m.Author == "" {
		m.Author = d.Author
	}
	if m.Author == "" && collection == Projects {
		m.Author = unknownAuthor
	}

	if m.ReadingTime == "" {
		m.ReadingTime = d.ReadingTime
	}
	if m.ReadingTime == "" {
		m.ReadingTime = ReadingTime(body)
	}
}

// ReadingTime estimates "N min read" at 200 words per minute, at least 1
func ReadingTime(body string) string {
	words := len(strings.Fields(body))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	return fmt.Sprintf("%d min read", max(1, minutes))
}
