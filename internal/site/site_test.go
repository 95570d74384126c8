package site

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/liamg/memoryfs"

	"github.com/sitegen/sitegen/internal/frontmatter"
	"github.com/sitegen/sitegen/internal/layout"
)

var articles = Collection{Name: Articles, Dir: "_articles", Layout: "_layouts/article.html"}
var projects = Collection{Name: Projects, Dir: "_projects", Layout: "_layouts/project.html"}

func newFS(t *testing.T, files map[string]string) *memoryfs.FS {
	t.Helper()
	fsys := memoryfs.New()
	for name, content := range files {
		if dir := path.Dir(name); dir != "." {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
		if err := fsys.WriteFile(name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fsys
}

func siteFiles() map[string]string {
	return map[string]string{
		"_articles/first.md":            "---\ntitle: First\ndate: 2024-01-10\ntags: [go]\n---\nOne two three\n",
		"_articles/second.md":           "---\ntitle: Second\ndate: 2024-03-01\nhero: big.png\n---\nHello\n",
		"_articles/ARTICLE_TEMPLATE.md": "---\ntitle: Template\n---\n",
		"_articles/broken.md":           "no front matter here\n",
		"_articles/draft.md":            "---\ntitle: Draft\ndraft: true\n---\n",
		"_articles/notes.txt":           "not markdown",
		"_articles/sub/nested.md":       "---\ntitle: Nested\n---\n",
		"_projects/app.md":              "---\ntitle: App\nstatus: Live\nstats:\n  - number: 10k\n    label: users\n---\nBuilt it\n",
		"_layouts/article.html":         "<title>{{ page.title }}</title>{{ content }}|{{ page.next.url }}",
		"_layouts/project.html":         "<h1>{{ page.title }}</h1>{% for s in page.stats %}{{ s.number }} {{ s.label }}{% endfor %}",
	}
}

func TestLoad(t *testing.T) {
	fsys := newFS(t, siteFiles())
	loader := &Loader{FS: fsys, Exclude: []string{"*TEMPLATE*"}, Defaults: Defaults{Author: "Site Owner"}}

	res, err := loader.Load(articles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var titles []string
	for _, d := range res.Documents {
		titles = append(titles, d.Meta.Title)
	}
	if got := strings.Join(titles, ","); got != "Second,First" {
		t.Errorf("expected documents Second,First, got %s", got)
	}

	if len(res.Failures) != 1 || res.Failures[0].Path != "_articles/broken.md" {
		t.Fatalf("expected one failure for broken.md, got %+v", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, frontmatter.ErrNoFrontMatter) {
		t.Errorf("expected ErrNoFrontMatter, got %v", res.Failures[0].Err)
	}

	expectedSkipped := "_articles/ARTICLE_TEMPLATE.md,_articles/draft.md"
	if got := strings.Join(res.Skipped, ","); got != expectedSkipped {
		t.Errorf("expected skipped %s, got %s", expectedSkipped, got)
	}

	second, first := res.Documents[0], res.Documents[1]
	if second.Next == nil || second.Next.URL != "first.html" || second.Next.Title != "First" {
		t.Errorf("expected second to link to first, got %+v", second.Next)
	}
	if first.Previous == nil || first.Previous.URL != "second.html" {
		t.Errorf("expected first to link back to second, got %+v", first.Previous)
	}
	if second.Previous != nil || first.Next != nil {
		t.Error("expected no links past the ends")
	}

	if first.OutputPath != "_articles/first.html" {
		t.Errorf("expected output path _articles/first.html, got %s", first.OutputPath)
	}
	if first.Meta.Author != "Site Owner" {
		t.Errorf("expected default author, got %q", first.Meta.Author)
	}
	if first.Meta.ReadingTime != "1 min read" {
		t.Errorf("expected estimated reading time, got %q", first.Meta.ReadingTime)
	}
	if first.Meta.Date.Year() != 2024 || first.Meta.Date.Month() != time.January {
		t.Errorf("unexpected date %v", first.Meta.Date)
	}
	if second.Extra["hero"] != "big.png" {
		t.Errorf("expected extra field hero, got %v", second.Extra["hero"])
	}
}

func TestLoadIncludeDrafts(t *testing.T) {
	fsys := newFS(t, siteFiles())
	loader := &Loader{FS: fsys, IncludeDrafts: true}

	res, err := loader.Load(articles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// no excludes: template and draft are both documents
	if len(res.Documents) != 4 {
		t.Errorf("expected 4 documents, got %d", len(res.Documents))
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := newFS(t, siteFiles())

	_, err := (&Loader{FS: fsys}).Load(Collection{Name: "notes", Dir: "_missing"})
	if !errors.Is(err, ErrReadSource) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrReadSource wrapping ErrNotExist, got %v", err)
	}

	_, err = (&Loader{FS: fsys, Exclude: []string{"[unclosed"}}).Load(articles)
	if err == nil {
		t.Error("expected an error for a bad exclude pattern")
	}
}

func TestParseDocumentDefaults(t *testing.T) {
	tests := []struct {
		name       string
		collection Collection
		content    string
		title      string
		author     string
	}{
		{"project", projects, "---\n\n---\nbody", "Untitled Project", "Unknown Author"},
		{"article", articles, "---\n\n---\nbody", "Article Title", ""},
		{"kept", projects, "---\ntitle: Mine\nauthor: Me\n---\n", "Mine", "Me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.collection, "x.md", tt.content, Defaults{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Meta.Title != tt.title {
				t.Errorf("expected title %q, got %q", tt.title, doc.Meta.Title)
			}
			if doc.Meta.Author != tt.author {
				t.Errorf("expected author %q, got %q", tt.author, doc.Meta.Author)
			}
		})
	}
}

func TestParseDocumentFields(t *testing.T) {
	content := "---\ntitle: Café Tour\ntags: go, web\nreading_time: 7 min read\ndate: not a date\n---\n"
	doc, err := ParseDocument(articles, "_articles/cafe.md", content, Defaults{ReadingTime: "5 min read"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(doc.Meta.Tags, "|") != "go|web" {
		t.Errorf("expected comma separated tags to split, got %v", doc.Meta.Tags)
	}
	if doc.Meta.ReadingTime != "7 min read" {
		t.Errorf("expected front matter reading time to win, got %q", doc.Meta.ReadingTime)
	}
	if doc.Slug() != "cafe-tour" {
		t.Errorf("expected slug cafe-tour, got %q", doc.Slug())
	}
	if doc.Meta.Date.Value() != "not a date" {
		t.Errorf("expected raw date to be kept, got %v", doc.Meta.Date.Value())
	}

	if _, err := ParseDocument(articles, "bad.md", "---\ntitle: [oops\n---\n", Defaults{}); !errors.Is(err, frontmatter.ErrInvalidYAML) {
		t.Errorf("expected ErrInvalidYAML, got %v", err)
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words    int
		expected string
	}{
		{0, "1 min read"},
		{1, "1 min read"},
		{200, "1 min read"},
		{201, "2 min read"},
		{1000, "5 min read"},
	}

	for _, tt := range tests {
		body := strings.Repeat("word ", tt.words)
		if got := ReadingTime(body); got != tt.expected {
			t.Errorf("%d words: expected %q, got %q", tt.words, tt.expected, got)
		}
	}
}

type upperConverter struct{}

func (upperConverter) Convert(_ context.Context, body string) (string, error) {
	return "<p>" + strings.TrimSpace(body) + "</p>", nil
}

type failingConverter struct{}

func (failingConverter) Convert(context.Context, string) (string, error) {
	return "", errors.New("boom")
}

func loadAll(t *testing.T, fsys fs.FS) []*Document {
	t.Helper()
	loader := &Loader{FS: fsys, Exclude: []string{"*TEMPLATE*"}}
	var docs []*Document
	for _, c := range []Collection{articles, projects} {
		res, err := loader.Load(c)
		if err != nil {
			t.Fatalf("load %s: %v", c.Name, err)
		}
		docs = append(docs, res.Documents...)
	}
	return docs
}

func TestBuild(t *testing.T) {
	src := newFS(t, siteFiles())
	docs := loadAll(t, src)

	layouts, err := LoadLayouts(src, []Collection{articles, projects}, SiteInfo{Title: "Test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := memoryfs.New()
	var started atomic.Int32
	b := &Builder{
		Engine:  upperConverter{},
		Layouts: layouts,
		Site:    SiteInfo{Title: "Test"},
		Out:     out,
		Workers: 2,
		OnStart: func(*Document) { started.Add(1) },
	}

	results := b.Build(context.Background(), docs)
	if s := Summarize(results); s.Succeeded != 3 || s.Failed != 0 {
		t.Fatalf("expected 3 successes, got %+v", s)
	}
	if started.Load() != 3 {
		t.Errorf("expected OnStart for every document, got %d", started.Load())
	}
	for i, r := range results {
		if r.Document != docs[i] {
			t.Errorf("result %d out of order", i)
		}
	}

	page, err := out.ReadFile("_articles/second.html")
	if err != nil {
		t.Fatalf("expected page to be written: %v", err)
	}
	if string(page) != "<title>Second</title><p>Hello</p>|first.html" {
		t.Errorf("unexpected page %q", page)
	}

	project, err := out.ReadFile("_projects/app.html")
	if err != nil {
		t.Fatalf("expected project page: %v", err)
	}
	if string(project) != "<h1>App</h1>10k users" {
		t.Errorf("unexpected project page %q", project)
	}
}

func TestLoadLayouts(t *testing.T) {
	src := newFS(t, map[string]string{
		"_layouts/page.html": `<link href="{{ "/css/site.css" | relative_url }}">` +
			`{% if page.live_url %}live{% endif %}{% if page.status %}{{ page.status }}{% endif %}`,
	})
	shared := []Collection{
		{Name: Articles, Dir: "_articles", Layout: "_layouts/page.html"},
		{Name: Projects, Dir: "_projects", Layout: "_layouts/page.html"},
	}

	layouts, err := LoadLayouts(src, shared, SiteInfo{BaseURL: "/blog"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if layouts[Articles] != layouts[Projects] {
		t.Errorf("expected collections sharing a file to share the template")
	}

	doc := &Document{Collection: Projects, SourcePath: "_projects/app.md", Meta: Meta{Title: "App", Status: "Live"}}
	b := &Builder{Engine: upperConverter{}, Layouts: layouts, Site: SiteInfo{BaseURL: "/blog"}}
	page, err := b.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expected := `<link href="/blog/css/site.css">Live`; page != expected {
		t.Errorf("expected %q, got %q", expected, page)
	}

	if _, err := LoadLayouts(src, []Collection{articles}, SiteInfo{}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist for a missing layout, got %v", err)
	}
}

func TestBuildFailures(t *testing.T) {
	src := newFS(t, siteFiles())
	docs := loadAll(t, src)
	layouts := map[string]*layout.Template{Articles: layout.MustParse("{{ content }}")}

	t.Run("converter error", func(t *testing.T) {
		b := &Builder{Engine: failingConverter{}, Layouts: layouts, Out: memoryfs.New()}
		s := Summarize(b.Build(context.Background(), docs))
		if s.Failed != len(docs) {
			t.Errorf("expected every document to fail, got %+v", s)
		}
	})

	t.Run("missing layout", func(t *testing.T) {
		b := &Builder{Engine: upperConverter{}, Layouts: layouts, Out: memoryfs.New()}
		results := b.Build(context.Background(), docs)
		for _, r := range results {
			if r.Document.Collection == Projects && !errors.Is(r.Err, ErrNoLayout) {
				t.Errorf("expected ErrNoLayout for %s, got %v", r.Document.SourcePath, r.Err)
			}
			if r.Document.Collection == Articles && r.Err != nil {
				t.Errorf("unexpected error for %s: %v", r.Document.SourcePath, r.Err)
			}
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		b := &Builder{Engine: upperConverter{}, Layouts: layouts, Out: memoryfs.New()}
		for _, r := range b.Build(ctx, docs) {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", r.Err)
			}
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		out := memoryfs.New()
		b := &Builder{Engine: upperConverter{}, Layouts: layouts, Out: out, DryRun: true}
		b.Build(context.Background(), docs[:1])
		if _, err := out.ReadFile(docs[0].OutputPath); err == nil {
			t.Error("expected no output in dry run")
		}
	})

	t.Run("no documents", func(t *testing.T) {
		b := &Builder{Engine: upperConverter{}}
		if results := b.Build(context.Background(), nil); results != nil {
			t.Errorf("expected nil results, got %v", results)
		}
	})
}

func TestDirFS(t *testing.T) {
	dir := DirFS(t.TempDir())
	if err := dir.MkdirAll("a/b", 0o755); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := dir.WriteFile("a/b/c.html", []byte("x"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveWorkers(t *testing.T) {
	if got := ResolveWorkers(3); got != 3 {
		t.Errorf("expected explicit value, got %d", got)
	}
	if got := ResolveWorkers(0); got < 1 || got > 8 {
		t.Errorf("expected value in [1, 8], got %d", got)
	}
}

func TestFindCollection(t *testing.T) {
	all := []Collection{articles, projects}
	c, err := FindCollection(all, Projects)
	if err != nil || c.Dir != "_projects" {
		t.Errorf("expected projects collection, got %+v, %v", c, err)
	}
	if _, err := FindCollection(all, "notes"); !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestScaffold(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	name, content, err := Scaffold(projects, "My App!", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "_projects/my-app.md" {
		t.Errorf("expected _projects/my-app.md, got %s", name)
	}

	doc, err := ParseDocument(projects, name, content, Defaults{})
	if err != nil {
		t.Fatalf("scaffold does not parse back: %v", err)
	}
	if doc.Meta.Title != "My App!" || doc.Meta.Status != "In Progress" {
		t.Errorf("unexpected meta %+v", doc.Meta)
	}
	if !doc.Meta.Date.Equal(now) {
		t.Errorf("expected date %v, got %v", now, doc.Meta.Date.Time)
	}
	if !strings.Contains(doc.Body, "# My App!") {
		t.Errorf("expected heading in body, got %q", doc.Body)
	}

	if _, _, err := Scaffold(articles, "!!!", now); err == nil {
		t.Error("expected an error for an empty slug")
	}
}

func TestCreateDocument(t *testing.T) {
	fsys := memoryfs.New()
	now := time.Now()

	name, err := CreateDocument(fsys, fsys, articles, "Hello World", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fsys.ReadFile(name); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}

	if _, err := CreateDocument(fsys, fsys, articles, "Hello World", now); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}
