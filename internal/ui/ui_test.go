package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sitegen/sitegen/internal/site"
)

func testDocs() []*site.Document {
	return []*site.Document{
		{
			Collection: site.Articles,
			SourcePath: "_articles/go-tips.md",
			OutputPath: "_articles/go-tips.html",
			Meta: site.Meta{
				Title:    "Go Tips",
				Date:     site.Date{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
				Category: "Programming",
				Tags:     site.Tags{"go", "testing"},
				Excerpt:  "Small things that help",
			},
		},
		{
			Collection: site.Articles,
			SourcePath: "_articles/travel.md",
			OutputPath: "_articles/travel.html",
			Meta: site.Meta{
				Title: "Travel Notes",
				Date:  site.Date{Raw: "sometime"},
			},
		},
		{
			Collection: site.Projects,
			SourcePath: "_projects/sitegen.md",
			OutputPath: "_projects/sitegen.html",
			Meta: site.Meta{
				Title:  "Site Generator",
				Status: "Active",
				Tags:   site.Tags{"go", "cli"},
			},
		},
	}
}

func newTestModel(t *testing.T) mainModel {
	t.Helper()
	return newMainModel(testDocs(), "/site", "/out", "vim")
}

func update(t *testing.T, m mainModel, msg tea.Msg) (mainModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(mainModel), cmd
}

func TestNewDocItem(t *testing.T) {
	docs := testDocs()

	item := newDocItem(docs[0])
	if item.path != "_articles/go-tips" {
		t.Errorf("expected path %q, got %q", "_articles/go-tips", item.path)
	}
	if item.date != "2024-03-05" {
		t.Errorf("expected date %q, got %q", "2024-03-05", item.date)
	}
	if item.tags != "go testing" {
		t.Errorf("expected tags %q, got %q", "go testing", item.tags)
	}

	if got := newDocItem(docs[1]).date; got != "sometime" {
		t.Errorf("expected raw date, got %q", got)
	}
}

func TestMatchesQuery(t *testing.T) {
	item := newDocItem(testDocs()[0])

	tests := []struct {
		name     string
		query    string
		expected bool
	}{
		{"title word", "tips", true},
		{"path", "_articles", true},
		{"category", "programming", true},
		{"tag", "testing", true},
		{"date", "2024-03", true},
		{"excerpt", "help", true},
		{"all words must match", "go rust", false},
		{"several words", "go tips", true},
		{"no match", "python", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := strings.Fields(strings.ToLower(tt.query))
			if got := item.matchesQuery(words); got != tt.expected {
				t.Errorf("expected %v for %q, got %v", tt.expected, tt.query, got)
			}
		})
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		word     string
		expected bool
	}{
		{"mixed case", "Go Tips", "tips", true},
		{"missing", "Go Tips", "rust", false},
		{"lowercase grows in bytes", "İ", strings.ToLower("İ"), true},
		{"grown word inside title", "İzmir Notes", strings.ToLower("İzmir"), true},
		{"longer than text", "go", "golang", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsIgnoreCase(tt.s, tt.word); got != tt.expected {
				t.Errorf("expected %v for %q in %q, got %v", tt.expected, tt.word, tt.s, got)
			}
		})
	}
}

func TestFilterDocs(t *testing.T) {
	m := newTestModel(t)
	if len(m.filtered) != 3 {
		t.Fatalf("expected 3 items, got %d", len(m.filtered))
	}

	m.cursor = 2
	m.textInput.SetValue("GO")
	m, _ = update(t, m, filterMsg{})

	if len(m.filtered) != 2 {
		t.Fatalf("expected 2 items for %q, got %d", "GO", len(m.filtered))
	}
	if m.cursor != 1 {
		t.Errorf("expected cursor clamped to 1, got %d", m.cursor)
	}

	m.textInput.SetValue("nothing-matches")
	m, _ = update(t, m, filterMsg{})
	if len(m.filtered) != 0 || m.cursor != 0 {
		t.Errorf("expected empty result with cursor 0, got %d items, cursor %d", len(m.filtered), m.cursor)
	}
	if m.current() != nil {
		t.Errorf("expected no current document")
	}

	m.textInput.SetValue("   ")
	m, _ = update(t, m, filterMsg{})
	if len(m.filtered) != 3 {
		t.Errorf("expected blank query to show everything, got %d", len(m.filtered))
	}
}

func TestCursorKeys(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		key      tea.KeyType
		expected int
	}{
		{tea.KeyDown, 1},
		{tea.KeyDown, 2},
		{tea.KeyDown, 2},
		{tea.KeyUp, 1},
		{tea.KeyHome, 0},
		{tea.KeyEnd, 2},
		{tea.KeyPgUp, 0},
		{tea.KeyPgDown, 2},
	}

	for _, tt := range tests {
		m, _ = update(t, m, tea.KeyMsg{Type: tt.key})
		if m.cursor != tt.expected {
			t.Errorf("after %s expected cursor %d, got %d", tea.KeyMsg{Type: tt.key}, tt.expected, m.cursor)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, cmd := update(t, newTestModel(t), tea.KeyMsg{Type: key})
		if !m.quitting {
			t.Errorf("expected %s to quit", tea.KeyMsg{Type: key})
		}
		if cmd == nil {
			t.Fatalf("expected a quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg")
		}
		if m.View() != "" {
			t.Errorf("expected empty view after quitting")
		}
	}
}

func TestOpenKeys(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "_articles", "go-tips.md")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotPath, gotEditor string
	m := newMainModel(testDocs(), dir, filepath.Join(dir, "out"), "nano")
	m.open = func(path, editor string) error {
		gotPath, gotEditor = path, editor
		return nil
	}

	// source exists
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	if cmd == nil {
		t.Fatalf("expected an open command")
	}
	msg := cmd().(openedMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if gotPath != src || gotEditor != "nano" {
		t.Errorf("expected open(%q, %q), got open(%q, %q)", src, "nano", gotPath, gotEditor)
	}
	m, _ = update(t, m, msg)
	if m.status != "Opened "+src {
		t.Errorf("unexpected status %q", m.status)
	}

	// output has not been built
	gotPath = ""
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	msg = cmd().(openedMsg)
	if !errors.Is(msg.err, os.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", msg.err)
	}
	if gotPath != "" {
		t.Errorf("expected open not to be called, got %q", gotPath)
	}
	if expected := filepath.Join(dir, "out", "_articles", "go-tips.html"); msg.path != expected {
		t.Errorf("expected path %q, got %q", expected, msg.path)
	}
}

func TestTypingSchedulesFilter(t *testing.T) {
	m := newTestModel(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if m.textInput.Value() != "q" {
		t.Errorf("expected input %q, got %q", "q", m.textInput.Value())
	}
	if cmd == nil {
		t.Errorf("expected a debounce command")
	}
	if len(m.filtered) != 3 {
		t.Errorf("expected filtering to wait for the debounce, got %d items", len(m.filtered))
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	for _, want := range []string{"Go Tips", "_articles/go-tips", "2024-03-05", "Programming", "3/3", "Travel Notes"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
	if got := strings.Count(view, "\n") + 1; got != 30 {
		t.Errorf("expected view to fill 30 lines, got %d", got)
	}
}

func TestScrollWindow(t *testing.T) {
	tests := []struct {
		name                  string
		cursor, total, h      int
		offset                int
		start, end, newOffset int
	}{
		{"fits", 0, 3, 10, 0, 0, 3, 0},
		{"cursor below view", 12, 20, 5, 0, 8, 13, 8},
		{"cursor above view", 2, 20, 5, 10, 2, 7, 2},
		{"offset past end", 19, 20, 5, 30, 15, 20, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset := tt.offset
			start, end := scrollWindow(tt.cursor, tt.total, tt.h, &offset)
			if start != tt.start || end != tt.end || offset != tt.newOffset {
				t.Errorf("expected (%d, %d, %d), got (%d, %d, %d)",
					tt.start, tt.end, tt.newOffset, start, end, offset)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcdef", 6, "abcdef"},
		{"long", "abcdefghij", 6, "abc..."},
		{"tiny limit", "abcdefghij", 3, "abcdefghij"},
		{"runes", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateString(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}

	if got := truncateLines("a\nb\nc", 2, 0); got != "a\nb..." {
		t.Errorf("expected %q, got %q", "a\nb...", got)
	}
	if got := truncateLines("a", 0, 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestParseANSIColor(t *testing.T) {
	tests := map[string]string{
		"36":      "6",
		"90":      "8",
		"97":      "15",
		"212":     "212",
		"#ff8800": "#ff8800",
	}
	for in, expected := range tests {
		if got := parseANSIColor(in); string(got) != expected {
			t.Errorf("parseANSIColor(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func TestRunWithoutDocuments(t *testing.T) {
	if err := Run(nil, ".", ".", ""); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
