package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sitegen/sitegen/internal/executor"
	"github.com/sitegen/sitegen/internal/site"
)

// ErrNoDocuments is returned by Run when there is nothing to browse
var ErrNoDocuments = errors.New("no documents found")

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 {
		builderPool.Put(b)
	}
}

// ============================================================================
// Document Item
// ============================================================================

// docItem wraps a Document with its display fields
type docItem struct {
	doc  *site.Document
	path string // source path without the .md suffix
	date string
	tags string
}

func newDocItem(doc *site.Document) docItem {
	return docItem{
		doc:  doc,
		path: strings.TrimSuffix(doc.SourcePath, filepath.Ext(doc.SourcePath)),
		date: displayDate(doc.Meta.Date),
		tags: strings.Join(doc.Meta.Tags, " "),
	}
}

func displayDate(d site.Date) string {
	if !d.IsZero() {
		return d.Format("2006-01-02")
	}
	return d.Raw
}

// matchesQuery reports whether every word occurs in some field of the item.
// Words must already be lower case.
func (item *docItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !item.containsWord(word) {
			return false
		}
	}
	return true
}

func (item *docItem) containsWord(word string) bool {
	meta := &item.doc.Meta
	return containsIgnoreCase(item.path, word) ||
		containsIgnoreCase(meta.Title, word) ||
		containsIgnoreCase(meta.Category, word) ||
		containsIgnoreCase(item.tags, word) ||
		containsIgnoreCase(item.date, word) ||
		containsIgnoreCase(meta.Excerpt, word)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// ============================================================================
// Column Config
// ============================================================================

type columnConfig struct {
	pathWidth int
	dateWidth int
	gap       int
}

func calculateColumns(items []docItem) columnConfig {
	cols := columnConfig{pathWidth: 12, dateWidth: 10, gap: 2}
	for i := range items {
		cols.pathWidth = max(cols.pathWidth, runewidth.StringWidth(items[i].path))
	}
	cols.pathWidth = min(cols.pathWidth, 40)
	return cols
}

// ============================================================================
// Messages
// ============================================================================

// filterMsg is sent after the debounce delay
type filterMsg struct{}

// openedMsg reports the outcome of opening a file
type openedMsg struct {
	path string
	err  error
}

// debounceFilter delays filtering so fast typing doesn't filter on every key
func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Main Model
// ============================================================================

type mainModel struct {
	items    []docItem
	filtered []docItem
	columns  columnConfig

	textInput textinput.Model
	cursor    int
	offset    int
	width     int
	height    int

	root       string // site root, source paths are relative to it
	outputRoot string // output paths are relative to it
	editor     string
	open       func(path, editor string) error

	status   string
	quitting bool
}

func newMainModel(docs []*site.Document, root, outputRoot, editor string) mainModel {
	items := make([]docItem, len(docs))
	for i, doc := range docs {
		items[i] = newDocItem(doc)
	}

	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50
	ti.Prompt = "> "

	return mainModel{
		items:      items,
		filtered:   items,
		columns:    calculateColumns(items),
		textInput:  ti,
		root:       root,
		outputRoot: outputRoot,
		editor:     editor,
		open:       executor.Open,
	}
}

func (m mainModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = max(msg.Width-4, 10)
		m.adjustOffset()
		return m, nil
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	case filterMsg:
		m.filterDocs()
		return m, nil
	case openedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = "Opened " + msg.path
		}
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	cmds := []tea.Cmd{cmd}

	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}
	return m, tea.Batch(cmds...)
}

// handleKey processes navigation keys. Keys it does not handle go to the
// text input.
func (m *mainModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit, true
	case "enter":
		if doc := m.current(); doc != nil {
			return m.openCmd(m.outputPath(doc), ""), true
		}
		return nil, true
	case "ctrl+o":
		if doc := m.current(); doc != nil {
			return m.openCmd(m.sourcePath(doc), m.editor), true
		}
		return nil, true
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-10)
	case "pgdown":
		m.moveCursor(10)
	case "home", "ctrl+a":
		m.cursor = 0
		m.adjustOffset()
	case "end", "ctrl+e":
		m.cursor = max(0, len(m.filtered)-1)
		m.adjustOffset()
	default:
		return nil, false
	}
	return nil, true
}

func (m *mainModel) current() *site.Document {
	if m.cursor < len(m.filtered) {
		return m.filtered[m.cursor].doc
	}
	return nil
}

func (m *mainModel) sourcePath(doc *site.Document) string {
	return filepath.Join(m.root, filepath.FromSlash(doc.SourcePath))
}

func (m *mainModel) outputPath(doc *site.Document) string {
	return filepath.Join(m.outputRoot, filepath.FromSlash(doc.OutputPath))
}

func (m *mainModel) openCmd(path, editor string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		if _, err := os.Stat(path); err != nil {
			return openedMsg{path: path, err: err}
		}
		return openedMsg{path: path, err: open(path, editor)}
	}
}

func (m *mainModel) moveCursor(delta int) {
	m.cursor += delta
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// adjustOffset keeps the cursor inside the estimated list viewport
func (m *mainModel) adjustOffset() {
	viewHeight := maxInt(m.height-previewHeight-inputHeight, 3)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewHeight {
		m.offset = m.cursor - viewHeight + 1
	}
	m.offset = clamp(m.offset, 0, max(0, len(m.filtered)-viewHeight))
}

func (m *mainModel) filterDocs() {
	query := strings.TrimSpace(m.textInput.Value())

	if query == "" {
		m.filtered = m.items
	} else {
		words := strings.Fields(strings.ToLower(query))
		m.filtered = make([]docItem, 0, len(m.items))
		for i := range m.items {
			if m.items[i].matchesQuery(words) {
				m.filtered = append(m.filtered, m.items[i])
			}
		}
	}

	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.adjustOffset()
}

// ============================================================================
// View
// ============================================================================

const (
	previewHeight = 7 // six lines plus the divider
	inputHeight   = 3 // divider, info line, input
)

func (m mainModel) View() string {
	if m.quitting {
		return ""
	}

	width := maxInt(m.width, 80)
	height := maxInt(m.height, 24)

	preview := m.renderPreview(width)
	listHeight := maxInt(height-previewHeight-inputHeight, 3)
	list := m.renderList(listHeight)
	padding := maxInt(height-previewHeight-countLines(list)-inputHeight, 0)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(preview)
	b.WriteString(list)
	b.WriteString(strings.Repeat("\n", padding))
	b.WriteString(m.renderInput(width))
	return b.String()
}

// renderPreview shows the front matter of the document under the cursor
func (m mainModel) renderPreview(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	lines := 0
	const maxLines = previewHeight - 1

	if m.cursor < len(m.filtered) {
		item := m.filtered[m.cursor]
		meta := &item.doc.Meta

		b.WriteString(styles.PreviewTitle.Render(meta.Title))
		b.WriteString("\n")
		b.WriteString(styles.PreviewPath.Render(item.doc.SourcePath + " → " + item.doc.OutputPath))
		b.WriteString("\n")
		lines += 2

		info := joinNonEmpty(" • ", item.date, meta.ReadingTime, meta.Author)
		if info != "" {
			b.WriteString(styles.PreviewDate.Render(info))
			b.WriteString("\n")
			lines++
		}

		if cat := joinNonEmpty(" • ", meta.Category, item.tags); cat != "" {
			b.WriteString(styles.Dim.Render(cat))
			b.WriteString("\n")
			lines++
		}

		if excerpt := firstNonEmpty(meta.Excerpt, meta.Description); excerpt != "" {
			excerpt = truncateLines(excerpt, maxLines-lines, width)
			b.WriteString(styles.PreviewText.Render(excerpt))
			b.WriteString("\n")
			lines += countLines(excerpt)
		}
	}

	for lines < maxLines {
		b.WriteString("\n")
		lines++
	}

	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	return b.String()
}

func (m *mainModel) renderList(maxHeight int) string {
	if len(m.filtered) == 0 {
		return ""
	}

	start, end := scrollWindow(m.cursor, len(m.filtered), maxHeight, &m.offset)
	gap := strings.Repeat(" ", m.columns.gap)

	b := getBuilder()
	defer putBuilder(b)
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor, gap))
		b.WriteString("\n")
	}
	return b.String()
}

func (m mainModel) renderListItem(item docItem, selected bool, gap string) string {
	pStyle, dStyle, tStyle := styles.Path, styles.Date, styles.Title
	if selected {
		pStyle = styles.WithSelection(pStyle)
		dStyle = styles.WithSelection(dStyle)
		tStyle = styles.WithSelection(tStyle)
		gap = styles.Selected.Render(gap)
	}

	path := padRight(truncateString(item.path, m.columns.pathWidth), m.columns.pathWidth)
	date := padRight(item.date, m.columns.dateWidth)

	title := item.doc.Meta.Title
	if m.width > 0 {
		used := m.columns.pathWidth + m.columns.dateWidth + m.columns.gap*2 + 2
		title = truncateString(title, maxInt(m.width-used, 4))
	}

	line := pStyle.Render(path) + gap + dStyle.Render(date) + gap + tStyle.Render(title)
	if selected {
		return styles.Cursor.Render("▶ ") + line
	}
	return "  " + line
}

func (m mainModel) renderInput(width int) string {
	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d", len(m.filtered), len(m.items))))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Enter view"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("Ctrl+O edit"))
	b.WriteString(" • ")
	b.WriteString(styles.Dim.Render("ESC exit"))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(styles.Status.Render(truncateString(m.status, maxInt(width/2, 10))))
	}
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output.
// Uses /dev/tty when stdout is piped so the UI still reaches the terminal.
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		return os.Stdin, os.Stdout, func() {}
	}

	var closers []func()

	out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		out = os.Stderr
	} else {
		closers = append(closers, func() { out.Close() })
	}

	in, err = os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		in = os.Stdin
	} else {
		closers = append(closers, func() { in.Close() })
	}

	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

	return in, out, func() {
		for _, c := range closers {
			c()
		}
	}
}

// Run browses docs until the user quits. Source paths are resolved against
// root and output paths against outputRoot.
func Run(docs []*site.Document, root, outputRoot, editor string) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	m := newMainModel(docs, root, outputRoot, editor)

	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles() // after getTTY sets up the renderer

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	_, err := p.Run()
	return err
}

// ============================================================================
// Helpers
// ============================================================================

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 1
}

// scrollWindow returns the visible range of a list and moves offset so the
// cursor stays inside it
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	*offset = clamp(*offset, 0, max(0, total-height))

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString shortens s to maxLen cells with an ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// truncateLines keeps at most maxLines lines, each cut to maxLen when maxLen > 0
func truncateLines(text string, maxLines, maxLen int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	cut := len(lines) > maxLines
	if cut {
		lines = lines[:maxLines]
	}
	if maxLen > 0 {
		for i, l := range lines {
			lines[i] = truncateString(l, maxLen)
		}
	}
	out := strings.Join(lines, "\n")
	if cut {
		out += "..."
	}
	return out
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
