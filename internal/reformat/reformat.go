// Package reformat turns inline-substituted markdown lines into block-level HTML.
//
// The input is a document body whose headers, emphasis, links, code spans and list
// items have already been replaced by their HTML tags, one source line per line.
// Reformat groups those lines into headers, code blocks, lists and paragraphs and
// joins the serialized blocks with a blank line.
package reformat

import (
	"regexp"
	"strings"
)

// DefaultParagraphClass is the class attribute put on every generated paragraph
const DefaultParagraphClass = "mb-6 text-gray-700 dark:text-gray-300 leading-relaxed"

// blockSeparator separates serialized blocks in the output
const blockSeparator = "\n\n"

var (
	headerTag = regexp.MustCompile(`^<h[1-6][ >]`)

	codeOpenMarkers  = []string{"<pre><code"}
	codeCloseMarkers = []string{"</code></pre>"}
	listOpenMarkers  = []string{"<ul>", "<ol>"}
	listCloseMarkers = []string{"</ul>", "</ol>"}

	// attributed list tags only count at the start of a line
	attributedListTags = []string{"<ul ", "<ol "}
)

// Options configures a Reformatter
type Options struct {
	// ParagraphClass is the class attribute of <p> tags. Empty means DefaultParagraphClass.
	ParagraphClass string

	// PreserveBlocks keeps lines between code or list markers inside their block
	// instead of folding them into paragraphs.
	PreserveBlocks bool
}

// Reformatter groups lines into blocks. It holds no state between calls and
// may be shared between goroutines.
type Reformatter struct {
	paragraphClass string
	preserveBlocks bool
}

// New creates a Reformatter with the given options
func New(opts Options) *Reformatter {
	class := opts.ParagraphClass
	if class == "" {
		class = DefaultParagraphClass
	}
	return &Reformatter{
		paragraphClass: class,
		preserveBlocks: opts.PreserveBlocks,
	}
}

var defaultReformatter = New(Options{})

// Reformat converts lines to HTML using the default options
func Reformat(lines []string) string {
	return defaultReformatter.Reformat(lines)
}

// ParagraphClass returns the class used for paragraphs
func (r *Reformatter) ParagraphClass() string {
	return r.paragraphClass
}

// ReformatString splits s on newlines and reformats the result
func (r *Reformatter) ReformatString(s string) string {
	if s == "" {
		return ""
	}
	return r.Reformat(strings.Split(s, "\n"))
}

// Reformat converts lines to HTML blocks separated by a blank line
func (r *Reformatter) Reformat(lines []string) string {
	blocks := r.Blocks(lines)
	if len(blocks) == 0 {
		return ""
	}

	rendered := make([]string, len(blocks))
	for i, block := range blocks {
		rendered[i] = block.Render(r.paragraphClass)
	}
	return strings.Join(rendered, blockSeparator)
}

// Blocks scans lines once and returns the blocks in emission order
func (r *Reformatter) Blocks(lines []string) []Block {
	s := &scanner{preserve: r.preserveBlocks}
	for _, line := range lines {
		s.scan(line)
	}
	s.flushOpen()
	s.flushParagraph()
	return s.blocks
}

// scanner carries the state of a single pass
type scanner struct {
	preserve bool

	blocks    []Block
	paragraph []string

	inCodeBlock bool
	inList      bool

	// open collects the lines of a code block or list when preserve is set
	open *Block
}

func (s *scanner) scan(line string) {
	opensCode := containsAny(line, codeOpenMarkers)
	closesCode := containsAny(line, codeCloseMarkers)
	opensList := isListOpen(line)
	closesList := containsAny(line, listCloseMarkers)

	wasInCode, wasInList := s.inCodeBlock, s.inList
	if opensCode {
		s.inCodeBlock = true
	}
	if closesCode {
		s.inCodeBlock = false
	}
	if opensList {
		s.inList = true
	}
	if closesList {
		s.inList = false
	}

	trimmed := strings.TrimSpace(line)
	hasMarker := opensCode || closesCode || opensList || closesList

	switch {
	case s.preserve && s.open != nil && !hasMarker && (wasInCode || wasInList):
		s.open.Lines = append(s.open.Lines, line)

	case headerTag.MatchString(trimmed):
		s.flushOpen()
		s.flushParagraph()
		s.emit(Block{Kind: Header, Lines: []string{line}})

	case opensCode || closesCode:
		s.marker(CodeBlock, line, s.inCodeBlock)

	case opensList || closesList:
		s.marker(List, line, s.inList)

	case trimmed == "":
		s.flushParagraph()

	default:
		s.paragraph = append(s.paragraph, trimmed)
	}
}

// marker handles a line carrying a code or list marker. stillOpen reports
// whether the construct remains open after the line.
func (s *scanner) marker(kind Kind, line string, stillOpen bool) {
	s.flushParagraph()

	if !s.preserve {
		s.emit(Block{Kind: kind, Lines: []string{line}})
		return
	}

	if s.open != nil && s.open.Kind == kind {
		s.open.Lines = append(s.open.Lines, line)
	} else {
		s.flushOpen()
		s.open = &Block{Kind: kind, Lines: []string{line}}
	}

	if !stillOpen {
		s.flushOpen()
	}
}

func (s *scanner) flushOpen() {
	if s.open == nil {
		return
	}
	s.emit(*s.open)
	s.open = nil
}

func (s *scanner) flushParagraph() {
	if len(s.paragraph) == 0 {
		return
	}
	s.emit(Block{Kind: Paragraph, Lines: s.paragraph})
	s.paragraph = nil
}

func (s *scanner) emit(b Block) {
	s.blocks = append(s.blocks, b)
}

func isListOpen(line string) bool {
	if containsAny(line, listOpenMarkers) {
		return true
	}
	trimmed := strings.TrimSpace(line)
	for _, tag := range attributedListTags {
		if strings.HasPrefix(trimmed, tag) {
			return true
		}
	}
	return false
}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}
