package reformat

import "strings"

// Kind identifies the structural element a Block represents
type Kind int

const (
	Paragraph Kind = iota // consecutive plain lines
	Header                // a single <h1>..<h6> line
	CodeBlock             // a line carrying <pre><code or </code></pre>
	List                  // a line carrying a <ul>/<ol> marker
)

func (k Kind) String() string {
	switch k {
	case Header:
		return "header"
	case CodeBlock:
		return "code"
	case List:
		return "list"
	default:
		return "paragraph"
	}
}

// Block is one unit of output HTML
type Block struct {
	Kind  Kind
	Lines []string
}

// Render serializes the block. Paragraph lines are joined with a single space
// and wrapped in a <p> tag with the given class; other blocks are emitted verbatim.
func (b Block) Render(paragraphClass string) string {
	if b.Kind != Paragraph {
		return strings.Join(b.Lines, "\n")
	}
	return `<p class="` + paragraphClass + `">` + strings.Join(b.Lines, " ") + "</p>"
}
