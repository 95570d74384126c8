package inline

import (
	"fmt"
	"regexp"
	"strings"
)

// Style names accepted by ForStyle
const (
	StylePlain  = "plain"
	StyleStyled = "styled"
)

// Classes holds the class attributes a style puts on generated tags.
// Empty strings produce bare tags.
type Classes struct {
	Headers    [6]string
	Strong     string
	Em         string
	Code       string
	Link       string
	Image      string
	Blockquote string
	Item       string
	Unordered  string
	Ordered    string

	// WrapLists wraps runs of list items in <ul>/<ol> lines
	WrapLists bool
}

// PlainClasses produces bare tags and leaves list items unwrapped
var PlainClasses = Classes{}

// StyledClasses carries the Tailwind classes used by the article pages
var StyledClasses = Classes{
	Headers: [6]string{
		"text-4xl font-bold mt-12 mb-8 text-gray-900 dark:text-white",
		"text-3xl font-bold mt-10 mb-6 text-gray-900 dark:text-white",
		"text-2xl font-bold mt-8 mb-4 text-gray-900 dark:text-white",
		"text-xl font-bold mt-6 mb-3 text-gray-900 dark:text-white",
		"text-lg font-semibold mt-6 mb-3 text-gray-900 dark:text-white",
		"text-base font-semibold mt-4 mb-2 text-gray-900 dark:text-white",
	},
	Strong:     "font-semibold text-gray-900 dark:text-white",
	Em:         "italic",
	Code:       "bg-gray-100 dark:bg-gray-800 px-2 py-1 rounded text-sm font-mono text-gray-900 dark:text-white",
	Link:       "text-orange-600 dark:text-orange-400 hover:underline",
	Image:      "rounded-lg my-6",
	Blockquote: "border-l-4 border-orange-500 pl-6 py-2 my-6 bg-orange-50 dark:bg-gray-800/50 italic text-gray-700 dark:text-gray-300",
	Item:       "mb-2 text-gray-700 dark:text-gray-300",
	Unordered:  "list-disc ml-6 mt-4 mb-4 text-gray-700 dark:text-gray-300",
	Ordered:    "list-decimal ml-6 mt-4 mb-4 text-gray-700 dark:text-gray-300",
	WrapLists:  true,
}

var (
	crlfOrCR      = regexp.MustCompile(`\r\n?`)
	fencePattern  = regexp.MustCompile("(?s)```(\\w*)[^\\n]*\\n(.*?)```")
	codeSpan      = regexp.MustCompile("`([^`\\n]+)`")
	headerLine    = regexp.MustCompile(`(?m)^(#{1,6}) (.*)$`)
	imagePattern  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]*)\)`)
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	markPattern   = regexp.MustCompile(`==(.*?)==`)
	linkPattern   = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	quoteLine     = regexp.MustCompile(`(?m)^> ?(.*)$`)
	unorderedItem = regexp.MustCompile(`^- (.*)$`)
	orderedItem   = regexp.MustCompile(`^\d+\. (.*)$`)
)

// Plain returns the pipeline producing bare tags
func Plain() Pipeline {
	return New(PlainClasses)
}

// Styled returns the pipeline producing Tailwind-classed tags
func Styled() Pipeline {
	return New(StyledClasses)
}

// ForStyle returns the pipeline for a style name
func ForStyle(name string) (Pipeline, error) {
	switch strings.ToLower(name) {
	case StylePlain:
		return Plain(), nil
	case StyleStyled, "":
		return Styled(), nil
	default:
		return nil, fmt.Errorf("unknown inline style: %q (supported: %s, %s)", name, StylePlain, StyleStyled)
	}
}

// New builds the standard stage order with the given classes
func New(c Classes) Pipeline {
	return Pipeline{
		{Name: "normalize", Apply: normalizeLineEndings},
		{Name: "fences", Apply: fencedCode},
		{Name: "inline-code", Apply: codeSpans(c.Code)},
		{Name: "headers", Apply: headers(c.Headers)},
		{Name: "images", Apply: images(c.Image)},
		{Name: "bold", Apply: wrap(boldPattern, "strong", c.Strong)},
		{Name: "italic", Apply: wrap(italicPattern, "em", c.Em)},
		{Name: "highlight", Apply: wrap(markPattern, "mark", "")},
		{Name: "links", Apply: links(c.Link)},
		{Name: "blockquotes", Apply: blockquotes(c.Blockquote)},
		{Name: "lists", Apply: lists(c)},
	}
}

func attr(class string) string {
	if class == "" {
		return ""
	}
	return ` class="` + class + `"`
}

func normalizeLineEndings(s string) string {
	return crlfOrCR.ReplaceAllString(s, "\n")
}

// fencedCode collapses ```lang fences into a single <pre><code> element.
// The language defaults to "text".
func fencedCode(s string) string {
	return fencePattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := fencePattern.FindStringSubmatch(match)
		lang := sub[1]
		if lang == "" {
			lang = "text"
		}
		return `<pre><code class="language-` + lang + `">` + strings.TrimSpace(sub[2]) + `</code></pre>`
	})
}

func codeSpans(class string) func(string) string {
	repl := "<code" + attr(class) + ">$1</code>"
	return func(s string) string {
		return codeSpan.ReplaceAllString(s, repl)
	}
}

func headers(classes [6]string) func(string) string {
	return func(s string) string {
		return headerLine.ReplaceAllStringFunc(s, func(line string) string {
			sub := headerLine.FindStringSubmatch(line)
			level := len(sub[1])
			return fmt.Sprintf("<h%d%s>%s</h%d>", level, attr(classes[level-1]), sub[2], level)
		})
	}
}

func images(class string) func(string) string {
	repl := `<img src="$2" alt="$1"` + attr(class) + `>`
	return func(s string) string {
		return imagePattern.ReplaceAllString(s, repl)
	}
}

func wrap(re *regexp.Regexp, tag, class string) func(string) string {
	repl := "<" + tag + attr(class) + ">$1</" + tag + ">"
	return func(s string) string {
		return re.ReplaceAllString(s, repl)
	}
}

func links(class string) func(string) string {
	repl := `<a href="$2"` + attr(class) + `>$1</a>`
	return func(s string) string {
		return linkPattern.ReplaceAllString(s, repl)
	}
}

func blockquotes(class string) func(string) string {
	repl := "<blockquote" + attr(class) + ">$1</blockquote>"
	return func(s string) string {
		return quoteLine.ReplaceAllString(s, repl)
	}
}

// lists converts "- item" and "1. item" lines to <li> tags. With WrapLists set,
// each run of items of the same type gets its own opening and closing line.
func lists(c Classes) func(string) string {
	item := "<li" + attr(c.Item) + ">"
	return func(s string) string {
		lines := strings.Split(s, "\n")
		out := make([]string, 0, len(lines))

		open := ""
		closeRun := func() {
			if open != "" {
				out = append(out, "</"+open+">")
				open = ""
			}
		}

		for _, line := range lines {
			tag, class, text := "", "", ""
			if m := unorderedItem.FindStringSubmatch(line); m != nil {
				tag, class, text = "ul", c.Unordered, m[1]
			} else if m := orderedItem.FindStringSubmatch(line); m != nil {
				tag, class, text = "ol", c.Ordered, m[1]
			}

			if tag == "" {
				closeRun()
				out = append(out, line)
				continue
			}

			if c.WrapLists && open != tag {
				closeRun()
				out = append(out, "<"+tag+attr(class)+">")
				open = tag
			}
			out = append(out, item+text+"</li>")
		}
		closeRun()

		return strings.Join(out, "\n")
	}
}
