// Package frontmatter splits a markdown document into its YAML header and body.
package frontmatter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits the YAML header size (default 1MB)
var MaxInputSize = 1 << 20

var (
	ErrNoFrontMatter  = errors.New("frontmatter: no front matter found")
	ErrInvalidYAML    = errors.New("frontmatter: invalid YAML")
	ErrInputTooLarge  = errors.New("frontmatter: input exceeds maximum size")
	ErrNilDestination = errors.New("frontmatter: nil destination pointer")
)

var (
	lineEndings = regexp.MustCompile(`\r\n?`)
	header      = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n(.*)$`)
)

// Split returns the raw YAML between the --- fences and the body after them.
// Line endings are normalized to \n first. The closing fence must end with a
// newline; blank lines directly after it are not part of the body.
func Split(content string) (raw, body string, err error) {
	content = lineEndings.ReplaceAllString(content, "\n")

	m := header.FindStringSubmatch(content)
	if m == nil {
		return "", "", ErrNoFrontMatter
	}
	return m[1], m[2], nil
}

// Parse splits content and decodes the header into v. It returns the body.
func Parse(content string, v any) (string, error) {
	raw, body, err := Split(content)
	if err != nil {
		return "", err
	}
	if err := Decode(raw, v); err != nil {
		return "", err
	}
	return body, nil
}

// Decode unmarshals a YAML header into v. A blank header leaves v untouched.
func Decode(raw string, v any) error {
	if v == nil {
		return ErrNilDestination
	}
	if len(raw) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(raw), MaxInputSize)
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := yaml.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return nil
}

// Marshal renders v as a complete front matter block followed by body
func Marshal(v any, body string) (string, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(out)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		sb.WriteByte('\n')
	}
	sb.WriteString("---\n")
	sb.WriteString(body)
	return sb.String(), nil
}
