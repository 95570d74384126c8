// Package markdown converts document bodies to HTML fragments.
package markdown

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitegen/sitegen/internal/inline"
	"github.com/sitegen/sitegen/internal/reformat"
)

// Engine names
const (
	ClassicEngine  = "classic"
	GoldmarkEngine = "goldmark"
)

var (
	ErrUnknownEngine = errors.New("unknown markdown engine")
	ErrConversion    = errors.New("markdown conversion failed")
)

// Engine converts a markdown body into an HTML fragment
type Engine interface {
	Convert(ctx context.Context, body string) (string, error)
	Name() string
}

// Options configures the engines. Style, ParagraphClass and PreserveBlocks
// only apply to the classic engine.
type Options struct {
	Style          string
	ParagraphClass string
	PreserveBlocks bool
}

// New returns the engine registered under name
func New(name string, opts Options) (Engine, error) {
	switch name {
	case ClassicEngine, "":
		return NewClassic(opts)
	case GoldmarkEngine:
		return NewGoldmark(), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s, %s)", ErrUnknownEngine, name, ClassicEngine, GoldmarkEngine)
	}
}

// Classic runs the inline substitutions and groups the result into blocks
type Classic struct {
	Pipeline    inline.Pipeline
	Reformatter *reformat.Reformatter
}

// NewClassic builds the classic engine for the configured style
func NewClassic(opts Options) (*Classic, error) {
	p, err := inline.ForStyle(opts.Style)
	if err != nil {
		return nil, err
	}
	return &Classic{
		Pipeline: p,
		Reformatter: reformat.New(reformat.Options{
			ParagraphClass: opts.ParagraphClass,
			PreserveBlocks: opts.PreserveBlocks,
		}),
	}, nil
}

func (c *Classic) Name() string { return ClassicEngine }

func (c *Classic) Convert(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.Reformatter.Reformat(c.Pipeline.Lines(body)), nil
}
