// Package layout renders page templates written in Liquid.
//
// Templates are compiled by an Engine, which carries the Jekyll URL filters
// for one site. A compiled Template is immutable and can be rendered any
// number of times, from any number of goroutines, against a Context.
package layout

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/osteele/liquid"
)

var (
	ErrSyntax = errors.New("layout: syntax error")
	ErrRender = errors.New("layout: render error")
)

// Context holds the variables visible to a template
type Context map[string]any

// Site holds the URLs the relative_url and absolute_url filters resolve
// against. They mirror site.baseurl and site.url in the Context.
type Site struct {
	URL     string
	BaseURL string
}

// Engine compiles templates for one site
type Engine struct {
	liquid *liquid.Engine
}

// NewEngine returns an Engine with the Jekyll filters registered
func NewEngine(site Site) *Engine {
	e := liquid.NewEngine()
	registerFilters(e, site)
	return &Engine{liquid: e}
}

var defaultEngine = NewEngine(Site{})

// Template is an immutable parsed layout
type Template struct {
	name string
	tpl  *liquid.Template
}

// Parse compiles src into a Template
func (e *Engine) Parse(src string) (*Template, error) {
	return e.parseNamed("", []byte(src))
}

// ParseFile reads and compiles a template from fsys
func (e *Engine) ParseFile(fsys fs.FS, name string) (*Template, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", name, err)
	}
	return e.parseNamed(name, data)
}

func (e *Engine) parseNamed(name string, src []byte) (*Template, error) {
	tpl, err := e.liquid.ParseTemplate(src)
	if err != nil {
		return nil, withName(name, fmt.Errorf("%w: %w", ErrSyntax, err))
	}
	return &Template{name: name, tpl: tpl}, nil
}

// Parse compiles src with an engine that has no site URLs
func Parse(src string) (*Template, error) {
	return defaultEngine.Parse(src)
}

// MustParse is like Parse but panics on error
func MustParse(src string) *Template {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseFile is like Engine.ParseFile with an engine that has no site URLs
func ParseFile(fsys fs.FS, name string) (*Template, error) {
	return defaultEngine.ParseFile(fsys, name)
}

func withName(name string, err error) error {
	if name == "" {
		return err
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Name returns the file name the template was parsed from, if any
func (t *Template) Name() string {
	return t.name
}

// Render executes the template against ctx
func (t *Template) Render(ctx Context) (string, error) {
	out, err := t.tpl.RenderString(liquid.Bindings(ctx))
	if err != nil {
		return "", withName(t.name, fmt.Errorf("%w: %w", ErrRender, err))
	}
	return out, nil
}
