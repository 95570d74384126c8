package site

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sync"
	"time"

	"github.com/sitegen/sitegen/internal/layout"
)

// Converter turns a markdown body into an HTML fragment
type Converter interface {
	Convert(ctx context.Context, body string) (string, error)
}

// Result holds the outcome of building a single document
type Result struct {
	Document *Document
	Err      error
	Duration time.Duration
}

// Summary holds the count of succeeded and failed documents
type Summary struct {
	Succeeded int
	Failed    int
}

// Summarize tallies succeeded and failed results
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
	}
	return s
}

// Builder converts documents and writes them through their collection layout
type Builder struct {
	Engine  Converter
	Layouts map[string]*layout.Template
	Site    SiteInfo
	Out     OutputFS
	Workers int
	DryRun  bool

	// OnStart and OnDone are called from worker goroutines
	OnStart func(*Document)
	OnDone  func(Result)
}

// Build renders docs concurrently. Results are returned in input order.
func (b *Builder) Build(ctx context.Context, docs []*Document) []Result {
	if len(docs) == 0 {
		return nil
	}

	workers := min(ResolveWorkers(b.Workers), len(docs))
	results := make([]Result, len(docs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(docs))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = Result{Document: docs[idx], Err: ctx.Err()}
				} else {
					results[idx] = b.buildOne(ctx, docs[idx])
				}
				if b.OnDone != nil {
					b.OnDone(results[idx])
				}
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func (b *Builder) buildOne(ctx context.Context, doc *Document) Result {
	start := time.Now()
	result := Result{Document: doc}
	if b.OnStart != nil {
		b.OnStart(doc)
	}

	page, err := b.Render(ctx, doc)
	if err == nil && !b.DryRun {
		err = b.write(doc.OutputPath, []byte(page))
	}

	result.Err = err
	result.Duration = time.Since(start)
	return result
}

// Render converts the document body and applies the collection layout
func (b *Builder) Render(ctx context.Context, doc *Document) (string, error) {
	tmpl, ok := b.Layouts[doc.Collection]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoLayout, doc.Collection)
	}

	content, err := b.Engine.Convert(ctx, doc.Body)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", doc.SourcePath, err)
	}
	return tmpl.Render(doc.Context(b.Site, content))
}

func (b *Builder) write(name string, data []byte) error {
	if b.Out == nil {
		return fmt.Errorf("%w: %s: no output configured", ErrWritePage, name)
	}
	if dir := path.Dir(name); dir != "." {
		if err := b.Out.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWritePage, name, err)
		}
	}
	if err := b.Out.WriteFile(name, data, filePermissions); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWritePage, name, err)
	}
	return nil
}

// ResolveWorkers returns n when positive, otherwise GOMAXPROCS/2 clamped to [1, 8]
func ResolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return min(max(runtime.GOMAXPROCS(0)/2, 1), 8)
}
