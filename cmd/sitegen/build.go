package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sitegen/sitegen/internal/config"
	"github.com/sitegen/sitegen/internal/executor"
	"github.com/sitegen/sitegen/internal/frontmatter"
	"github.com/sitegen/sitegen/internal/markdown"
	"github.com/sitegen/sitegen/internal/report"
	"github.com/sitegen/sitegen/internal/site"
)

// errBuildFailed is returned with --strict when a document failed
var errBuildFailed = errors.New("build failed")

type buildOptions struct {
	Only    string
	Workers int
	DryRun  bool
	Strict  bool
	NoHooks bool
}

// collections returns the configured collections in build order
func collections() []site.Collection {
	cols := make([]site.Collection, 0, 2)
	for _, name := range []string{site.Articles, site.Projects} {
		c := config.GetCollection(name)
		cols = append(cols, site.Collection{Name: name, Dir: c.Dir, Layout: c.Layout})
	}
	return cols
}

func selectCollections(only string) ([]site.Collection, error) {
	all := collections()
	if only == "" {
		return all, nil
	}
	c, err := site.FindCollection(all, only)
	if err != nil {
		return nil, err
	}
	return []site.Collection{c}, nil
}

func siteInfo() site.SiteInfo {
	s := config.GetSite()
	return site.SiteInfo{Title: s.Title, URL: s.URL, BaseURL: s.BaseURL, Author: s.Author}
}

func newEngine() (markdown.Engine, error) {
	return markdown.New(config.GetEngine(), markdown.Options{
		Style:          config.GetStyle(),
		ParagraphClass: config.GetParagraphClass(),
		PreserveBlocks: config.GetPreserveBlocks(),
	})
}

// loadDocuments loads every collection. A missing collection directory is
// skipped; per-file failures are reported and counted.
func loadDocuments(fsys fs.FS, cols []site.Collection, rep *report.Reporter) ([]*site.Document, int, error) {
	loader := &site.Loader{
		FS:      fsys,
		Exclude: config.GetExclude(),
		Defaults: site.Defaults{
			Author:      config.GetSite().Author,
			ReadingTime: config.GetReadingTime(),
		},
		IncludeDrafts: config.GetDrafts(),
	}

	var (
		docs     []*site.Document
		failures int
	)
	for _, c := range cols {
		res, err := loader.Load(c)
		if errors.Is(err, fs.ErrNotExist) {
			rep.Skipped(c.Dir, "no such directory")
			continue
		}
		if err != nil {
			return nil, 0, err
		}

		for _, p := range res.Skipped {
			rep.Skipped(p, "excluded")
		}
		for _, f := range res.Failures {
			rep.Failed(f.Path, f.Err)
		}
		failures += len(res.Failures)
		docs = append(docs, res.Documents...)
	}
	return docs, failures, nil
}

// build loads, renders and writes the site at root
func build(ctx context.Context, root string, opts buildOptions, rep *report.Reporter) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cols, err := selectCollections(opts.Only)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	info := siteInfo()
	srcFS := os.DirFS(root)
	layouts, err := site.LoadLayouts(srcFS, cols, info)
	if err != nil {
		return fmt.Errorf("error loading layouts: %w", err)
	}

	docs, loadFailures, err := loadDocuments(srcFS, cols, rep)
	if err != nil {
		return err
	}

	outRoot := outputRoot(root)
	hooks := executor.New(root, outRoot)
	hooks.Stdout, hooks.Stderr = rep.Out, rep.Err
	runHooks := !opts.NoHooks && !opts.DryRun

	if runHooks {
		if err := runHook(ctx, hooks, rep, executor.PhasePre, config.GetPreHook()); err != nil {
			return err
		}
	}

	b := &site.Builder{
		Engine:  engine,
		Layouts: layouts,
		Site:    info,
		Out:     site.DirFS(outRoot),
		Workers: opts.Workers,
		DryRun:  opts.DryRun,
		OnStart: func(doc *site.Document) {
			rep.Processing(doc.SourcePath)
		},
		OnDone: func(r site.Result) {
			switch {
			case r.Err != nil:
				rep.Failed(r.Document.SourcePath, r.Err)
			case !opts.DryRun:
				rep.Generated(r.Document.OutputPath, r.Duration)
			}
		},
	}

	summary := site.Summarize(b.Build(ctx, docs))
	summary.Failed += loadFailures

	if err := ctx.Err(); err != nil {
		return err
	}

	if runHooks {
		if err := runHook(ctx, hooks, rep, executor.PhasePost, config.GetPostHook()); err != nil {
			return err
		}
	}

	rep.Summary(summary.Succeeded, summary.Failed)

	if opts.Strict && summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d documents failed", errBuildFailed,
			summary.Failed, summary.Succeeded+summary.Failed)
	}
	return nil
}

func runHook(ctx context.Context, h executor.HookRunner, rep *report.Reporter, phase, script string) error {
	if script == "" {
		return nil
	}
	rep.Hook(phase)
	return h.RunHook(ctx, phase, script)
}

// renderBody converts content with the configured engine. Front matter is
// stripped when present.
func renderBody(ctx context.Context, content string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	body := content
	if _, b, err := frontmatter.Split(content); err == nil {
		body = b
	} else if !errors.Is(err, frontmatter.ErrNoFrontMatter) {
		return "", err
	}

	engine, err := newEngine()
	if err != nil {
		return "", err
	}
	return engine.Convert(ctx, body)
}

// documentRows formats documents for the list table
func documentRows(docs []*site.Document) [][]string {
	rows := make([][]string, len(docs))
	for i, doc := range docs {
		date := doc.Meta.Date.Raw
		if !doc.Meta.Date.IsZero() {
			date = doc.Meta.Date.Format("2006-01-02")
		}
		title := doc.Meta.Title
		if doc.Meta.Draft {
			title += " (draft)"
		}
		rows[i] = []string{doc.Collection, doc.SourcePath, date, title}
	}
	return rows
}
