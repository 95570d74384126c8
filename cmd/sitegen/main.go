package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/sitegen/sitegen/internal/config"
	"github.com/sitegen/sitegen/internal/executor"
	"github.com/sitegen/sitegen/internal/report"
	"github.com/sitegen/sitegen/internal/site"
	"github.com/sitegen/sitegen/internal/ui"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "sitegen [path]",
	Short: "Static site generator for markdown articles and projects",
	Long: `Builds HTML pages from markdown files with YAML front matter.

Each collection directory (_articles, _projects) is rendered through its
layout into one page per source file. Without a subcommand the site at
path (default: current directory) is built.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Build every collection of the site",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List the documents of the site",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Convert one markdown file to HTML on stdout",
	Long: `Converts the body of a markdown file and prints the HTML fragment.
Front matter is stripped when present. Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var newCmd = &cobra.Command{
	Use:       "new <articles|projects> <title>",
	Short:     "Create a markdown file with front matter",
	Args:      cobra.MinimumNArgs(2),
	ValidArgs: []string{site.Articles, site.Projects},
	RunE:      runNew,
}

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "Browse the site's documents interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(buildCmd, listCmd, renderCmd, newCmd, browseCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringP("output", "o", "", "Output directory (default: the site root)")
	pf.String("engine", "", "Markdown engine: classic, goldmark")
	pf.String("style", "", "Inline style of the classic engine: styled, plain")
	pf.Bool("preserve-blocks", false, "Keep code and list blocks verbatim")
	pf.Bool("drafts", false, "Include documents marked as drafts")
	pf.IntP("workers", "w", 0, "Parallel workers (default: auto)")
	pf.BoolP("verbose", "v", false, "Print skipped files and timings")
	pf.BoolP("quiet", "q", false, "Only print failures")

	viper.BindPFlag("output_dir", pf.Lookup("output"))
	viper.BindPFlag("engine", pf.Lookup("engine"))
	viper.BindPFlag("style", pf.Lookup("style"))
	viper.BindPFlag("preserve_blocks", pf.Lookup("preserve-blocks"))
	viper.BindPFlag("drafts", pf.Lookup("drafts"))
	viper.BindPFlag("workers", pf.Lookup("workers"))

	addBuildFlags(rootCmd)
	addBuildFlags(buildCmd)

	newCmd.Flags().BoolP("edit", "e", false, "Open the new file in the editor")
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("only", "", "Build a single collection: articles, projects")
	cmd.Flags().Bool("dry-run", false, "Render pages without writing them")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any document fails")
	cmd.Flags().Bool("no-hooks", false, "Skip pre_hook and post_hook")
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

func newReporter(cmd *cobra.Command) *report.Reporter {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet, verbose)
}

// setMaxProcs adjusts GOMAXPROCS to the container quota. The error is
// ignored: it only fails on an invalid GOMAXPROCS variable, in which case
// the runtime default stays.
func setMaxProcs(verbose bool, w io.Writer) {
	logf := func(string, ...interface{}) {}
	if verbose {
		logf = func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}
	_, _ = maxprocs.Set(maxprocs.Logger(logf))
}

// ============================================================================
// Commands
// ============================================================================

func runBuild(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	rep := newReporter(cmd)
	setMaxProcs(rep.Verbose, cmd.ErrOrStderr())

	opts := buildOptions{Workers: config.GetWorkers()}
	opts.Only, _ = cmd.Flags().GetString("only")
	opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.Strict, _ = cmd.Flags().GetBool("strict")
	opts.NoHooks, _ = cmd.Flags().GetBool("no-hooks")

	return build(cmd.Context(), root, opts, rep)
}

func runList(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	rep := newReporter(cmd)
	docs, _, err := loadDocuments(os.DirFS(root), collections(), rep)
	if err != nil {
		return err
	}

	rep.Table([]string{"Collection", "Source", "Date", "Title"}, documentRows(docs))
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	html, err := renderBody(cmd.Context(), string(data))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), html)
	return nil
}

func runNew(cmd *cobra.Command, args []string) error {
	c, err := site.FindCollection(collections(), args[0])
	if err != nil {
		return err
	}
	title := strings.Join(args[1:], " ")

	root := expandRoot(config.GetPath())
	src, ok := os.DirFS(root).(fs.StatFS)
	if !ok {
		return fmt.Errorf("cannot stat files under %s", root)
	}

	name, err := site.CreateDocument(src, site.DirFS(root), c, title, time.Now())
	if err != nil {
		return err
	}

	path := filepath.Join(root, filepath.FromSlash(name))
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)

	if edit, _ := cmd.Flags().GetBool("edit"); edit {
		return executor.Open(path, config.GetEditor())
	}
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	rep := newReporter(cmd)
	rep.Quiet = true // the TUI takes over the terminal

	docs, _, err := loadDocuments(os.DirFS(root), collections(), rep)
	if err != nil {
		return err
	}
	return ui.Run(docs, root, outputRoot(root), config.GetEditor())
}

// ============================================================================
// Path Resolution
// ============================================================================

// resolveRoot returns the absolute site root from the argument or config
func resolveRoot(args []string) (string, error) {
	path := config.GetPath()
	if len(args) > 0 {
		path = args[0]
	}

	absPath, err := filepath.Abs(expandRoot(path))
	if err != nil {
		return "", fmt.Errorf("error resolving path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("path error: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path error: %s is not a directory", absPath)
	}
	return absPath, nil
}

func expandRoot(path string) string {
	if path == "" {
		return "."
	}
	return path
}

// outputRoot returns the directory pages are written under. A relative
// output_dir is resolved against the site root.
func outputRoot(root string) string {
	dir := config.GetOutputDir()
	switch {
	case dir == "":
		return root
	case filepath.IsAbs(dir):
		return dir
	default:
		return filepath.Join(root, dir)
	}
}

func main() {
	rootCmd.Version = version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
