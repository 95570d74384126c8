// Package report prints build progress and results.
//
// Status words are styled with lipgloss through a renderer bound to the
// destination writer, so redirected output stays plain text.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

// Reporter writes progress to Out and failures to Err. It is safe for
// concurrent use by build workers.
type Reporter struct {
	Out     io.Writer
	Err     io.Writer
	Quiet   bool
	Verbose bool

	mu     sync.Mutex
	ok     lipgloss.Style
	fail   lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
}

// New creates a Reporter
func New(out, errOut io.Writer, quiet, verbose bool) *Reporter {
	outR := lipgloss.NewRenderer(out)
	errR := lipgloss.NewRenderer(errOut)
	return &Reporter{
		Out:     out,
		Err:     errOut,
		Quiet:   quiet,
		Verbose: verbose,
		ok:      outR.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    errR.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		muted:   outR.NewStyle().Foreground(lipgloss.Color("8")),
		header:  outR.NewStyle().Bold(true),
	}
}

func (r *Reporter) printf(w io.Writer, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// Processing announces that a source file is being built
func (r *Reporter) Processing(path string) {
	if r.Quiet {
		return
	}
	r.printf(r.Out, "Processing %s...\n", path)
}

// Generated reports a written page
func (r *Reporter) Generated(path string, d time.Duration) {
	if r.Quiet {
		return
	}
	if r.Verbose {
		r.printf(r.Out, "%s %s %s\n", r.ok.Render("Generated"), path, r.muted.Render("("+d.Round(time.Millisecond).String()+")"))
		return
	}
	r.printf(r.Out, "%s %s\n", r.ok.Render("Generated"), path)
}

// Failed reports a document that could not be built. Failures are never quiet.
func (r *Reporter) Failed(path string, err error) {
	r.printf(r.Err, "%s %s: %v\n", r.fail.Render("FAILED"), path, err)
}

// Skipped reports a file left out of the build
func (r *Reporter) Skipped(path, reason string) {
	if r.Quiet || !r.Verbose {
		return
	}
	r.printf(r.Out, "%s %s (%s)\n", r.muted.Render("Skipped"), path, reason)
}

// Hook announces a hook run
func (r *Reporter) Hook(phase string) {
	if r.Quiet {
		return
	}
	r.printf(r.Out, "%s %s hook\n", r.muted.Render("Running"), phase)
}

// Summary prints the final tally when more than one document was built
func (r *Reporter) Summary(succeeded, failed int) {
	if r.Quiet || succeeded+failed < 2 {
		return
	}
	r.printf(r.Out, "\n%d succeeded, %d failed\n", succeeded, failed)
}

// Table prints rows under a bold header
func (r *Reporter) Table(headers []string, rows [][]string) {
	cols := make([]any, len(headers))
	for i, h := range headers {
		cols[i] = h
	}

	tbl := table.New(cols...).
		WithWriter(r.Out).
		WithHeaderFormatter(func(format string, vals ...any) string {
			line := strings.TrimRight(fmt.Sprintf(format, vals...), " \n")
			return r.header.Render(line) + "\n"
		})
	for _, row := range rows {
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = v
		}
		tbl.AddRow(vals...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	tbl.Print()
}
