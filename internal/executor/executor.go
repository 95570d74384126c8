package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/shlex"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrHookFailed is returned when a hook script exits non-zero or cannot run
var ErrHookFailed = errors.New("hook failed")

// Hook phases
const (
	PhasePre  = "pre"
	PhasePost = "post"
)

// ============================================================================
// Hook Runner Interface
// ============================================================================

// HookRunner defines the interface for build hook execution
type HookRunner interface {
	RunHook(ctx context.Context, phase, script string) error
}

// ============================================================================
// Executor
// ============================================================================

// Executor runs build hooks with an embedded POSIX shell, so no system
// shell is required.
type Executor struct {
	// Dir is the site root and the working directory of hooks
	Dir string
	// Output is the directory pages are written to
	Output string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates an executor inheriting the process environment and stdio
func New(dir, output string) *Executor {
	return &Executor{
		Dir:    dir,
		Output: output,
		Env:    os.Environ(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// RunHook parses and runs script. The script sees SITEGEN_ROOT,
// SITEGEN_OUTPUT and SITEGEN_PHASE in its environment.
func (e *Executor) RunHook(ctx context.Context, phase, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(script), phase+"_hook")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHookFailed, phase, err)
	}

	env := append(append([]string{}, e.Env...),
		"SITEGEN_ROOT="+e.Dir,
		"SITEGEN_OUTPUT="+e.Output,
		"SITEGEN_PHASE="+phase,
	)

	runner, err := interp.New(
		interp.Dir(e.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(e.Stdin, e.Stdout, e.Stderr),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHookFailed, phase, err)
	}

	if err := runner.Run(ctx, file); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return fmt.Errorf("%w: %s: exit status %d", ErrHookFailed, phase, status)
		}
		return fmt.Errorf("%w: %s: %w", ErrHookFailed, phase, err)
	}
	return nil
}

// ============================================================================
// Opening Files
// ============================================================================

// Open starts editor on path, or the system viewer when editor is empty.
// It does not wait for the program to exit.
func Open(path, editor string) error {
	cmd := viewerCommand(path, editor)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func viewerCommand(path, editor string) *exec.Cmd {
	// allow "code --wait" style editors and quoted paths
	if fields := editorFields(editor); len(fields) > 0 {
		return exec.Command(fields[0], append(fields[1:], path)...)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default: // linux, freebsd, etc.
		return exec.Command("xdg-open", path)
	}
}

func editorFields(editor string) []string {
	fields, err := shlex.Split(editor)
	if err != nil {
		return strings.Fields(editor)
	}
	return fields
}
