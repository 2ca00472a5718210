// Package command is the thin boundary between gpuforge and the external
// tools it drives (git, cmake, make, ya, python). Everything above this
// package talks to the Runner interface so that tests can substitute a
// recording stub for real processes.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes a single external process invocation.
type Cmd struct {
	// Dir is the working directory. Empty means the current directory.
	Dir  string
	Argv []string
}

// String renders the command the way it would be typed in a shell.
func (c Cmd) String() string {
	return strings.Join(c.Argv, " ")
}

// Runner executes external commands, blocking until they exit.
type Runner interface {
	// Run executes the command, streaming its output.
	Run(ctx context.Context, c Cmd) error
	// Output executes the command and returns its combined stdout and stderr.
	Output(ctx context.Context, c Cmd) ([]byte, error)
	// Stdout executes the command and returns only its stdout. Stderr is
	// streamed like Run does.
	Stdout(ctx context.Context, c Cmd) ([]byte, error)
}

// ExecRunner is the os/exec backed Runner used in production.
type ExecRunner struct {
	Out    io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner that streams child output to the given writers.
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{Out: stdout, Stderr: stderr}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Cmd) error {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return err
	}
	cmd.Stdout = r.Out
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q failed: %w", c.String(), err)
	}
	return nil
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, c Cmd) ([]byte, error) {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.Bytes(), fmt.Errorf("command %q failed: %w", c.String(), err)
	}
	return buf.Bytes(), nil
}

// Stdout implements Runner.
func (r *ExecRunner) Stdout(ctx context.Context, c Cmd) ([]byte, error) {
	cmd, err := r.command(ctx, c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return buf.Bytes(), fmt.Errorf("command %q failed: %w", c.String(), err)
	}
	return buf.Bytes(), nil
}

func (r *ExecRunner) command(ctx context.Context, c Cmd) (*exec.Cmd, error) {
	if len(c.Argv) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	return cmd, nil
}

// ExitCode reports the process exit status carried by err. It returns 0 for a
// nil error and 1 when err does not originate from an exited child process.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
