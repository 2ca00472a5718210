package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/specialistvlad/gpuforge/internal/command"
)

// Recorder is a command.Runner stub. It records every invocation and never
// starts a process. Failures and outputs are programmed per test.
type Recorder struct {
	mu    sync.Mutex
	calls []command.Cmd

	// FailOn returns a non-nil error to make a Run, Output or Stdout call fail.
	FailOn func(c command.Cmd) error
	// OutputFor supplies the stdout bytes returned by Output and Stdout.
	OutputFor func(c command.Cmd) []byte
	// StderrFor supplies diagnostics the command writes to stderr. Output
	// returns them ahead of stdout; Stdout drops them.
	StderrFor func(c command.Cmd) []byte
}

// Run implements command.Runner.
func (r *Recorder) Run(_ context.Context, c command.Cmd) error {
	r.record(c)
	if r.FailOn != nil {
		return r.FailOn(c)
	}
	return nil
}

// Output implements command.Runner.
func (r *Recorder) Output(ctx context.Context, c command.Cmd) ([]byte, error) {
	stdout, err := r.Stdout(ctx, c)
	if err != nil {
		return nil, err
	}
	if r.StderrFor == nil {
		return stdout, nil
	}
	return append(r.StderrFor(c), stdout...), nil
}

// Stdout implements command.Runner.
func (r *Recorder) Stdout(_ context.Context, c command.Cmd) ([]byte, error) {
	r.record(c)
	if r.FailOn != nil {
		if err := r.FailOn(c); err != nil {
			return nil, err
		}
	}
	if r.OutputFor != nil {
		return r.OutputFor(c), nil
	}
	return nil, nil
}

func (r *Recorder) record(c command.Cmd) {
	r.mu.Lock()
	defer r.mu.Unlock()
	argv := append([]string(nil), c.Argv...)
	r.calls = append(r.calls, command.Cmd{Dir: c.Dir, Argv: argv})
}

// Calls returns a copy of the recorded invocations in call order.
func (r *Recorder) Calls() []command.Cmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]command.Cmd(nil), r.calls...)
}

// Lines renders the recorded invocations as "dir: argv" strings, which keeps
// sequence assertions readable.
func (r *Recorder) Lines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = fmt.Sprintf("%s: %s", c.Dir, c.String())
	}
	return lines
}

// Invoked reports whether any recorded call starts with the given argv prefix.
func (r *Recorder) Invoked(prefix ...string) bool {
	for _, c := range r.Calls() {
		if len(c.Argv) < len(prefix) {
			continue
		}
		if strings.Join(c.Argv[:len(prefix)], "\x00") == strings.Join(prefix, "\x00") {
			return true
		}
	}
	return false
}

// PythonVersion is an OutputFor helper that answers `--version` probes.
func PythonVersion(version string) func(c command.Cmd) []byte {
	return func(c command.Cmd) []byte {
		if len(c.Argv) == 2 && c.Argv[1] == "--version" {
			return []byte(version + "\n")
		}
		return nil
	}
}

// Heads is an OutputFor helper that answers `git rev-parse HEAD` with the
// revision registered for the call's working directory.
func Heads(byDir map[string]string) func(c command.Cmd) []byte {
	return func(c command.Cmd) []byte {
		if c.String() != "git rev-parse HEAD" {
			return nil
		}
		if rev, ok := byDir[c.Dir]; ok {
			return []byte(rev + "\n")
		}
		return nil
	}
}

// Chain combines OutputFor helpers. The first non-nil answer wins.
func Chain(fns ...func(c command.Cmd) []byte) func(c command.Cmd) []byte {
	return func(c command.Cmd) []byte {
		for _, fn := range fns {
			if out := fn(c); out != nil {
				return out
			}
		}
		return nil
	}
}

// FailWhen is a FailOn helper that fails every call whose directory and argv
// prefix match.
func FailWhen(dirSuffix string, err error, prefix ...string) func(c command.Cmd) error {
	return func(c command.Cmd) error {
		if !strings.HasSuffix(c.Dir, dirSuffix) || len(c.Argv) < len(prefix) {
			return nil
		}
		for i, p := range prefix {
			if c.Argv[i] != p {
				return nil
			}
		}
		return err
	}
}
