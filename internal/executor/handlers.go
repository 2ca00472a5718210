package executor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/gpuforge/internal/command"
	"github.com/specialistvlad/gpuforge/internal/plan"
	"github.com/specialistvlad/gpuforge/internal/workspace"
)

// handlerFunc executes a single step of a given kind.
type handlerFunc func(ctx context.Context, e *Executor, step plan.Step) error

func defaultHandlers() map[plan.Kind]handlerFunc {
	return map[plan.Kind]handlerFunc{
		plan.KindRemove:         runRemove,
		plan.KindExec:           runExec,
		plan.KindVerifyRevision: runVerifyRevision,
	}
}

func runRemove(_ context.Context, _ *Executor, step plan.Step) error {
	return workspace.RemoveStale(step.Path)
}

func runExec(ctx context.Context, e *Executor, step plan.Step) error {
	if step.EnsureDir {
		if err := os.MkdirAll(step.Dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", step.Dir, err)
		}
	}
	return e.runner.Run(ctx, command.Cmd{Dir: step.Dir, Argv: step.Argv})
}

func runVerifyRevision(ctx context.Context, e *Executor, step plan.Step) error {
	out, err := e.runner.Stdout(ctx, command.Cmd{Dir: step.Dir, Argv: step.Argv})
	if err != nil {
		return err
	}
	head := strings.TrimSpace(string(out))
	if head != step.Revision {
		return fmt.Errorf("%w: want %s, got %q", ErrRevisionMismatch, step.Revision, head)
	}
	return nil
}
