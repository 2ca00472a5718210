// Package executor runs a plan. Steps run strictly one after another; the
// first failure stops the run, leaving every directory exactly as the failing
// step left it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/gpuforge/internal/command"
	"github.com/specialistvlad/gpuforge/internal/ctxlog"
	"github.com/specialistvlad/gpuforge/internal/plan"
)

// ErrRevisionMismatch means the working tree is not at the pinned commit
// after checkout.
var ErrRevisionMismatch = errors.New("checked-out revision does not match pin")

// StepError records where a run stopped. It carries no classification: every
// failure is equally fatal.
type StepError struct {
	Pipeline string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline %s: step %s: %v", e.Pipeline, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor walks a plan using a command.Runner for every external process.
type Executor struct {
	runner   command.Runner
	handlers map[plan.Kind]handlerFunc
}

// New creates an executor with the default step handlers.
func New(runner command.Runner) *Executor {
	return &Executor{
		runner:   runner,
		handlers: defaultHandlers(),
	}
}

// Run executes steps in order and returns a *StepError for the first step that fails.
func (e *Executor) Run(ctx context.Context, steps []plan.Step) error {
	logger := ctxlog.FromContext(ctx)
	current := ""

	for _, step := range steps {
		if step.Pipeline != current {
			if current != "" {
				logger.Info("✅ Pipeline finished.", "pipeline", current)
			}
			current = step.Pipeline
			logger.Info("▶️ Starting pipeline", "pipeline", current)
		}

		if err := e.runStep(ctx, step); err != nil {
			logger.Error("Step failed, aborting run.", "pipeline", step.Pipeline, "step", step.Name, "error", err)
			return &StepError{Pipeline: step.Pipeline, Step: step.Name, Err: err}
		}
	}

	if current != "" {
		logger.Info("✅ Pipeline finished.", "pipeline", current)
	}
	return nil
}

func (e *Executor) runStep(ctx context.Context, step plan.Step) error {
	ctx = ctxlog.With(ctx, "pipeline", step.Pipeline, "step", step.Name)
	logger := ctxlog.FromContext(ctx)

	handler, ok := e.handlers[step.Kind]
	if !ok {
		return fmt.Errorf("no handler for step kind %q", step.Kind)
	}

	logger.Debug("Step started.", "kind", step.Kind, "dir", step.Dir, "argv", step.Argv)
	start := time.Now()
	if err := handler(ctx, e, step); err != nil {
		return err
	}
	logger.Info("Step finished.", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
