package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/gpuforge/internal/ctxlog"
	"github.com/specialistvlad/gpuforge/internal/executor"
	"github.com/specialistvlad/gpuforge/internal/manifest"
	"github.com/specialistvlad/gpuforge/internal/plan"
	"github.com/specialistvlad/gpuforge/internal/probe"
	"github.com/specialistvlad/gpuforge/internal/receipt"
	"github.com/specialistvlad/gpuforge/internal/render"
	"github.com/specialistvlad/gpuforge/internal/workspace"
)

// Run executes the main application logic: preflight, then every pipeline in
// order. The first failure aborts the run.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()
	ctx = ctxlog.WithLogger(ctx, a.logger.With("run_id", runID))
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.", "work_dir", a.config.WorkDir)

	pipelines, err := manifest.Load()
	if err != nil {
		return fmt.Errorf("failed to load pipelines: %w", err)
	}
	if err := manifest.ApplyPins(pipelines, a.config.Pins); err != nil {
		return err
	}
	logger.Debug("Pipelines loaded.", "count", len(pipelines), "pinned_overrides", len(a.config.Pins))

	if err := manifest.RequirePinned(pipelines); err != nil {
		if !a.config.DryRun {
			return err
		}
		logger.Warn("Plan uses placeholder revisions.", "error", err)
	}

	env, err := probe.Probe(ctx, a.host, a.config.Python)
	if err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}
	logger.Info("Preflight passed.", "python_major", env.PythonMajor, "cuda_root", env.CUDARoot, "cpus", env.CPUs)

	resolved, err := manifest.Resolve(pipelines, manifest.Variables{
		PythonInterpreter: env.PythonInterpreter,
		PythonMajor:       env.PythonMajor,
		CUDARoot:          env.CUDARoot,
		CPUs:              env.CPUs,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve pipelines: %w", err)
	}
	steps := plan.Build(a.config.WorkDir, resolved, env.CPUs)
	logger.Debug("Plan built.", "step_count", len(steps))

	if a.config.DryRun {
		return render.Plan(a.outW, steps)
	}

	lock, err := workspace.Acquire(a.config.WorkDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release work directory lock.", "error", err)
		}
	}()

	logger.Info("🚀 Starting sequential build...", "pipelines", len(resolved))
	if err := executor.New(a.host.Runner).Run(ctx, steps); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	logger.Info("🏁 All pipelines installed.", "duration", time.Since(started).Round(time.Second))

	if a.config.ReceiptPath != "" {
		r := receipt.New(runID, started, time.Now(), env, resolved)
		if err := receipt.Write(a.config.ReceiptPath, r); err != nil {
			return err
		}
		logger.Info("Receipt written.", "path", a.config.ReceiptPath)
	}

	logger.Debug("App.Run method finished.")
	return nil
}
