// Package plan expands resolved pipelines into the flat, ordered list of
// steps the executor walks through.
package plan

import (
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/gpuforge/internal/manifest"
)

// Kind selects the handler that executes a step.
type Kind string

const (
	// KindRemove deletes Path if it exists.
	KindRemove Kind = "remove"
	// KindExec runs Argv in Dir.
	KindExec Kind = "exec"
	// KindVerifyRevision runs Argv in Dir and compares its output to Revision.
	KindVerifyRevision Kind = "verify-revision"
)

// Step names, in the order they appear within a pipeline.
const (
	StepRemove    = "remove"
	StepClone     = "clone"
	StepCheckout  = "checkout"
	StepVerify    = "verify"
	StepConfigure = "configure"
	StepBuild     = "build"
	StepInstall   = "install"
)

// Step is one unit of work. Every field is fully resolved.
type Step struct {
	Pipeline string
	Name     string
	Kind     Kind

	// Dir is the working directory for exec and verify steps.
	Dir  string
	Argv []string
	// EnsureDir asks the executor to create Dir before running Argv.
	EnsureDir bool

	// Path is the target of a remove step.
	Path string
	// Revision is the expected commit for a verify step.
	Revision string
}

// Build lays out the steps of every pipeline, in pipeline order, rooted at workDir.
func Build(workDir string, pipelines []*manifest.Resolved, cpus int) []Step {
	var steps []Step
	for _, p := range pipelines {
		steps = append(steps, pipelineSteps(workDir, p, cpus)...)
	}
	return steps
}

func pipelineSteps(workDir string, p *manifest.Resolved, cpus int) []Step {
	repoDir := filepath.Join(workDir, p.Directory)

	clone := []string{"git", "clone"}
	if p.Recursive {
		clone = append(clone, "--recursive")
	}
	clone = append(clone, p.Repository, p.Directory)

	steps := []Step{
		{Pipeline: p.Name, Name: StepRemove, Kind: KindRemove, Path: repoDir},
		{Pipeline: p.Name, Name: StepClone, Kind: KindExec, Dir: workDir, Argv: clone},
		{Pipeline: p.Name, Name: StepCheckout, Kind: KindExec, Dir: repoDir, Argv: []string{"git", "checkout", p.Revision}},
		{Pipeline: p.Name, Name: StepVerify, Kind: KindVerifyRevision, Dir: repoDir, Argv: []string{"git", "rev-parse", "HEAD"}, Revision: p.Revision},
	}

	if p.Configure != nil {
		steps = append(steps, Step{
			Pipeline:  p.Name,
			Name:      StepConfigure,
			Kind:      KindExec,
			Dir:       filepath.Join(repoDir, p.Configure.Dir),
			Argv:      copyArgv(p.Configure.Argv),
			EnsureDir: true,
		})
	}

	buildArgv := copyArgv(p.Build.Argv)
	if jobs := Jobs(p.Build.Parallelism, p.Build.Jobs, cpus); jobs > 0 {
		buildArgv = append(buildArgv, fmt.Sprintf("%s%d", p.Build.JobsFlag, jobs))
	}
	steps = append(steps,
		Step{
			Pipeline: p.Name,
			Name:     StepBuild,
			Kind:     KindExec,
			Dir:      filepath.Join(repoDir, p.Build.Dir),
			Argv:     buildArgv,
		},
		Step{
			Pipeline: p.Name,
			Name:     StepInstall,
			Kind:     KindExec,
			Dir:      filepath.Join(repoDir, p.Install.Dir),
			Argv:     copyArgv(p.Install.Argv),
		},
	)
	return steps
}

// Jobs returns the worker count passed to the build tool, or 0 when the tool
// should use its own default.
func Jobs(policy manifest.Parallelism, fixed, cpus int) int {
	switch policy {
	case manifest.ParallelismFixed:
		return fixed
	case manifest.ParallelismCPUs:
		return max(cpus, 1)
	default:
		return 0
	}
}

func copyArgv(argv []string) []string {
	return append([]string(nil), argv...)
}
