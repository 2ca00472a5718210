// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the pipeline records and their static validation.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Parallelism selects how many jobs a build step is allowed to use.
type Parallelism string

const (
	// ParallelismFixed passes a constant job count to the build tool.
	ParallelismFixed Parallelism = "fixed"
	// ParallelismCPUs passes the number of usable CPUs to the build tool.
	ParallelismCPUs Parallelism = "cpus"
	// ParallelismDefault passes nothing and lets the build tool decide.
	ParallelismDefault Parallelism = "default"
)

// DefaultJobsFlag is prepended to the job count when a build step does not
// name its own flag.
const DefaultJobsFlag = "-j"

// revisionPattern accepts full commit ids only. Branches, tags and short ids
// can float, which would break reproducibility.
var revisionPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// PlaceholderRevision marks a pipeline whose commit has not been chosen yet.
// It is a well-formed commit id, so the manifest still loads and plans, but
// RequirePinned refuses to build from it.
const PlaceholderRevision = "0000000000000000000000000000000000000000"

var (
	// ErrInvalidManifest is wrapped by every validation failure.
	ErrInvalidManifest = errors.New("invalid pipeline manifest")

	// ErrUnpinned is returned by RequirePinned for placeholder revisions.
	ErrUnpinned = errors.New("pipeline revision is a placeholder")
)

// Pipeline is one `pipeline "<name>"` block.
type Pipeline struct {
	Name       string        `hcl:"name,label"`
	Repository string        `hcl:"repository"`
	Revision   string        `hcl:"revision"`
	Directory  string        `hcl:"directory"`
	Recursive  bool          `hcl:"recursive,optional"`
	Configure  *CommandBlock `hcl:"configure,block"`
	Build      BuildBlock    `hcl:"build,block"`
	Install    CommandBlock  `hcl:"install,block"`
}

// CommandBlock is a command run from a directory inside the repository.
type CommandBlock struct {
	Dir     string         `hcl:"dir,optional"`
	Command hcl.Expression `hcl:"command"`
}

// BuildBlock is the compile step together with its parallelism policy.
type BuildBlock struct {
	Dir         string         `hcl:"dir,optional"`
	Command     hcl.Expression `hcl:"command"`
	Parallelism Parallelism    `hcl:"parallelism,optional"`
	Jobs        int            `hcl:"jobs,optional"`
	JobsFlag    string         `hcl:"jobs_flag,optional"`
}

// Validate checks the invariants of a single pipeline that can be verified
// without evaluating any expression.
func (p *Pipeline) Validate() error {
	if p.Repository == "" {
		return fmt.Errorf("%w: pipeline %q has no repository", ErrInvalidManifest, p.Name)
	}
	if p.Directory == "" {
		return fmt.Errorf("%w: pipeline %q has no directory", ErrInvalidManifest, p.Name)
	}
	// The directory is removed recursively before every clone, so it must
	// name a child of the work directory.
	if !filepath.IsLocal(p.Directory) || filepath.Clean(p.Directory) == "." {
		return fmt.Errorf("%w: pipeline %q directory %q must stay inside the work directory", ErrInvalidManifest, p.Name, p.Directory)
	}
	for block, dir := range p.blockDirs() {
		if dir != "" && !filepath.IsLocal(dir) {
			return fmt.Errorf("%w: pipeline %q %s dir %q must stay inside the repository", ErrInvalidManifest, p.Name, block, dir)
		}
	}
	if !revisionPattern.MatchString(p.Revision) {
		return fmt.Errorf("%w: pipeline %q revision %q is not a full commit id", ErrInvalidManifest, p.Name, p.Revision)
	}

	switch p.Build.Parallelism {
	case ParallelismFixed:
		if p.Build.Jobs <= 0 {
			return fmt.Errorf("%w: pipeline %q uses fixed parallelism but jobs is %d", ErrInvalidManifest, p.Name, p.Build.Jobs)
		}
	case ParallelismCPUs, ParallelismDefault:
	default:
		return fmt.Errorf("%w: pipeline %q has unknown parallelism %q", ErrInvalidManifest, p.Name, p.Build.Parallelism)
	}
	return nil
}

func (p *Pipeline) blockDirs() map[string]string {
	dirs := map[string]string{
		"build":   p.Build.Dir,
		"install": p.Install.Dir,
	}
	if p.Configure != nil {
		dirs["configure"] = p.Configure.Dir
	}
	return dirs
}

// Pinned reports whether the pipeline carries a real commit.
func (p *Pipeline) Pinned() bool {
	return p.Revision != PlaceholderRevision
}

// ApplyPins overrides pipeline revisions by pipeline name. Every override
// must name a known pipeline and be a full commit id.
func ApplyPins(pipelines []*Pipeline, pins map[string]string) error {
	byName := make(map[string]*Pipeline, len(pipelines))
	for _, p := range pipelines {
		byName[p.Name] = p
	}
	for name, rev := range pins {
		p, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: pin for unknown pipeline %q", ErrInvalidManifest, name)
		}
		rev = strings.ToLower(strings.TrimSpace(rev))
		if !revisionPattern.MatchString(rev) || rev == PlaceholderRevision {
			return fmt.Errorf("%w: pin %q for pipeline %q is not a full commit id", ErrInvalidManifest, rev, name)
		}
		p.Revision = rev
	}
	return nil
}

// RequirePinned fails with ErrUnpinned naming every pipeline still at
// PlaceholderRevision.
func RequirePinned(pipelines []*Pipeline) error {
	var unpinned []string
	for _, p := range pipelines {
		if !p.Pinned() {
			unpinned = append(unpinned, p.Name)
		}
	}
	if len(unpinned) > 0 {
		return fmt.Errorf("%w: %s (set real commits in %s or pass --pin name=<commit>)", ErrUnpinned, strings.Join(unpinned, ", "), EmbeddedName)
	}
	return nil
}

// validateAll checks each pipeline and the cross-pipeline invariants: names
// and working directories must be unique, since every pipeline owns exactly
// one directory.
func validateAll(pipelines []*Pipeline) error {
	names := make(map[string]struct{}, len(pipelines))
	dirs := make(map[string]string, len(pipelines))
	for _, p := range pipelines {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("%w: duplicate pipeline %q", ErrInvalidManifest, p.Name)
		}
		names[p.Name] = struct{}{}
		if owner, dup := dirs[p.Directory]; dup {
			return fmt.Errorf("%w: pipelines %q and %q share directory %q", ErrInvalidManifest, owner, p.Name, p.Directory)
		}
		dirs[p.Directory] = p.Name
	}
	return nil
}
