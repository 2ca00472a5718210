// Package receipt writes the record of a successful run: which commits were
// built, against which toolchain, and when.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/gpuforge/internal/manifest"
	"github.com/specialistvlad/gpuforge/internal/probe"
)

// Version is the receipt format version.
const Version = 1

// DefaultFileName is used when the receipt path is derived from the work directory.
const DefaultFileName = "gpuforge-receipt.yaml"

// Receipt is the YAML document written after all pipelines have been installed.
type Receipt struct {
	Version    int           `yaml:"version"`
	RunID      string        `yaml:"run_id"`
	StartedAt  time.Time     `yaml:"started_at"`
	FinishedAt time.Time     `yaml:"finished_at"`
	Host       Host          `yaml:"host"`
	Pipelines  []PipelineRef `yaml:"pipelines"`
}

// Host captures the probed environment the pipelines were built against.
type Host struct {
	PythonInterpreter string `yaml:"python_interpreter"`
	PythonMajor       int    `yaml:"python_major"`
	CUDARoot          string `yaml:"cuda_root"`
	CPUs              int    `yaml:"cpus"`
}

// PipelineRef identifies one installed project.
type PipelineRef struct {
	Name       string `yaml:"name"`
	Repository string `yaml:"repository"`
	Revision   string `yaml:"revision"`
	Directory  string `yaml:"directory"`
}

// New assembles a receipt from the run's inputs.
func New(runID string, started, finished time.Time, env *probe.Environment, pipelines []*manifest.Resolved) *Receipt {
	r := &Receipt{
		Version:    Version,
		RunID:      runID,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Host: Host{
			PythonInterpreter: env.PythonInterpreter,
			PythonMajor:       env.PythonMajor,
			CUDARoot:          env.CUDARoot,
			CPUs:              env.CPUs,
		},
	}
	for _, p := range pipelines {
		r.Pipelines = append(r.Pipelines, PipelineRef{
			Name:       p.Name,
			Repository: p.Repository,
			Revision:   p.Revision,
			Directory:  p.Directory,
		})
	}
	return r
}

// Write stores the receipt at path, replacing any previous one atomically.
func Write(path string, r *Receipt) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".receipt-*")
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move receipt into place: %w", err)
	}
	return nil
}

// Read loads a receipt written by Write.
func Read(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Receipt
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode receipt %s: %w", path, err)
	}
	return &r, nil
}
