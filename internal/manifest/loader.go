package manifest

import (
	_ "embed"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

//go:embed pipelines.hcl
var embedded []byte

// EmbeddedName is the filename reported in diagnostics for the built-in manifest.
const EmbeddedName = "pipelines.hcl"

// fileRoot decodes all top-level blocks of a manifest file. It has no remain
// field, so unknown blocks and attributes are rejected by the decoder.
type fileRoot struct {
	Pipelines []*Pipeline `hcl:"pipeline,block"`
}

// Load parses and validates the manifest compiled into the binary.
func Load() ([]*Pipeline, error) {
	return LoadBytes(EmbeddedName, embedded)
}

// LoadBytes parses and validates a manifest from src. The returned pipelines
// keep the order in which they are declared.
func LoadBytes(filename string, src []byte) ([]*Pipeline, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, diags)
	}

	if len(root.Pipelines) == 0 {
		return nil, fmt.Errorf("%w: %s declares no pipelines", ErrInvalidManifest, filename)
	}

	for _, p := range root.Pipelines {
		if p.Build.Parallelism == "" {
			p.Build.Parallelism = ParallelismDefault
		}
		if p.Build.JobsFlag == "" {
			p.Build.JobsFlag = DefaultJobsFlag
		}
	}

	if err := validateAll(root.Pipelines); err != nil {
		return nil, err
	}
	return root.Pipelines, nil
}
