package manifest

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Variables are the host facts exposed to command expressions.
type Variables struct {
	PythonInterpreter string
	PythonMajor       int
	CUDARoot          string
	CPUs              int
}

// Resolved is a pipeline with every command evaluated to plain arguments.
type Resolved struct {
	Name       string
	Repository string
	Revision   string
	Directory  string
	Recursive  bool

	// Configure is nil when the pipeline has no separate configure step.
	Configure *ResolvedCommand
	Build     ResolvedBuild
	Install   ResolvedCommand
}

// ResolvedCommand is an evaluated CommandBlock.
type ResolvedCommand struct {
	Dir  string
	Argv []string
}

// ResolvedBuild is an evaluated BuildBlock.
type ResolvedBuild struct {
	ResolvedCommand
	Parallelism Parallelism
	Jobs        int
	JobsFlag    string
}

// EvalContext builds the HCL evaluation context for command expressions.
func EvalContext(vars Variables) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"python": cty.ObjectVal(map[string]cty.Value{
				"interpreter": cty.StringVal(vars.PythonInterpreter),
				"major":       cty.NumberIntVal(int64(vars.PythonMajor)),
			}),
			"cuda": cty.ObjectVal(map[string]cty.Value{
				"root": cty.StringVal(vars.CUDARoot),
			}),
			"host": cty.ObjectVal(map[string]cty.Value{
				"cpus": cty.NumberIntVal(int64(vars.CPUs)),
			}),
		},
		Functions: map[string]function.Function{
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
		},
	}
}

// Resolve evaluates the command expressions of every pipeline, preserving order.
func Resolve(pipelines []*Pipeline, vars Variables) ([]*Resolved, error) {
	evalCtx := EvalContext(vars)
	out := make([]*Resolved, 0, len(pipelines))

	for _, p := range pipelines {
		r := &Resolved{
			Name:       p.Name,
			Repository: p.Repository,
			Revision:   p.Revision,
			Directory:  p.Directory,
			Recursive:  p.Recursive,
			Build: ResolvedBuild{
				Parallelism: p.Build.Parallelism,
				Jobs:        p.Build.Jobs,
				JobsFlag:    p.Build.JobsFlag,
			},
		}

		if p.Configure != nil {
			argv, err := evalArgv(p.Configure.Command, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("pipeline %q configure: %w", p.Name, err)
			}
			r.Configure = &ResolvedCommand{Dir: p.Configure.Dir, Argv: argv}
		}

		argv, err := evalArgv(p.Build.Command, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q build: %w", p.Name, err)
		}
		r.Build.ResolvedCommand = ResolvedCommand{Dir: p.Build.Dir, Argv: argv}

		argv, err = evalArgv(p.Install.Command, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q install: %w", p.Name, err)
		}
		r.Install = ResolvedCommand{Dir: p.Install.Dir, Argv: argv}

		out = append(out, r)
	}
	return out, nil
}

// evalArgv evaluates expr to a non-empty list of strings. Numbers and bools
// are converted to their string form, the same way HCL templates render them.
func evalArgv(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]string, error) {
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}

	listTy := cty.List(cty.String)
	converted, err := convert.Convert(val, listTy)
	if err != nil {
		return nil, fmt.Errorf("command must be a list of strings: %w", err)
	}
	if converted.IsNull() || !converted.IsWhollyKnown() {
		return nil, fmt.Errorf("command must be a known, non-null list")
	}

	var argv []string
	if err := gocty.FromCtyValue(converted, &argv); err != nil {
		return nil, fmt.Errorf("failed to decode command: %w", err)
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("command is empty")
	}
	return argv, nil
}
