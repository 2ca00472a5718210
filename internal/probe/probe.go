// Package probe derives, once at startup, the host facts the pipelines need:
// the CUDA install root, the active interpreter's major version and the
// usable CPU count.
package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"

	"github.com/specialistvlad/gpuforge/internal/command"
	"github.com/specialistvlad/gpuforge/internal/ctxlog"
)

// NVCC is the GPU compiler whose location defines the CUDA root.
const NVCC = "nvcc"

var (
	// ErrGPUToolchainNotFound means nvcc could not be located on PATH.
	ErrGPUToolchainNotFound = errors.New("GPU toolchain not found")
	// ErrInterpreterNotFound means the Python interpreter could not be run.
	ErrInterpreterNotFound = errors.New("python interpreter not found")
)

var pythonVersionRegex = regexp.MustCompile(`Python (\d+)\.\d+`)

// LookPathFunc resolves an executable name against PATH.
type LookPathFunc func(file string) (string, error)

// Host bundles the host-facing collaborators used during probing.
type Host struct {
	Runner   command.Runner
	LookPath LookPathFunc
	NumCPU   func() int
}

// DefaultHost returns a Host backed by the real PATH and CPU count.
func DefaultHost(runner command.Runner) Host {
	return Host{
		Runner:   runner,
		LookPath: exec.LookPath,
		NumCPU:   runtime.NumCPU,
	}
}

// Environment is the result of probing. It is computed once and then passed
// explicitly to whatever needs it.
type Environment struct {
	PythonInterpreter string
	PythonMajor       int
	CUDARoot          string
	CPUs              int
}

// Probe validates the GPU toolchain first and then queries the interpreter.
func Probe(ctx context.Context, host Host, interpreter string) (*Environment, error) {
	logger := ctxlog.FromContext(ctx)

	cudaRoot, err := CUDARoot(host.LookPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("GPU toolchain located.", "cuda_root", cudaRoot)

	major, err := PythonMajor(ctx, host.Runner, interpreter)
	if err != nil {
		return nil, err
	}
	logger.Debug("Interpreter version probed.", "interpreter", interpreter, "major", major)

	cpus := 1
	if host.NumCPU != nil {
		cpus = max(host.NumCPU(), 1)
	}

	return &Environment{
		PythonInterpreter: interpreter,
		PythonMajor:       major,
		CUDARoot:          cudaRoot,
		CPUs:              cpus,
	}, nil
}

// CUDARoot locates nvcc and returns its grandparent directory, e.g.
// /usr/local/cuda for /usr/local/cuda/bin/nvcc. Symlinks are not resolved.
func CUDARoot(lookPath LookPathFunc) (string, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	nvccPath, err := lookPath(NVCC)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not on PATH: %v", ErrGPUToolchainNotFound, NVCC, err)
	}
	abs, err := filepath.Abs(nvccPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGPUToolchainNotFound, err)
	}
	return filepath.Dir(filepath.Dir(abs)), nil
}

// PythonMajor runs `<interpreter> --version` and returns the major version.
func PythonMajor(ctx context.Context, runner command.Runner, interpreter string) (int, error) {
	out, err := runner.Output(ctx, command.Cmd{Argv: []string{interpreter, "--version"}})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInterpreterNotFound, interpreter, err)
	}
	return ParsePythonMajor(string(out))
}

// ParsePythonMajor extracts the major version from interpreter output such as
// "Python 3.11.2".
func ParsePythonMajor(versionOutput string) (int, error) {
	m := pythonVersionRegex.FindStringSubmatch(versionOutput)
	if m == nil {
		return 0, fmt.Errorf("unrecognised interpreter version output %q", versionOutput)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid interpreter major version %q: %w", m[1], err)
	}
	return major, nil
}
