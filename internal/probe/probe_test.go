package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gpuforge/internal/command"
	"github.com/specialistvlad/gpuforge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeLookPath(path string, err error) LookPathFunc {
	return func(string) (string, error) { return path, err }
}

func TestParsePythonMajor(t *testing.T) {
	testCases := []struct {
		name      string
		output    string
		want      int
		expectErr bool
	}{
		{name: "python 3", output: "Python 3.11.2\n", want: 3},
		{name: "python 2 on stderr", output: "Python 2.7.18\n", want: 2},
		{name: "release candidate", output: "Python 3.13.0rc1", want: 3},
		{name: "leading noise", output: "warning: foo\nPython 3.9.1", want: 3},
		{name: "empty", output: "", expectErr: true},
		{name: "other interpreter", output: "pypy 7.3", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePythonMajor(tc.output)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCUDARoot_IsGrandparentOfNVCC(t *testing.T) {
	root, err := CUDARoot(fakeLookPath("/usr/local/cuda-12.4/bin/nvcc", nil))

	require.NoError(t, err)
	assert.Equal(t, "/usr/local/cuda-12.4", root)
}

func TestCUDARoot_NotFound(t *testing.T) {
	_, err := CUDARoot(fakeLookPath("", errors.New("executable file not found in $PATH")))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGPUToolchainNotFound)
}

func TestCUDARoot_RealPATH(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "nvcc"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", bin)

	// --- Act ---
	got, err := CUDARoot(nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestProbe(t *testing.T) {
	rec := &testutil.Recorder{OutputFor: testutil.PythonVersion("Python 3.11.2")}
	host := Host{
		Runner:   rec,
		LookPath: fakeLookPath("/opt/cuda/bin/nvcc", nil),
		NumCPU:   func() int { return 16 },
	}

	env, err := Probe(context.Background(), host, "python")

	require.NoError(t, err)
	assert.Equal(t, &Environment{
		PythonInterpreter: "python",
		PythonMajor:       3,
		CUDARoot:          "/opt/cuda",
		CPUs:              16,
	}, env)
	assert.Equal(t, []command.Cmd{{Argv: []string{"python", "--version"}}}, rec.Calls(), "the interpreter is probed exactly once")
}

func TestProbe_GPUCheckedBeforeInterpreter(t *testing.T) {
	rec := &testutil.Recorder{}
	host := Host{Runner: rec, LookPath: fakeLookPath("", errors.New("missing"))}

	_, err := Probe(context.Background(), host, "python")

	require.ErrorIs(t, err, ErrGPUToolchainNotFound)
	assert.Empty(t, rec.Calls(), "no process may start when the GPU toolchain is missing")
}

func TestProbe_InterpreterFailure(t *testing.T) {
	rec := &testutil.Recorder{FailOn: func(command.Cmd) error { return errors.New("exec: not found") }}
	host := Host{Runner: rec, LookPath: fakeLookPath("/opt/cuda/bin/nvcc", nil)}

	_, err := Probe(context.Background(), host, "python9")

	require.ErrorIs(t, err, ErrInterpreterNotFound)
	assert.Contains(t, err.Error(), "python9")
}
