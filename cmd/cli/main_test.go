package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gpuforge/internal/probe"
	"github.com/specialistvlad/gpuforge/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}
	rec := &testutil.Recorder{}

	// --- Act ---
	err := run(out, args, rec)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
	require.Empty(t, rec.Calls(), "help must not start any process")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args, &testutil.Recorder{})

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_MissingNVCC(t *testing.T) {
	// --- Arrange ---
	// An empty PATH guarantees nvcc cannot be found.
	t.Setenv("PATH", t.TempDir())
	work := t.TempDir()
	rec := &testutil.Recorder{OutputFor: testutil.PythonVersion("Python 3.11.2")}

	// --- Act ---
	err := run(&bytes.Buffer{}, []string{"plan", "--workdir", work}, rec)

	// --- Assert ---
	require.ErrorIs(t, err, probe.ErrGPUToolchainNotFound)
	require.Empty(t, rec.Calls())
}

func TestRun_PlanWithFakeNVCC(t *testing.T) {
	// --- Arrange ---
	cudaRoot := t.TempDir()
	bin := filepath.Join(cudaRoot, "bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "nvcc"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", bin)
	out := &bytes.Buffer{}
	rec := &testutil.Recorder{OutputFor: testutil.PythonVersion("Python 3.10.12")}

	// --- Act ---
	err := run(out, []string{"plan", "--workdir", t.TempDir()}, rec)

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "-DCUDA_ROOT="+cudaRoot)
	require.Contains(t, out.String(), "-DPYTHON_CONFIG=python3-config")
}
