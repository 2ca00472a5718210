package receipt

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/gpuforge/internal/manifest"
	"github.com/specialistvlad/gpuforge/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_ProducesReadableYAML(t *testing.T) {
	// --- Arrange ---
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	env := &probe.Environment{PythonInterpreter: "python", PythonMajor: 3, CUDARoot: "/usr/local/cuda", CPUs: 8}
	pipelines := []*manifest.Resolved{
		{Name: "xgboost", Repository: "https://github.com/dmlc/xgboost", Revision: "1111111111111111111111111111111111111111", Directory: "xgboost"},
	}
	r := New("run-1", started, started.Add(time.Hour), env, pipelines)
	path := filepath.Join(t.TempDir(), DefaultFileName)

	// --- Act ---
	require.NoError(t, Write(path, r))

	// --- Assert ---
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "run_id: run-1")
	assert.Contains(t, string(raw), "revision: 1111111111111111111111111111111111111111")
	assert.Contains(t, string(raw), "python_major: 3")

	back, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestWrite_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	r := New("run-2", time.Now(), time.Now(), &probe.Environment{}, nil)

	require.NoError(t, Write(filepath.Join(dir, DefaultFileName), r))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DefaultFileName, entries[0].Name())
}

func TestWrite_MissingDirectory(t *testing.T) {
	r := New("run-3", time.Now(), time.Now(), &probe.Environment{}, nil)

	err := Write(filepath.Join(t.TempDir(), "absent", DefaultFileName), r)

	assert.Error(t, err)
}
