package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_RunStreamsOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewExecRunner(&stdout, &stderr)

	err := r.Run(context.Background(), Cmd{Argv: []string{"sh", "-c", "echo out; echo err >&2"}})

	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestExecRunner_RunHonoursDir(t *testing.T) {
	dir := t.TempDir()
	r := NewExecRunner(&bytes.Buffer{}, &bytes.Buffer{})

	err := r.Run(context.Background(), Cmd{Dir: dir, Argv: []string{"touch", "marker"}})

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "marker"))
}

func TestExecRunner_OutputCombinesStreams(t *testing.T) {
	r := NewExecRunner(&bytes.Buffer{}, &bytes.Buffer{})

	// Python 2 reports its version on stderr.
	out, err := r.Output(context.Background(), Cmd{Argv: []string{"sh", "-c", "echo 'Python 2.7.18' >&2"}})

	require.NoError(t, err)
	assert.Equal(t, "Python 2.7.18\n", string(out))
}

func TestExecRunner_StdoutKeepsStderrOut(t *testing.T) {
	var stderr bytes.Buffer
	r := NewExecRunner(&bytes.Buffer{}, &stderr)

	out, err := r.Stdout(context.Background(), Cmd{Argv: []string{"sh", "-c", "echo 'warning: unsafe repository' >&2; echo abc"}})

	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(out))
	assert.Equal(t, "warning: unsafe repository\n", stderr.String())
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	r := NewExecRunner(&bytes.Buffer{}, &bytes.Buffer{})

	err := r.Run(context.Background(), Cmd{})

	require.Error(t, err)
}

func TestExitCode(t *testing.T) {
	r := NewExecRunner(&bytes.Buffer{}, &bytes.Buffer{})
	runErr := r.Run(context.Background(), Cmd{Argv: []string{"sh", "-c", "exit 3"}})
	require.Error(t, runErr)

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "child exit status", err: runErr, want: 3},
		{name: "wrapped child exit status", err: fmt.Errorf("step build: %w", runErr), want: 3},
		{name: "missing binary", err: &os.PathError{Op: "exec", Path: "nope", Err: os.ErrNotExist}, want: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestCmdString(t *testing.T) {
	c := Cmd{Argv: []string{"git", "checkout", "abc"}}
	assert.Equal(t, "git checkout abc", c.String())
}
