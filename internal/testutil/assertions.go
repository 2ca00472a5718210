package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStepRan checks text-format log output to confirm that a specific
// pipeline step completed. It relies on the attributes the executor attaches
// to its "Step finished." line rather than on the recorded commands, so it
// also covers steps that do not start a process, such as remove.
func AssertStepRan(t *testing.T, logOutput, pipeline, step string) {
	t.Helper()

	expected := fmt.Sprintf("pipeline=%s step=%s duration=", pipeline, step)
	require.True(t,
		strings.Contains(logOutput, expected),
		"expected log output for step '%s/%s' was not found in logs", pipeline, step,
	)
}

// AssertStepNotRan is the inverse of AssertStepRan.
func AssertStepNotRan(t *testing.T, logOutput, pipeline, step string) {
	t.Helper()

	unexpected := fmt.Sprintf("pipeline=%s step=%s duration=", pipeline, step)
	require.False(t,
		strings.Contains(logOutput, unexpected),
		"step '%s/%s' should not have run", pipeline, step,
	)
}
