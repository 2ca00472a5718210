package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/specialistvlad/gpuforge/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_GroupsByPipeline(t *testing.T) {
	steps := []plan.Step{
		{Pipeline: "xgboost", Name: plan.StepRemove, Kind: plan.KindRemove, Path: "/w/xgboost"},
		{Pipeline: "xgboost", Name: plan.StepBuild, Kind: plan.KindExec, Dir: "/w/xgboost/build", Argv: []string{"make", "-j4"}},
		{Pipeline: "catboost", Name: plan.StepVerify, Kind: plan.KindVerifyRevision, Dir: "/w/catboost", Argv: []string{"git", "rev-parse", "HEAD"}, Revision: "abc"},
	}
	var buf bytes.Buffer

	require.NoError(t, Plan(&buf, steps))

	out := buf.String()
	assert.Contains(t, out, "1. xgboost")
	assert.Contains(t, out, "2. catboost")
	assert.Contains(t, out, "rm -rf /w/xgboost")
	assert.Contains(t, out, "make -j4")
	assert.Contains(t, out, "git rev-parse HEAD == abc")
	assert.Less(t, strings.Index(out, "xgboost"), strings.Index(out, "catboost"))
}

func TestPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Plan(&buf, nil))
	assert.Empty(t, buf.String())
}
