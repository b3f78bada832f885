package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderBuildspec(t *testing.T) {
	spec, err := RenderBuildspec(BuildspecInput{})
	require.NoError(t, err)

	// Valid YAML with the four standard phases.
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(spec), &decoded))
	assert.Equal(t, "0.2", decoded["version"])
	phases := decoded["phases"].(map[string]any)
	for _, phase := range []string{"install", "pre_build", "build", "post_build"} {
		assert.Contains(t, phases, phase)
	}

	// Toolchain install pins the requested version.
	assert.Contains(t, spec, "releases.hashicorp.com/terraform/${TERRAFORM_VERSION}")

	// Source sync honors the per-request location with the bucket default.
	assert.Contains(t, spec, `${SOURCE_LOCATION:-s3://${TERRAFORM_BUCKET}/terraform/}`)

	// Every operation of the closed enum has a case arm, plus the
	// unknown-operation rejection.
	for _, op := range []string{"init)", "plan)", "apply)", "destroy)", "validate)", "output)", "state)"} {
		assert.Contains(t, spec, op)
	}
	assert.Contains(t, spec, "unknown operation: $TF_OPERATION")

	// Destructive arms re-check approval inside the job as well.
	assert.Equal(t, 2, strings.Count(spec, `"$TF_AUTO_APPROVE" != "true"`))
	assert.Contains(t, spec, "refusing to apply without TF_AUTO_APPROVE=true")
	assert.Contains(t, spec, "refusing to destroy without TF_AUTO_APPROVE=true")

	// Artifacts land at the keys the status tracker reads.
	assert.Contains(t, spec, "s3://${STATE_BUCKET}/terraform/plan.json")
	assert.Contains(t, spec, "s3://${STATE_BUCKET}/terraform/outputs.json")

	// Artifacts persist only when the build is succeeding.
	assert.Contains(t, spec, `"$CODEBUILD_BUILD_SUCCEEDING" = "1"`)
}

func TestRenderBuildspec_WorkDir(t *testing.T) {
	spec, err := RenderBuildspec(BuildspecInput{WorkDir: "/tf"})
	require.NoError(t, err)
	assert.Contains(t, spec, "mkdir -p /tf")
	assert.NotContains(t, spec, "/workspace")
}
