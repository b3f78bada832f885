package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraops-io/terraops/internal/mutate"
)

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "simple pairs",
			input: []string{"region=us-west-2", "instance_type=t3.small"},
			want:  map[string]string{"region": "us-west-2", "instance_type": "t3.small"},
		},
		{
			name:  "value containing equals",
			input: []string{"tags=env=prod"},
			want:  map[string]string{"tags": "env=prod"},
		},
		{
			name:  "empty value allowed",
			input: []string{"suffix="},
			want:  map[string]string{"suffix": ""},
		},
		{name: "none", input: nil, want: nil},
		{name: "missing separator", input: []string{"region"}, wantErr: true},
		{name: "empty key", input: []string{"=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVars(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("TERRAFORM_BUCKET", "env-source")
	t.Setenv("STATE_BUCKET", "env-state")

	flagSourceBucket = "flag-source"
	flagRegion = "eu-central-1"
	defer func() {
		flagSourceBucket = ""
		flagRegion = ""
	}()

	cfg := loadConfig()
	assert.Equal(t, "flag-source", cfg.SourceBucket)
	assert.Equal(t, "env-state", cfg.StateBucket)
	assert.Equal(t, "eu-central-1", cfg.Region)
}

func TestReadChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changes.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`[{"file": "main.tf", "action": "replace", "old_content": "a", "content": "b"}]`), 0o644))

	changes, err := readChanges(path)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "main.tf", changes[0].File)
	assert.Equal(t, mutate.ActionReplace, changes[0].Action)

	_, err = readChanges("")
	assert.Error(t, err)

	_, err = readChanges(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
