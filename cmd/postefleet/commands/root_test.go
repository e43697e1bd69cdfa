package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_HasAllSubcommands(t *testing.T) {
	t.Parallel()
	root := Root()

	expected := []string{
		"init", "start", "stop", "start_all", "stop_all", "status",
		"build_golden", "accounts", "config", "generate_configs",
		"archive", "version", "completion",
	}
	for _, name := range expected {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %s", name)
	}
}

func TestStart_RejectsBadIndex(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"not a number", []string{"start", "abc"}},
		{"negative", []string{"start", "-5"}},
		{"missing", []string{"start"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := Root()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			assert.Error(t, root.Execute())
		})
	}
}

func TestStop_RejectsBadIndex(t *testing.T) {
	t.Parallel()
	root := Root()
	root.SetArgs([]string{"stop", "one"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestArchive_RequiresTwoArgs(t *testing.T) {
	t.Parallel()
	root := Root()
	root.SetArgs([]string{"archive", "run-1"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

func TestVersion_PrintsVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-08-27")
	cmd := Version()
	require.NotNil(t, cmd.Run)
	cmd.Run(cmd, nil)
}
