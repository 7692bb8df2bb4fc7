package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWorkspaceDefaultsToCwd(t *testing.T) {
	workspace = ""
	defer func() { workspace = "" }()

	ws, err := resolveWorkspace()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ws))
}

func TestResolveWorkspaceExplicit(t *testing.T) {
	dir := t.TempDir()
	workspace = dir
	defer func() { workspace = "" }()

	ws, err := resolveWorkspace()
	require.NoError(t, err)
	assert.Equal(t, dir, ws)
}

func TestResolveWorkspaceMissing(t *testing.T) {
	workspace = filepath.Join(t.TempDir(), "does-not-exist")
	defer func() { workspace = "" }()

	_, err := resolveWorkspace()
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"init", "analyze", "scaffold", "plan", "tracker", "watch", "status"} {
		assert.True(t, names[want], "command %s not registered", want)
	}
}

func TestTrackerSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range trackerCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["update"])
	assert.True(t, names["show"])
}

func TestNeedsPrompt(t *testing.T) {
	planDays, planSkill, planNoPrompt = 0, "", false
	assert.True(t, needsPrompt())

	planDays, planSkill = 5, "beginner"
	assert.False(t, needsPrompt())

	planDays, planSkill = 5, ""
	assert.True(t, needsPrompt())

	planNoPrompt = true
	assert.False(t, needsPrompt())

	planDays, planSkill, planNoPrompt = 0, "", false
}
