package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/hyperplex/internal/config"
)

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execRootWithConfig(t, "", args...)
}

// execRootWithConfig runs the root command against a config file holding
// configYAML, or no file when configYAML is empty.
func execRootWithConfig(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o600))
	}
	t.Setenv(config.EnvLogFile, filepath.Join(dir, "test.log"))
	t.Setenv(config.EnvJournal, filepath.Join(dir, "journal.db"))
	scriptFile, journalLimit, forceInit, noDelay = "", 20, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "config.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExecCommand(t *testing.T) {
	out, err := execRoot(t, "exec", "--no-delay", "--seed", "4", "--", "run", "ship", "onboarding", "--priority=high")
	require.NoError(t, err)

	assert.Contains(t, out, "› run ship onboarding --priority=high")
	assert.Contains(t, out, "Mission accepted")
	assert.Contains(t, out, "Mission complete · HIGH")
	assert.Contains(t, out, "missions 01")
}

func TestExecScriptFile(t *testing.T) {
	script := filepath.Join(t.TempDir(), "mission.txt")
	require.NoError(t, os.WriteFile(script, []byte("# queue\nstack add later\n\nstack\nhistory\n"), 0o600))

	out, err := execRoot(t, "exec", "--no-delay", "--file", script)
	require.NoError(t, err)

	assert.Contains(t, out, "Stacked: later")
	assert.Contains(t, out, "1. later")
	assert.Contains(t, out, "No missions yet")
	assert.Equal(t, 2, strings.Count(out, strings.Repeat("─", 48)))
	assert.Contains(t, out, "stack 01")
}

func TestExecRejectsArgsWithFile(t *testing.T) {
	_, err := execRoot(t, "exec", "--file", "x.txt", "agents")
	assert.Error(t, err)
}

func TestExecToolsetToggles(t *testing.T) {
	out, err := execRoot(t, "exec", "--no-delay", "tools")
	require.NoError(t, err)
	assert.NotContains(t, out, "slack ·")
	assert.Contains(t, out, "browser ·")

	out, err = execRootWithConfig(t, "tools:\n  toolsets:\n    slack: true\n    browser: false\n",
		"exec", "--no-delay", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "slack · 1 tools")
	assert.NotContains(t, out, "browser ·")

	_, err = execRootWithConfig(t, "tools:\n  toolsets:\n    pager: true\n", "exec", "--no-delay", "tools")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pager")
}

func TestConfigInitAndShow(t *testing.T) {
	out, err := execRoot(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote ")

	out, err = execRoot(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "history_capacity: 12")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
