package sysexec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_LookPath(t *testing.T) {
	runner := NewRunner()

	assert.True(t, runner.LookPath("sh"))
	assert.False(t, runner.LookPath("definitely-not-a-real-binary-a0up"))
}

func TestExecRunner_Run(t *testing.T) {
	runner := NewRunner()

	out, err := runner.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestExecRunner_RunSurfacesToolOutput(t *testing.T) {
	runner := NewRunner()

	_, err := runner.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	// The external tool's own output rides along in the error.
	assert.Contains(t, err.Error(), "broken")
}

func TestExecRunner_Background(t *testing.T) {
	runner := NewRunner()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	pid, err := runner.Background(dir, logPath, "sh", "-c", "echo started")
	require.NoError(t, err)
	assert.Greater(t, pid, 0)

	// The log file is created eagerly, before the process writes anything.
	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

func TestExecRunner_BackgroundBadLogPath(t *testing.T) {
	runner := NewRunner()

	_, err := runner.Background(t.TempDir(), "/nonexistent-dir-a0up/out.log", "sh", "-c", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file")
}
