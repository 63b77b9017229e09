package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hyperplex.log")

	logger, err := New(path, false)
	require.NoError(t, err)
	logger.Info("mission committed", zap.String("mission", "m-1"))
	logger.Debug("hidden detail")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mission committed")
	assert.Contains(t, string(data), `"mission":"m-1"`)
	assert.NotContains(t, string(data), "hidden detail")
}

func TestNewVerboseIncludesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger, err := New(path, true)
	require.NoError(t, err)
	logger.Debug("dispatch")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dispatch")
}

func TestNewEmptyPathIsNop(t *testing.T) {
	logger, err := New("", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	logger.Info("dropped")
}
