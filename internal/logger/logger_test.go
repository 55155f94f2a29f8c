package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestLogger points the logger at a temp file and registers cleanup.
func setupTestLogger(t *testing.T) string {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, Init(path))
	return path
}

// TestStructuredLogging verifies that attributes land in the log file in
// slog's key=value text format.
func TestStructuredLogging(t *testing.T) {
	path := setupTestLogger(t)

	Get().Info("ports allocated", "key", "demo/swift-falcon", "count", 5)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ports allocated")
	assert.Contains(t, string(content), "key=demo/swift-falcon")
	assert.Contains(t, string(content), "count=5")
}

// TestWithComponent verifies the component tag is attached to every record.
func TestWithComponent(t *testing.T) {
	path := setupTestLogger(t)

	WithComponent("port").Info("stale entry removed")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "component=port")
}

// TestSetDebug verifies debug records are suppressed by default and
// emitted once --verbose raises the level.
func TestSetDebug(t *testing.T) {
	path := setupTestLogger(t)

	Get().Debug("hidden")
	SetDebug(true)
	Get().Debug("visible")
	SetDebug(false)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "visible")
}

// TestInit_Twice verifies the second Init is a harmless no-op.
func TestInit_Twice(t *testing.T) {
	path := setupTestLogger(t)
	require.NoError(t, Init(filepath.Join(t.TempDir(), "other.log")))

	Get().Info("still here")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "still here", "records should go to the first path")
}
