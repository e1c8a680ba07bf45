package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	log := NewIsolatedLogger(path)

	log.Info("Prober", "Relay is ready", map[string]interface{}{"attempts": 2})
	log.Debug("Prober", "debug lines are below the file level", nil)
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"message":"Relay is ready"`)
	assert.Contains(t, lines[0], `"module":"Prober"`)
	assert.Contains(t, lines[0], `"level":"INFO"`)
}

func TestNopLoggerAcceptsNilDetails(t *testing.T) {
	log := NewNopLogger()
	log.Error("Test", "nothing happens", nil)
	assert.NoError(t, log.Sync())
}
