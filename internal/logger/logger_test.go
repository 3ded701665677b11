package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	log, err := New(false, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Core().Enabled(zap.InfoLevel))

	log, err = New(true, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestJSONOutputCarriesAppAndStep(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")

	log, err := build(true, false, []string{path})
	require.NoError(t, err)

	log.Info("matching", zap.Int("jobs", 3))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &line))
	assert.Equal(t, "matching", line["step"])
	assert.Equal(t, AppName, line["app"])
	assert.Equal(t, "info", line["level"])
	assert.EqualValues(t, 3, line["jobs"])
	assert.NotContains(t, line, "caller")
}
