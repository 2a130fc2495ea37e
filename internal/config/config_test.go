package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSprintCount, cfg.SprintCount)
	assert.True(t, cfg.ConfirmOverallocation)
	assert.False(t, cfg.LegacySprintOrder)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SPRINTPLAN_SPRINT_COUNT", "26")
	t.Setenv("SPRINTPLAN_LEGACY_SPRINT_ORDER", "true")
	t.Setenv("SPRINTPLAN_CALLER_ID", "mgr")

	cfg := DefaultConfig()
	assert.Equal(t, 26, cfg.SprintCount)
	assert.True(t, cfg.LegacySprintOrder)
	assert.Equal(t, "mgr", cfg.CallerID)
}

func TestFileOverridesEnvironment(t *testing.T) {
	t.Setenv("SPRINTPLAN_LOG_LEVEL", "WARN")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: DEBUG\nsprint_count: 12\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 12, cfg.SprintCount)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.CallerID = "lead-7"
	cfg.DBPath = "/tmp/plan.db"
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sprint_count: 0\n"), 0644))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "sprint_count")

	require.NoError(t, os.WriteFile(path, []byte("sprint_count: [\n"), 0644))
	_, err = LoadFrom(path)
	assert.ErrorContains(t, err, "failed to parse config")
}
