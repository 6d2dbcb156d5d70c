package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base)

	assert.Equal(t, base, paths.ExecutableDir)
	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "exports"), paths.ExportsDir)
	assert.Equal(t, filepath.Join(base, "data", "cache"), paths.CacheDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)

	assert.Equal(t, filepath.Join(base, "data", "exports", "herd.csv"), paths.GetExportPath("herd.csv"))
	assert.Equal(t, filepath.Join(base, "logs", "app.log"), paths.GetLogPath("app.log"))
	assert.Equal(t, filepath.Join(base, "data", "cache", "x"), paths.GetCachePath("x"))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths := NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ExportsDir, paths.CacheDir, paths.LogsDir} {
		assert.DirExists(t, dir)
	}
}

func TestConfig_ResolvePathsOverrides(t *testing.T) {
	abs := t.TempDir()
	cfg := Default()
	cfg.Paths.DataDir = abs
	cfg.Paths.LogsDir = filepath.Join(abs, "custom-logs")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, abs, paths.DataDir)
	assert.Equal(t, filepath.Join(abs, "exports"), paths.ExportsDir)
	assert.Equal(t, filepath.Join(abs, "custom-logs"), paths.LogsDir)
}
