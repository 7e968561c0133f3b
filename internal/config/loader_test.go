package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vitals/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadReadsAllFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
theme: nord
interval: 2s
interface: eth0
history: 300
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nord", cfg.Theme)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "eth0", cfg.Interface)
	assert.Equal(t, 300, cfg.History)
}

func TestLoadMergesDefaultsForAbsentKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "theme: nord\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "nord", cfg.Theme)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Empty(t, cfg.Interface)
	assert.Equal(t, DefaultHistory, cfg.History)
}

func TestLoadSubSecondInterval(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "interval: 750ms\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "theme: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
theme: gruvbox
refresh_rate: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gruvbox", cfg.Theme)
}

func TestFindExplicitPath(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "theme: nord\n")

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "not found")
}

func TestFindEnvOverride(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "theme: nord\n")
	t.Setenv(EnvConfig, path)

	found, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindEnvMissing(t *testing.T) {
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "gone.yaml"))

	_, err := Find("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvConfig)
}

func TestFindDefaultLocation(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv(EnvConfig, "")

	dir := filepath.Join(root, AppDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := writeConfig(t, dir, "theme: nord\n")

	found, err := Find("")
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindNothing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvConfig, "")

	found, err := Find("")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDefaultPathUsesConfigDir(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, AppDirName, ConfigFileName), path)
}
