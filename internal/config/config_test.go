package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	m := NewManager()
	path := filepath.Join(t.TempDir(), "nope.yaml")
	require.NoError(t, m.Load(path))
	assert.NoError(t, m.ParseError())

	cfg := m.Get()
	assert.Equal(t, 38, cfg.Browser.NameWidth)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 15*time.Second, cfg.Search.Timeout)
	assert.Equal(t, time.Second, cfg.Search.Debounce)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, path, m.ConfigPath())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "loading must not create the file")
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
browser:
  start_dir: /tmp
  name_width: 20
preview:
  resampler: catmullrom
search:
  limit: 15
  timeout: 3s
  debounce: 250ms
history:
  enabled: true
`)
	m := NewManager()
	require.NoError(t, m.Load(path))
	require.NoError(t, m.ParseError())

	cfg := m.Get()
	assert.Equal(t, "/tmp", cfg.Browser.StartDir)
	assert.Equal(t, 20, cfg.Browser.NameWidth)
	assert.Equal(t, "catmullrom", cfg.Preview.Resampler)
	assert.Equal(t, 15, cfg.Search.Limit)
	assert.Equal(t, 3*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.True(t, cfg.History.Enabled)
	// untouched keys keep their defaults
	assert.Equal(t, 250, cfg.Preview.FrameWidth)
	assert.True(t, cfg.Ops.ConfirmDelete)
}

func TestLoad_ParseErrorFallsBackToDefaults(t *testing.T) {
	path := writeConfig(t, "browser: [unclosed\n")
	m := NewManager()
	require.NoError(t, m.Load(path))
	assert.Error(t, m.ParseError())
	assert.Equal(t, 38, m.Get().Browser.NameWidth)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GLANCE_SEARCH_LIMIT", "20")
	t.Setenv("GLANCE_HISTORY_ENABLED", "true")

	m := NewManager()
	require.NoError(t, m.Load(filepath.Join(t.TempDir(), "none.yaml")))
	cfg := m.Get()
	assert.Equal(t, 20, cfg.Search.Limit)
	assert.True(t, cfg.History.Enabled)
}

func TestLoad_NormalizesBadValues(t *testing.T) {
	path := writeConfig(t, `
browser:
  name_width: -4
search:
  limit: 0
  timeout: 0s
`)
	m := NewManager()
	require.NoError(t, m.Load(path))
	cfg := m.Get()
	assert.Equal(t, 38, cfg.Browser.NameWidth)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, 15*time.Second, cfg.Search.Timeout)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Downloads"), ExpandHome("~/Downloads"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}

func TestGenerateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glance", "config.yaml")

	backup, err := GenerateConfig(path)
	require.NoError(t, err)
	assert.Empty(t, backup)

	// The generated file round-trips through Load.
	m := NewManager()
	require.NoError(t, m.Load(path))
	require.NoError(t, m.ParseError())
	assert.Equal(t, *DefaultConfig(), m.Get())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 15s")

	require.NoError(t, os.WriteFile(path, []byte("search:\n  limit: 5\n"), 0o644))
	backup, err = GenerateConfig(path)
	require.NoError(t, err)
	require.NotEmpty(t, backup)
	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "search:\n  limit: 5\n", string(old))
}

func TestDir_HonorsXDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, filepath.Join(xdg, "glance"), Dir())
	assert.Equal(t, filepath.Join(xdg, "glance", "config.yaml"), Path())
	assert.Equal(t, filepath.Join(xdg, "glance", "history.db"), DefaultConfig().History.Path)
}

func TestDir_IgnoresRelativeXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "relative/dir")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "glance"), Dir())
}

func TestLoad_ImageLimitsAndWindow(t *testing.T) {
	path := writeConfig(t, `
preview:
  max_image_pixels: 0
gui:
  width: 0
`)
	m := NewManager()
	require.NoError(t, m.Load(path))
	cfg := m.Get()
	assert.Equal(t, int64(40_000_000), cfg.Preview.MaxImagePixels)
	assert.Equal(t, 1000, cfg.GUI.Width)
	assert.Equal(t, 640, cfg.GUI.Height)

	path = writeConfig(t, "preview:\n  max_image_pixels: -1\n")
	require.NoError(t, m.Load(path))
	assert.Equal(t, int64(-1), m.Get().Preview.MaxImagePixels)
}
