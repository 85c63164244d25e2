// Package config loads glance settings from ~/.config/glance/config.yaml,
// with GLANCE_* environment overrides. A missing file means defaults; a
// broken file also means defaults, with the parse error kept for display.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/glance/internal/debug"
)

// Config holds all user-configurable settings.
type Config struct {
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	GUI     GUIConfig     `mapstructure:"gui" yaml:"gui"`
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview"`
	Search  SearchConfig  `mapstructure:"search" yaml:"search"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Ops     OpsConfig     `mapstructure:"ops" yaml:"ops"`
}

type BrowserConfig struct {
	StartDir        string `mapstructure:"start_dir" yaml:"start_dir"`
	NameWidth       int    `mapstructure:"name_width" yaml:"name_width"`
	Watch           bool   `mapstructure:"watch" yaml:"watch"`
	WatchDebounceMs int    `mapstructure:"watch_debounce_ms" yaml:"watch_debounce_ms"`
}

type PreviewConfig struct {
	FrameWidth    int    `mapstructure:"frame_width" yaml:"frame_width"`
	FrameHeight   int    `mapstructure:"frame_height" yaml:"frame_height"`
	MaxListed     int    `mapstructure:"max_listed" yaml:"max_listed"`
	CacheEntries  int    `mapstructure:"cache_entries" yaml:"cache_entries"`
	Resampler     string `mapstructure:"resampler" yaml:"resampler"` // "lanczos" | "catmullrom"
	MaxImageBytes int64  `mapstructure:"max_image_bytes" yaml:"max_image_bytes"`

	// width*height above this is not decoded; negative disables the check
	MaxImagePixels int64 `mapstructure:"max_image_pixels" yaml:"max_image_pixels"`
}

type GUIConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

type SearchConfig struct {
	Endpoint  string        `mapstructure:"endpoint" yaml:"endpoint"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Limit     int           `mapstructure:"limit" yaml:"limit"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Debounce  time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

type OpsConfig struct {
	ConfirmDelete bool `mapstructure:"confirm_delete" yaml:"confirm_delete"`
}

// Dir is $XDG_CONFIG_HOME/glance when that is set to an absolute path, and
// ~/.config/glance otherwise, on every platform.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); filepath.IsAbs(xdg) {
		return filepath.Join(xdg, "glance")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "glance")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Browser: BrowserConfig{
			StartDir:        filepath.Join(home, "Downloads"),
			NameWidth:       38,
			Watch:           true,
			WatchDebounceMs: 200,
		},
		Preview: PreviewConfig{
			FrameWidth:     250,
			FrameHeight:    160,
			MaxListed:      10,
			CacheEntries:   64,
			Resampler:      "lanczos",
			MaxImageBytes:  64 << 20,
			MaxImagePixels: 40_000_000,
		},
		GUI: GUIConfig{
			Width:  1000,
			Height: 640,
		},
		Search: SearchConfig{
			Endpoint:  "https://en.wikipedia.org/w/api.php",
			UserAgent: "glance/1.0 (+https://github.com/justyntemme/glance)",
			Limit:     10,
			Timeout:   15 * time.Second,
			Debounce:  time.Second,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    filepath.Join(Dir(), "history.db"),
		},
		Ops: OpsConfig{
			ConfirmDelete: true,
		},
	}
}

// Manager handles loading and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // set when the file exists but could not be parsed
}

// NewManager creates a manager holding the defaults.
func NewManager() *Manager {
	return &Manager{config: DefaultConfig()}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GLANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for env overrides to reach Unmarshal.
	def := DefaultConfig()
	v.SetDefault("browser.start_dir", def.Browser.StartDir)
	v.SetDefault("browser.name_width", def.Browser.NameWidth)
	v.SetDefault("browser.watch", def.Browser.Watch)
	v.SetDefault("browser.watch_debounce_ms", def.Browser.WatchDebounceMs)
	v.SetDefault("preview.frame_width", def.Preview.FrameWidth)
	v.SetDefault("preview.frame_height", def.Preview.FrameHeight)
	v.SetDefault("preview.max_listed", def.Preview.MaxListed)
	v.SetDefault("preview.cache_entries", def.Preview.CacheEntries)
	v.SetDefault("preview.resampler", def.Preview.Resampler)
	v.SetDefault("preview.max_image_bytes", def.Preview.MaxImageBytes)
	v.SetDefault("preview.max_image_pixels", def.Preview.MaxImagePixels)
	v.SetDefault("gui.width", def.GUI.Width)
	v.SetDefault("gui.height", def.GUI.Height)
	v.SetDefault("search.endpoint", def.Search.Endpoint)
	v.SetDefault("search.user_agent", def.Search.UserAgent)
	v.SetDefault("search.limit", def.Search.Limit)
	v.SetDefault("search.timeout", def.Search.Timeout)
	v.SetDefault("search.debounce", def.Search.Debounce)
	v.SetDefault("history.enabled", def.History.Enabled)
	v.SetDefault("history.path", def.History.Path)
	v.SetDefault("ops.confirm_delete", def.Ops.ConfirmDelete)
	return v
}

// Load reads path (Path() when empty). A missing file is not an error. A
// file that fails to parse leaves the defaults in place and is reported by
// ParseError, not by Load.
func (m *Manager) Load(path string) error {
	if path == "" {
		path = Path()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.path = path
	m.parseErr = nil

	v := newViper()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		debug.Log(debug.APP, "Config: %s not found, using defaults", path)
	case err != nil:
		return fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			debug.Warn(debug.APP, "Config: parse error in %s: %v", path, err)
			m.parseErr = err
			// Env overrides still apply on top of the defaults.
			v = newViper()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		debug.Warn(debug.APP, "Config: decode error in %s: %v", path, err)
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}
	cfg.normalize()
	m.config = &cfg
	debug.Log(debug.APP, "Config: loaded %s", path)
	return nil
}

// normalize expands ~ and repairs out-of-range values.
func (c *Config) normalize() {
	def := DefaultConfig()
	c.Browser.StartDir = ExpandHome(c.Browser.StartDir)
	c.History.Path = ExpandHome(c.History.Path)
	if c.Browser.NameWidth <= 0 {
		c.Browser.NameWidth = def.Browser.NameWidth
	}
	if c.Preview.FrameWidth <= 0 || c.Preview.FrameHeight <= 0 {
		c.Preview.FrameWidth, c.Preview.FrameHeight = def.Preview.FrameWidth, def.Preview.FrameHeight
	}
	if c.Preview.MaxImagePixels == 0 {
		c.Preview.MaxImagePixels = def.Preview.MaxImagePixels
	}
	if c.GUI.Width <= 0 || c.GUI.Height <= 0 {
		c.GUI.Width, c.GUI.Height = def.GUI.Width, def.GUI.Height
	}
	if c.Preview.MaxListed <= 0 {
		c.Preview.MaxListed = def.Preview.MaxListed
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = def.Search.Limit
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = def.Search.Timeout
	}
	if c.Search.Debounce < 0 {
		c.Search.Debounce = 0
	}
}

// ExpandHome replaces a leading ~ with the home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// ConfigPath returns the file the manager last loaded.
func (m *Manager) ConfigPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// GenerateConfig backs up an existing config at path and writes a fresh
// default one. It returns the backup path, or "" when there was nothing to
// back up.
func GenerateConfig(path string) (backupPath string, err error) {
	if path == "" {
		path = Path()
	}

	if data, err := os.ReadFile(path); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(path), "config.backup."+timestamp+".yaml")
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read existing config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return backupPath, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}
	return backupPath, nil
}

// Marshal renders cfg as YAML with durations in their string form.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
