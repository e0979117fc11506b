// Package config handles loading and saving sv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/sv/config.yaml
//   - State:  ~/.local/state/sv/ (the location file)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/slideview/pkg/format"
	"github.com/vanderheijden86/slideview/pkg/viewer"
)

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	NarrowWidth  int  `yaml:"narrow_width,omitempty"`  // Columns at or below which the sidebar is an overlay
	SidebarWidth int  `yaml:"sidebar_width,omitempty"` // Sidebar columns when open
	ShowImages   bool `yaml:"show_images"`             // Render image previews
	Markup       bool `yaml:"markup"`                  // Post-process bodies (TeX symbols, markdown)
	SidebarOpen  bool `yaml:"sidebar_open"`            // Open the sidebar on start
}

// FetchConfig bounds manifest, body and image fetches.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	Concurrency    int `yaml:"concurrency,omitempty"` // Parallel body fetches in print/export modes
}

// Config is the top-level configuration for sv.
type Config struct {
	Manifest     string          `yaml:"manifest,omitempty"`
	LocationFile string          `yaml:"location_file,omitempty"`
	Labels       format.Labels   `yaml:"labels,omitempty"`
	Messages     viewer.Messages `yaml:"messages,omitempty"`
	UI           UIConfig        `yaml:"ui,omitempty"`
	Fetch        FetchConfig     `yaml:"fetch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Manifest: "slides.json",
		Labels:   format.DefaultLabels(),
		Messages: viewer.DefaultMessages(),
		UI: UIConfig{
			NarrowWidth:  viewer.DefaultNarrowWidth,
			SidebarWidth: 28,
			ShowImages:   true,
			Markup:       true,
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 10,
			Concurrency:    4,
		},
	}
}

// ConfigDir returns the XDG config directory for sv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sv")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// normalize fills blanks left by a partial file and expands ~ in paths.
func (c *Config) normalize() {
	d := DefaultConfig()

	c.Manifest = expandHome(strings.TrimSpace(c.Manifest))
	if c.Manifest == "" {
		c.Manifest = d.Manifest
	}
	c.LocationFile = expandHome(strings.TrimSpace(c.LocationFile))
	c.Labels = c.Labels.WithDefaults()
	c.Messages = c.Messages.WithDefaults()

	if c.UI.NarrowWidth <= 0 {
		c.UI.NarrowWidth = d.UI.NarrowWidth
	}
	if c.UI.SidebarWidth < 12 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = d.Fetch.TimeoutSeconds
	}
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = d.Fetch.Concurrency
	}
}

// Timeout returns the fetch timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
