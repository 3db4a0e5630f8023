package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "insightful.json"

	// DefaultAddress is the default server listen address.
	DefaultAddress = ":8080"

	// DefaultContentDir is the default article directory.
	DefaultContentDir = "content"
)

// Config represents the complete insightful.json configuration.
type Config struct {
	// Name is the site name.
	Name string `json:"name,omitempty"`

	// Address is the server listen address.
	Address string `json:"address,omitempty"`

	// ContentDir is the directory holding article markdown files.
	ContentDir string `json:"contentDir,omitempty"`

	// Watch enables content hot reloading.
	Watch bool `json:"watch,omitempty"`

	// UI contains the URL-synchronized widget configuration.
	UI UIConfig `json:"ui,omitempty"`

	// Assets contains the S3 asset store configuration.
	Assets AssetsConfig `json:"assets,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// UIConfig configures the URL-synchronized widgets.
type UIConfig struct {
	// DefaultTab is the tab shown when the URL fragment is absent.
	DefaultTab string `json:"defaultTab,omitempty"`

	// Filters are the query keys the archive table synchronizes.
	Filters []string `json:"filters,omitempty"`

	// DefaultFilters provide values for filter keys absent from the
	// query string.
	DefaultFilters map[string]string `json:"defaultFilters,omitempty"`
}

// AssetsConfig configures the S3 asset store. Empty Bucket disables it.
type AssetsConfig struct {
	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix namespaces asset keys within the bucket.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	return &Config{
		Name:       "insightful",
		Address:    DefaultAddress,
		ContentDir: DefaultContentDir,
		Watch:      true,
		UI: UIConfig{
			DefaultTab:     "summary",
			Filters:        []string{"status", "tag"},
			DefaultFilters: map[string]string{"status": "published"},
		},
	}
}

// Load reads insightful.json from dir, searching parent directories until
// one is found. A missing file is not an error; defaults apply.
func Load(dir string) (*Config, error) {
	cfg := New()

	path, err := find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Path returns the path the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// Save writes the config to its load path, or to ConfigFileName in dir
// when it was never loaded from disk.
func (c *Config) Save(dir string) error {
	path := c.configPath
	if path == "" {
		path = filepath.Join(dir, ConfigFileName)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// find walks from dir toward the filesystem root looking for the config
// file. Returns "" when none exists.
func find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) applyDefaults() {
	d := New()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ContentDir == "" {
		c.ContentDir = d.ContentDir
	}
	if c.UI.DefaultTab == "" {
		c.UI.DefaultTab = d.UI.DefaultTab
	}
	if c.UI.Filters == nil {
		c.UI.Filters = d.UI.Filters
	}
	if c.UI.DefaultFilters == nil {
		c.UI.DefaultFilters = d.UI.DefaultFilters
	}
}
