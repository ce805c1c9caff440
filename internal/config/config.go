// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type CatalogConfig struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

type IconsConfig struct {
	BaseURL       string        `yaml:"base_url"`
	APIKey        string        `yaml:"api_key"` // falls back to FREEPIK_API_KEY env
	ThumbnailSize int           `yaml:"thumbnail_size"`
	Limit         int           `yaml:"limit"`
	MaxAttempts   int           `yaml:"max_attempts"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	DefaultEmpty  string        `yaml:"default_empty_url"`     // API answered, zero hits
	DefaultRetry  string        `yaml:"default_exhausted_url"` // API never answered
	DownloadDir   string        `yaml:"download_dir"`          // empty disables local download
}

type RenderConfig struct {
	TemplateURL    string        `yaml:"template_url"`
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	ClipWidth      int           `yaml:"clip_width"`
	ClipHeight     int           `yaml:"clip_height"`
	Timeout        time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Path string `yaml:"path"` // course-covers JSON document
}

type OutputConfig struct {
	Dir string `yaml:"dir"` // covers land in <dir>/<lang>/<alias>.png
}

type BatchConfig struct {
	Workers        int           `yaml:"workers"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	CleanupMissing bool          `yaml:"cleanup_missing"`
}

type PreviewConfig struct {
	Addr        string `yaml:"addr"`
	TemplateDir string `yaml:"template_dir"`
}

type PathsConfig struct {
	IconsDir     string   `yaml:"icons_dir"`
	AliasSuffix  string   `yaml:"alias_suffix"`
	NameTemplate string   `yaml:"name_template"` // %s = path name
	Exclude      []string `yaml:"exclude"`       // path aliases skipped in level-1 course mode
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Catalog CatalogConfig `yaml:"catalog"`
	Icons   IconsConfig   `yaml:"icons"`
	Render  RenderConfig  `yaml:"render"`
	Store   StoreConfig   `yaml:"store"`
	Output  OutputConfig  `yaml:"output"`
	Batch   BatchConfig   `yaml:"batch"`
	Preview PreviewConfig `yaml:"preview"`
	Paths   PathsConfig   `yaml:"paths"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Output.Dir == "" {
		return nil, errors.New("output.dir is required")
	}
	if cfg.Store.Path == "" {
		return nil, errors.New("store.path is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = "https://labex.io/api/v2"
	}
	if cfg.Catalog.UserAgent == "" {
		cfg.Catalog.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Catalog.Timeout <= 0 {
		cfg.Catalog.Timeout = 15 * time.Second
	}
	if cfg.Icons.BaseURL == "" {
		cfg.Icons.BaseURL = "https://api.freepik.com/v1"
	}
	if cfg.Icons.APIKey == "" {
		cfg.Icons.APIKey = os.Getenv("FREEPIK_API_KEY")
	}
	if cfg.Icons.ThumbnailSize <= 0 {
		cfg.Icons.ThumbnailSize = 512
	}
	if cfg.Icons.Limit <= 0 {
		cfg.Icons.Limit = 20
	}
	if cfg.Icons.MaxAttempts <= 0 {
		cfg.Icons.MaxAttempts = 3
	}
	if cfg.Icons.BaseDelay <= 0 {
		cfg.Icons.BaseDelay = time.Second
	}
	if cfg.Icons.DefaultEmpty == "" {
		cfg.Icons.DefaultEmpty = "https://cdn.jsdelivr.net/gh/labex-labs/course-cover/default.png"
	}
	if cfg.Icons.DefaultRetry == "" {
		cfg.Icons.DefaultRetry = "https://cdn.jsdelivr.net/gh/labex-labs/course-cover/labex-icon-blue.png"
	}
	if cfg.Render.ViewportWidth <= 0 {
		cfg.Render.ViewportWidth = 1600
	}
	if cfg.Render.ViewportHeight <= 0 {
		cfg.Render.ViewportHeight = 900
	}
	if cfg.Render.ClipWidth <= 0 {
		cfg.Render.ClipWidth = 1400
	}
	if cfg.Render.ClipHeight <= 0 {
		cfg.Render.ClipHeight = 720
	}
	if cfg.Render.Timeout <= 0 {
		cfg.Render.Timeout = 60 * time.Second
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = 4
	}
	if cfg.Batch.MaxRetries <= 0 {
		cfg.Batch.MaxRetries = 3
	}
	if cfg.Batch.RetryDelay <= 0 {
		cfg.Batch.RetryDelay = 5 * time.Second
	}
	if cfg.Preview.Addr == "" {
		cfg.Preview.Addr = "127.0.0.1:8780"
	}
	if cfg.Preview.TemplateDir == "" {
		cfg.Preview.TemplateDir = "."
	}
	if cfg.Paths.AliasSuffix == "" {
		cfg.Paths.AliasSuffix = "-interview-questions"
	}
	if cfg.Paths.NameTemplate == "" {
		cfg.Paths.NameTemplate = "%s Interview Questions"
	}
	if cfg.Paths.IconsDir == "" {
		cfg.Paths.IconsDir = "assets/icons"
	}
	if cfg.Paths.Exclude == nil {
		cfg.Paths.Exclude = []string{"alibaba"}
	}
}
