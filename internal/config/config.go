// Package config provides configuration loading for pdf-layout.
// Supports YAML files, environment variables, and command-line overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a conversion run.
type Config struct {
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// RenderConfig holds page rasterization settings.
type RenderConfig struct {
	Scale float64 `yaml:"scale"` // multiple of the native 72 DPI
}

// OutputConfig holds settings for written assets and the JSON report.
type OutputConfig struct {
	ImagesDir      string `yaml:"images_dir"`
	URLPrefix      string `yaml:"url_prefix"`
	IncludeSkipped bool   `yaml:"include_skipped"`
	Indent         string `yaml:"indent"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

const maxScale = 8

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the configuration matching the documented output layout.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Scale: 2, // ~144 DPI
		},
		Output: OutputConfig{
			ImagesDir: "images",
			URLPrefix: "/uploads",
			Indent:    "  ",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Render.Scale <= 0 || c.Render.Scale > maxScale {
		return fmt.Errorf("render scale must be in (0, %d], got %g", maxScale, c.Render.Scale)
	}

	dir := strings.TrimSpace(c.Output.ImagesDir)
	if dir == "" {
		return fmt.Errorf("images_dir cannot be empty")
	}
	if strings.ContainsAny(dir, `/\`) || dir == "." || dir == ".." {
		return fmt.Errorf("images_dir must be a single directory name, got %q", dir)
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// ImageURL returns the reference emitted in the report for a written file.
func (c *Config) ImageURL(filename string) string {
	return strings.TrimRight(c.Output.URLPrefix, "/") + "/" + filename
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PDF_LAYOUT_SCALE"); v != "" {
		if scale, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Render.Scale = scale
		}
	}

	if v, ok := os.LookupEnv("PDF_LAYOUT_URL_PREFIX"); ok {
		cfg.Output.URLPrefix = v
	}

	if v := os.Getenv("PDF_LAYOUT_INCLUDE_SKIPPED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Output.IncludeSkipped = b
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
