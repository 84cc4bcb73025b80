package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/NissesSenap/chartembed/internal/configtree"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Language string         `yaml:"language" envconfig:"LANGUAGE"`
	Strict   bool           `yaml:"strict" envconfig:"STRICT"`
	LogLevel string         `yaml:"log_level" envconfig:"LOG_LEVEL"`
	Render   Render         `yaml:"render"`
	Batch    Limits         `yaml:"batch"`
	Defaults map[string]any `yaml:"defaults,omitempty" ignored:"true"`
}

type Render struct {
	Width      string `yaml:"width" envconfig:"WIDTH"`
	Height     string `yaml:"height" envconfig:"HEIGHT"`
	DebounceMS int    `yaml:"debounce_ms" envconfig:"DEBOUNCE_MS"`
}

type Limits struct {
	DocumentsPerSecond float64 `yaml:"documents_per_second" envconfig:"DOCUMENTS_PER_SECOND"`
	MaxConcurrent      int     `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT"`
}

// ConfigPath returns the configuration file path
// Default: ~/.config/chartembed/config.yaml
func ConfigPath() string {
	if path := os.Getenv("CHARTEMBED_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "chartembed", "config.yaml")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from YAML file if exists
	configPath := ConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("CHARTEMBED", cfg); err != nil {
		return nil, err
	}

	// Process nested structs with the same prefix to support flat env var names
	if err := envconfig.Process("CHARTEMBED", &cfg.Render); err != nil {
		return nil, err
	}
	if err := envconfig.Process("CHARTEMBED", &cfg.Batch); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save() error {
	configPath := ConfigPath()

	// Create directory if not exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// LoadDefaultsFile replaces the chart defaults with the content of a YAML
// or JSON file.
func (c *Config) LoadDefaultsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("failed to parse defaults %s: %w", path, err)
	}
	c.Defaults = defaults
	return nil
}

// ChartDefaults converts the plugin-wide chart defaults into a tree. The
// result is shared by every chart and must be treated as read-only.
func (c *Config) ChartDefaults() (configtree.Mapping, error) {
	defaults, err := configtree.MappingFromAny(c.Defaults)
	if err != nil {
		return nil, fmt.Errorf("invalid chart defaults: %w", err)
	}
	return defaults, nil
}
