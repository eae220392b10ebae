// Package config loads repair planner configuration from a YAML file with
// environment-variable overrides for secrets and deployment knobs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all repair planner configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the model invocation service.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int32  `yaml:"max_output_tokens"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:           "gemini-2.5-flash",
			Timeout:         "2m",
			MaxOutputTokens: 8192,
		},
		Store: StoreConfig{
			DatabasePath: "repairplanner.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path (optional; pass "" to skip), then
// applies environment overrides. A missing file is not an error; a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env overrides.
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values.
// REPAIRPLANNER_API_KEY takes precedence over GEMINI_API_KEY.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("REPAIRPLANNER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("REPAIRPLANNER_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("REPAIRPLANNER_DB"); v != "" {
		c.Store.DatabasePath = v
	}
	if v := os.Getenv("REPAIRPLANNER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// TimeoutDuration parses the configured LLM timeout, falling back to two
// minutes on a missing or malformed value.
func (c *LLMConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}
