// Package config loads testwatch configuration from .testwatch/config.yaml.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete testwatch configuration
type Config struct {
	Version  int    `json:"version" yaml:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" yaml:"repoRoot" mapstructure:"repoRoot"`

	SourceRoots []string         `json:"sourceRoots" yaml:"sourceRoots" mapstructure:"sourceRoots"`
	Watch       WatchConfig      `json:"watch" yaml:"watch" mapstructure:"watch"`
	Activation  ActivationConfig `json:"activation" yaml:"activation" mapstructure:"activation"`
	History     HistoryConfig    `json:"history" yaml:"history" mapstructure:"history"`
	Logging     LoggingConfig    `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// WatchConfig contains watch supervision configuration
type WatchConfig struct {
	// DefaultTarget is used when the requested target is not in Targets
	DefaultTarget string `json:"defaultTarget" yaml:"defaultTarget" mapstructure:"defaultTarget"`

	// Targets maps a target name to the shell command spawning the test tool
	// in continuous mode
	Targets map[string]string `json:"targets" yaml:"targets" mapstructure:"targets"`

	// InitialRunTimeoutMs bounds the single-shot run performed before
	// entering continuous mode
	InitialRunTimeoutMs int `json:"initialRunTimeoutMs" yaml:"initialRunTimeoutMs" mapstructure:"initialRunTimeoutMs"`
}

// ActivationConfig contains activation heuristic configuration
type ActivationConfig struct {
	WindowMinutes int      `json:"windowMinutes" yaml:"windowMinutes" mapstructure:"windowMinutes"`
	Keywords      []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

// HistoryConfig contains session history configuration
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:     1,
		RepoRoot:    ".",
		SourceRoots: []string{"src", "lib", "app", "test", "tests"},
		Watch: WatchConfig{
			DefaultTarget: "unit",
			Targets: map[string]string{
				"unit":        "npx vitest --watch",
				"integration": "npx vitest --watch --config vitest.integration.config.ts",
			},
			InitialRunTimeoutMs: 120000,
		},
		Activation: ActivationConfig{
			WindowMinutes: 30,
			Keywords: []string{
				"test", "tests", "testing", "spec", "jest", "vitest",
				"watch mode", "failing", "passed", "failed", "coverage", "tdd",
			},
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".testwatch/history.db",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .testwatch/config.yaml.
// A missing config file yields the defaults; environment variables with the
// TESTWATCH_ prefix override file values.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("repoRoot", repoRoot)
	v.SetDefault("sourceRoots", defaults.SourceRoots)
	v.SetDefault("watch.defaultTarget", defaults.Watch.DefaultTarget)
	v.SetDefault("watch.targets", defaults.Watch.Targets)
	v.SetDefault("watch.initialRunTimeoutMs", defaults.Watch.InitialRunTimeoutMs)
	v.SetDefault("activation.windowMinutes", defaults.Activation.WindowMinutes)
	v.SetDefault("activation.keywords", defaults.Activation.Keywords)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(repoRoot, ".testwatch"))
	v.SetEnvPrefix("TESTWATCH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file: defaults apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.RepoRoot == "" {
		cfg.RepoRoot = repoRoot
	}

	return &cfg, nil
}

// Save writes the configuration to .testwatch/config.yaml
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".testwatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Watch.DefaultTarget == "" {
		return &ConfigError{Field: "watch.defaultTarget", Message: "default target must be set"}
	}
	if len(c.Watch.Targets) == 0 {
		return &ConfigError{Field: "watch.targets", Message: "at least one watch target is required"}
	}
	if _, ok := c.Watch.Targets[c.Watch.DefaultTarget]; !ok {
		return &ConfigError{Field: "watch.defaultTarget", Message: "default target is not in watch.targets"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
