// Package config loads the host configuration for sprocket: where plugins
// live, how long an invocation may run, and where host-side surfaces
// (history log, HTTP API) keep their state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config represents the complete sprocket host configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	History HistoryConfig `yaml:"history"`
	API     APIConfig     `yaml:"api,omitempty"`

	// PluginRoots are scanned in order; duplicate plugin names keep the
	// first discovered.
	PluginRoots []string `yaml:"plugin_roots"`
}

// ServiceConfig defines core host settings.
type ServiceConfig struct {
	LogLevel      string        `yaml:"log_level"`
	InvokeTimeout time.Duration `yaml:"invoke_timeout"`
	// PIDFile guards against two hosts sharing a data directory.
	PIDFile string `yaml:"pid_file"`
}

// HistoryConfig defines invocation log storage settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	// AuthToken enables bearer-token auth when set. Use ${VAR} to keep the
	// secret out of the config file.
	AuthToken string `yaml:"auth_token"`
}

// Default returns the configuration used when no config file is given:
// plugins under ./plugins, 60s invocation timeout, history and API off.
func Default() *Config {
	return applyDefaults(&Config{})
}

// Load reads and parses configuration from a file. ${VAR} references are
// expanded from the environment before parsing.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg = applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) *Config {
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = "INFO"
	}
	if cfg.Service.InvokeTimeout <= 0 {
		cfg.Service.InvokeTimeout = 60 * time.Second
	}
	if len(cfg.PluginRoots) == 0 {
		cfg.PluginRoots = []string{"plugins"}
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		cfg.History.Path = filepath.Join("data", "history.db")
	}
	if cfg.API.Enabled && cfg.API.Listen == "" {
		cfg.API.Listen = "127.0.0.1:8137"
	}
	if cfg.Service.PIDFile == "" {
		cfg.Service.PIDFile = filepath.Join("data", "sprocket.pid")
	}
	return cfg
}

func validate(cfg *Config) error {
	for i, root := range cfg.PluginRoots {
		if root == "" {
			return fmt.Errorf("plugin_roots[%d] is empty", i)
		}
	}
	return nil
}
