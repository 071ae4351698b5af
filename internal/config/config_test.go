package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
service:
  log_level: DEBUG
  invoke_timeout: 30s
plugin_roots:
  - /opt/sprocket/plugins
  - ./plugins
history:
  enabled: true
  path: /var/lib/sprocket/history.db
api:
  enabled: true
  listen: 127.0.0.1:9000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.LogLevel != "DEBUG" {
		t.Errorf("log_level = %q", cfg.Service.LogLevel)
	}
	if cfg.Service.InvokeTimeout != 30*time.Second {
		t.Errorf("invoke_timeout = %v", cfg.Service.InvokeTimeout)
	}
	if len(cfg.PluginRoots) != 2 || cfg.PluginRoots[0] != "/opt/sprocket/plugins" {
		t.Errorf("plugin_roots = %v", cfg.PluginRoots)
	}
	if !cfg.History.Enabled || cfg.History.Path != "/var/lib/sprocket/history.db" {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.API.Listen != "127.0.0.1:9000" {
		t.Errorf("api.listen = %q", cfg.API.Listen)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "service: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Service.LogLevel != "INFO" {
		t.Errorf("log_level default = %q", cfg.Service.LogLevel)
	}
	if cfg.Service.InvokeTimeout != 60*time.Second {
		t.Errorf("invoke_timeout default = %v", cfg.Service.InvokeTimeout)
	}
	if len(cfg.PluginRoots) != 1 || cfg.PluginRoots[0] != "plugins" {
		t.Errorf("plugin_roots default = %v", cfg.PluginRoots)
	}
	if cfg.History.Enabled || cfg.API.Enabled {
		t.Error("history and api should default to disabled")
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("SPROCKET_TEST_ROOT", "/tmp/roots/a")

	path := writeConfig(t, `
plugin_roots:
  - ${SPROCKET_TEST_ROOT}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PluginRoots[0] != "/tmp/roots/a" {
		t.Errorf("plugin_roots = %v", cfg.PluginRoots)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "plugin_roots: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Service.InvokeTimeout != 60*time.Second {
		t.Errorf("invoke_timeout = %v", cfg.Service.InvokeTimeout)
	}
	if cfg.Service.PIDFile != filepath.Join("data", "sprocket.pid") {
		t.Errorf("pid_file = %q", cfg.Service.PIDFile)
	}
	if len(cfg.PluginRoots) == 0 {
		t.Error("expected default plugin root")
	}
}
