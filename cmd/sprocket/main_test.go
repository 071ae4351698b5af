package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

// writeTestPlugin installs a shell-script plugin with a manifest under root.
func writeTestPlugin(t *testing.T, root, name, script string) {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	manifest := "name: " + name + "\nversion: 1.0.0\nprotocol: 1\nentrypoint: run.sh\ndescription: Test plugin\n"
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeTestConfig(t *testing.T, pluginRoot string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "sprocket.yaml")
	configYAML := "service:\n  log_level: ERROR\nplugin_roots:\n  - " + pluginRoot + "\n"
	if err := os.WriteFile(configPath, []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

const echoPluginScript = `#!/bin/sh
case "$1" in
metadata)
  echo '{"name": "echo", "version": "1.0.0", "description": "Test plugin"}'
  ;;
actions)
  echo '{"say": {"description": "Echo back", "inputs": {"message": {"type": "string", "required": true}}}}'
  ;;
say)
  params=$(cat)
  printf '{"echoed": %s}\n' "$params"
  ;;
*)
  printf '{"error": "Unknown action: %s"}\n' "$1"
  ;;
esac
`

func TestRunPluginListShowsDiscoveredPlugins(t *testing.T) {
	root := t.TempDir()
	writeTestPlugin(t, root, "echo", echoPluginScript)
	configPath := writeTestConfig(t, root)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runPluginList([]string{"--config", configPath})
	})
	if code != 0 {
		t.Fatalf("runPluginList() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "echo") || !strings.Contains(stdout, "v1.0.0") {
		t.Fatalf("stdout missing plugin listing: %s", stdout)
	}
}

func TestRunPluginListJSON(t *testing.T) {
	root := t.TempDir()
	writeTestPlugin(t, root, "echo", echoPluginScript)
	configPath := writeTestConfig(t, root)

	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runPluginList([]string{"--config", configPath, "--json"})
	})
	if code != 0 {
		t.Fatalf("runPluginList() code = %d", code)
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if len(entries) != 1 || entries[0]["name"] != "echo" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestRunPluginRunSuccess(t *testing.T) {
	root := t.TempDir()
	writeTestPlugin(t, root, "echo", echoPluginScript)
	configPath := writeTestConfig(t, root)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runPluginRun([]string{"echo", "say", "message=hello", "--config", configPath})
	})
	if code != 0 {
		t.Fatalf("runPluginRun() code = %d, stderr: %s", code, stderr)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	echoed, ok := result["echoed"].(map[string]any)
	if !ok || echoed["message"] != "hello" {
		t.Fatalf("expected params echoed back, got %v", result)
	}
}

func TestRunPluginRunDomainErrorExitCode(t *testing.T) {
	root := t.TempDir()
	writeTestPlugin(t, root, "echo", echoPluginScript)
	configPath := writeTestConfig(t, root)

	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runPluginRun([]string{"echo", "nope", "--config", configPath})
	})
	if code != 1 {
		t.Fatalf("expected exit 1 for domain error, got %d", code)
	}
	if !strings.Contains(stdout, "Unknown action: nope") {
		t.Fatalf("stdout missing error result: %s", stdout)
	}
}

func TestRunPluginRunUnknownPlugin(t *testing.T) {
	configPath := writeTestConfig(t, t.TempDir())

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runPluginRun([]string{"ghost", "say", "--config", configPath})
	})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "Unknown plugin: ghost") {
		t.Fatalf("stderr missing unknown plugin message: %s", stderr)
	}
}

func TestRunPluginDoctorHealthy(t *testing.T) {
	root := t.TempDir()
	writeTestPlugin(t, root, "echo", echoPluginScript)
	configPath := writeTestConfig(t, root)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runPluginDoctor([]string{"--config", configPath})
	})
	if code != 0 {
		t.Fatalf("runPluginDoctor() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "healthy") {
		t.Fatalf("stdout missing healthy status: %s", stdout)
	}
}

func TestRunVersionJSON(t *testing.T) {
	code, stdout, _ := captureOutputWithExitCode(t, func() int {
		return runVersion([]string{"--json"})
	})
	if code != 0 {
		t.Fatalf("runVersion() code = %d", code)
	}

	var info versionInfo
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}
	if info.Version == "" {
		t.Fatal("version should never be empty")
	}
}

func TestRunPluginNounActionHelp(t *testing.T) {
	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runPluginNoun([]string{"run", "--help"})
	})
	if code != 0 {
		t.Fatalf("runPluginNoun() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Usage: sprocket plugin run") {
		t.Fatalf("stdout missing action help usage: %s", stdout)
	}
}

func TestRunCLIUnknownCommand(t *testing.T) {
	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCLI([]string{"bogus"})
	})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "Unknown command: bogus") {
		t.Fatalf("stderr missing unknown command message: %s", stderr)
	}
}

func TestParseScalarValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", float64(42)},
		{"2.5", 2.5},
		{"hello", "hello"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parseScalarValue(tt.raw); got != tt.want {
			t.Errorf("parseScalarValue(%q) = %v (%T), want %v (%T)", tt.raw, got, got, tt.want, tt.want)
		}
	}
}

func TestSplitKeyValueArgs(t *testing.T) {
	positional, flags := splitKeyValueArgs([]string{"file", "read", "path=/tmp/x", "--json"})
	if len(positional) != 3 || positional[2] != "path=/tmp/x" {
		t.Fatalf("unexpected positional: %v", positional)
	}
	if len(flags) != 1 || flags[0] != "--json" {
		t.Fatalf("unexpected flags: %v", flags)
	}
}
