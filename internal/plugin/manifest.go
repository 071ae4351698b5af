// Package plugin implements host-side plugin discovery: finding plugin
// directories by their manifest.yaml, validating them, and indexing them by
// name. The manifest is the host's view of a plugin; the authoritative
// action catalog still comes from the plugin's own introspection actions.
package plugin

import (
	"fmt"
	"strings"

	"github.com/mattjoyce/sprocket/internal/protocol"
)

// supportedProtocol is the argv+stdio action protocol version this host speaks.
const supportedProtocol = 1

// Manifest defines the structure of a plugin's manifest.yaml file.
type Manifest struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Protocol    int      `yaml:"protocol"`
	Entrypoint  string   `yaml:"entrypoint"`
	Description string   `yaml:"description,omitempty"`
	Actions     []string `yaml:"actions,omitempty"`
	Checksum    string   `yaml:"checksum,omitempty"` // blake3 hex of the entrypoint, verified when present
}

// Plugin represents a discovered and validated plugin.
type Plugin struct {
	Name        string   // Plugin name from manifest
	Path        string   // Absolute path to plugin directory
	Entrypoint  string   // Absolute path to entrypoint executable
	Protocol    int      // Protocol version
	Version     string   // Plugin version
	Description string   // Human-readable description
	Actions     []string // Declared action names, manifest order (advisory)
}

// DeclaresAction checks if the manifest lists a given action. A manifest
// with no actions list declares nothing; callers fall back to the plugin's
// own `actions` introspection.
func (p *Plugin) DeclaresAction(name string) bool {
	for _, a := range p.Actions {
		if a == name {
			return true
		}
	}
	return false
}

// validateManifest checks required manifest fields.
func validateManifest(m *Manifest) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}

	if m.Protocol == 0 {
		return fmt.Errorf("protocol version is required")
	}

	if m.Entrypoint == "" {
		return fmt.Errorf("entrypoint is required")
	}

	// Check for path traversal in entrypoint
	if strings.Contains(m.Entrypoint, "..") {
		return fmt.Errorf("entrypoint contains path traversal: %s", m.Entrypoint)
	}

	seen := make(map[string]struct{}, len(m.Actions))
	for _, a := range m.Actions {
		name := strings.TrimSpace(a)
		if name == "" {
			return fmt.Errorf("action name must not be empty")
		}
		if protocol.Reserved(name) {
			return fmt.Errorf("action %q is reserved for introspection", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate action %q", name)
		}
		seen[name] = struct{}{}
	}

	if m.Checksum != "" && len(m.Checksum) != 64 {
		return fmt.Errorf("checksum must be a 64-character blake3 hex digest")
	}

	return nil
}
