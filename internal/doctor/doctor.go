// Package doctor health-checks discovered plugins by exercising their
// introspection actions and comparing the answers against the manifests.
package doctor

import (
	"context"
	"fmt"
	"sort"

	"github.com/mattjoyce/sprocket/internal/invoke"
	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

// Status is the health verdict for one plugin.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Report holds the outcome of a doctor run.
type Report struct {
	Healthy bool          `json:"healthy"`
	Plugins []PluginCheck `json:"plugins"`
}

// PluginCheck is the per-plugin result.
type PluginCheck struct {
	Plugin   string   `json:"plugin"`
	Status   Status   `json:"status"`
	Version  string   `json:"version,omitempty"`
	Actions  []string `json:"actions,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// Introspector is the slice of the invoker the doctor needs.
type Introspector interface {
	Metadata(ctx context.Context, plug *plugin.Plugin) (protocol.Metadata, error)
	Actions(ctx context.Context, plug *plugin.Plugin) (map[string]protocol.ActionSpec, error)
}

var _ Introspector = (*invoke.Invoker)(nil)

// Doctor checks plugin health via introspection.
type Doctor struct {
	registry *plugin.Registry
	invoker  Introspector
}

// New creates a Doctor from a plugin registry and an invoker.
func New(registry *plugin.Registry, invoker Introspector) *Doctor {
	return &Doctor{registry: registry, invoker: invoker}
}

// Check runs the health checks against every discovered plugin.
func (d *Doctor) Check(ctx context.Context) *Report {
	report := &Report{Healthy: true}

	for _, plug := range d.registry.All() {
		check := d.checkPlugin(ctx, plug)
		if check.Status != StatusHealthy {
			report.Healthy = false
		}
		report.Plugins = append(report.Plugins, check)
	}

	return report
}

func (d *Doctor) checkPlugin(ctx context.Context, plug *plugin.Plugin) PluginCheck {
	check := PluginCheck{Plugin: plug.Name, Status: StatusHealthy}

	meta, err := d.invoker.Metadata(ctx, plug)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Problems = append(check.Problems, fmt.Sprintf("metadata introspection failed: %v", err))
		return check
	}
	check.Version = meta.Version

	if meta.Name != plug.Name {
		check.Status = StatusUnhealthy
		check.Problems = append(check.Problems,
			fmt.Sprintf("identity mismatch: manifest says %q, plugin says %q", plug.Name, meta.Name))
	}
	if meta.Version != plug.Version {
		check.Problems = append(check.Problems,
			fmt.Sprintf("version drift: manifest says %q, plugin says %q", plug.Version, meta.Version))
	}

	catalog, err := d.invoker.Actions(ctx, plug)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Problems = append(check.Problems, fmt.Sprintf("actions introspection failed: %v", err))
		return check
	}
	for name := range catalog {
		check.Actions = append(check.Actions, name)
	}
	sort.Strings(check.Actions)

	// Manifest action lists are advisory, but a declared action the plugin
	// doesn't actually serve means the manifest is stale.
	for _, declared := range plug.Actions {
		if _, ok := catalog[declared]; !ok {
			check.Status = StatusUnhealthy
			check.Problems = append(check.Problems,
				fmt.Sprintf("manifest declares action %q but the plugin does not serve it", declared))
		}
	}

	return check
}
