package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

// fakeIntrospector serves canned introspection answers keyed by plugin name.
type fakeIntrospector struct {
	metadata map[string]protocol.Metadata
	catalogs map[string]map[string]protocol.ActionSpec
	fail     map[string]error
}

func (f *fakeIntrospector) Metadata(ctx context.Context, plug *plugin.Plugin) (protocol.Metadata, error) {
	if err := f.fail[plug.Name]; err != nil {
		return protocol.Metadata{}, err
	}
	return f.metadata[plug.Name], nil
}

func (f *fakeIntrospector) Actions(ctx context.Context, plug *plugin.Plugin) (map[string]protocol.ActionSpec, error) {
	if err := f.fail[plug.Name]; err != nil {
		return nil, err
	}
	return f.catalogs[plug.Name], nil
}

func registryWith(t *testing.T, plugs ...*plugin.Plugin) *plugin.Registry {
	t.Helper()
	reg := plugin.NewRegistry()
	for _, p := range plugs {
		if err := reg.Add(p); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestCheck_Healthy(t *testing.T) {
	reg := registryWith(t, &plugin.Plugin{
		Name: "file", Version: "1.0.0", Actions: []string{"read", "write"},
	})
	intro := &fakeIntrospector{
		metadata: map[string]protocol.Metadata{
			"file": {Name: "file", Version: "1.0.0"},
		},
		catalogs: map[string]map[string]protocol.ActionSpec{
			"file": {"read": {}, "write": {}},
		},
	}

	report := New(reg, intro).Check(context.Background())
	if !report.Healthy {
		t.Fatalf("report = %+v", report)
	}
	check := report.Plugins[0]
	if check.Status != StatusHealthy {
		t.Errorf("status = %s, problems = %v", check.Status, check.Problems)
	}
	if len(check.Actions) != 2 || check.Actions[0] != "read" {
		t.Errorf("actions = %v", check.Actions)
	}
}

func TestCheck_IdentityMismatch(t *testing.T) {
	reg := registryWith(t, &plugin.Plugin{Name: "file", Version: "1.0.0"})
	intro := &fakeIntrospector{
		metadata: map[string]protocol.Metadata{
			"file": {Name: "imposter", Version: "1.0.0"},
		},
		catalogs: map[string]map[string]protocol.ActionSpec{"file": {}},
	}

	report := New(reg, intro).Check(context.Background())
	if report.Healthy {
		t.Fatal("identity mismatch must be unhealthy")
	}
	if !hasProblem(report.Plugins[0], "identity mismatch") {
		t.Errorf("problems = %v", report.Plugins[0].Problems)
	}
}

func TestCheck_StaleManifestAction(t *testing.T) {
	reg := registryWith(t, &plugin.Plugin{
		Name: "calc", Version: "1.0.0", Actions: []string{"calculate", "integrate"},
	})
	intro := &fakeIntrospector{
		metadata: map[string]protocol.Metadata{
			"calc": {Name: "calc", Version: "1.0.0"},
		},
		catalogs: map[string]map[string]protocol.ActionSpec{
			"calc": {"calculate": {}},
		},
	}

	report := New(reg, intro).Check(context.Background())
	if report.Healthy {
		t.Fatal("stale manifest action must be unhealthy")
	}
	if !hasProblem(report.Plugins[0], `"integrate"`) {
		t.Errorf("problems = %v", report.Plugins[0].Problems)
	}
}

func TestCheck_IntrospectionFailure(t *testing.T) {
	reg := registryWith(t,
		&plugin.Plugin{Name: "good", Version: "1.0.0"},
		&plugin.Plugin{Name: "bad", Version: "1.0.0"},
	)
	intro := &fakeIntrospector{
		metadata: map[string]protocol.Metadata{"good": {Name: "good", Version: "1.0.0"}},
		catalogs: map[string]map[string]protocol.ActionSpec{"good": {}},
		fail:     map[string]error{"bad": errors.New("spawn failed")},
	}

	report := New(reg, intro).Check(context.Background())
	if report.Healthy {
		t.Fatal("one unhealthy plugin fails the report")
	}
	if len(report.Plugins) != 2 {
		t.Fatalf("plugins = %v", report.Plugins)
	}
	for _, check := range report.Plugins {
		switch check.Plugin {
		case "good":
			if check.Status != StatusHealthy {
				t.Errorf("good: %v", check.Problems)
			}
		case "bad":
			if check.Status != StatusUnhealthy {
				t.Error("bad should be unhealthy")
			}
		}
	}
}

func hasProblem(check PluginCheck, substr string) bool {
	for _, p := range check.Problems {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}
