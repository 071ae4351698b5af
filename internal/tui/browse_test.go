package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

type fakeIntrospector struct {
	catalogs map[string]map[string]protocol.ActionSpec
	fail     map[string]bool
}

func (f *fakeIntrospector) Actions(_ context.Context, plug *plugin.Plugin) (map[string]protocol.ActionSpec, error) {
	if f.fail[plug.Name] {
		return nil, fmt.Errorf("plugin %s exploded", plug.Name)
	}
	return f.catalogs[plug.Name], nil
}

func testPlugins() []*plugin.Plugin {
	return []*plugin.Plugin{
		{Name: "file", Version: "1.0.0", Description: "File operations"},
		{Name: "calc", Version: "2.1.0", Description: "Arithmetic"},
	}
}

func TestBrowserListsPlugins(t *testing.T) {
	m := New(testPlugins(), &fakeIntrospector{})
	m.plugins.SetSize(80, 24)

	view := m.View()
	for _, want := range []string{"file", "calc"} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing plugin %q:\n%s", want, view)
		}
	}
}

func TestBrowserEnterFetchesCatalog(t *testing.T) {
	intro := &fakeIntrospector{
		catalogs: map[string]map[string]protocol.ActionSpec{
			"file": {
				"read": {
					Description: "Read file contents",
					Inputs: map[string]protocol.ParamSpec{
						"path": {Type: protocol.TypeString, Required: true},
					},
				},
			},
		},
	}

	m := New(testPlugins(), intro)
	m.plugins.SetSize(80, 24)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := next.(Model)
	if model.selected == nil || model.selected.Name != "file" {
		t.Fatalf("expected file selected, got %+v", model.selected)
	}
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}

	// Run the command synchronously and feed the message back in.
	next, _ = model.Update(cmd())
	model = next.(Model)

	view := model.View()
	for _, want := range []string{"read", "Read file contents", "path", "required"} {
		if !strings.Contains(view, want) {
			t.Errorf("catalog view missing %q:\n%s", want, view)
		}
	}
}

func TestBrowserEscReturnsToList(t *testing.T) {
	m := New(testPlugins(), &fakeIntrospector{})
	m.plugins.SetSize(80, 24)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := next.(Model)
	next, _ = model.Update(cmd())
	model = next.(Model)

	next, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = next.(Model)
	if model.selected != nil {
		t.Fatalf("expected selection cleared after esc, got %+v", model.selected)
	}
}

func TestBrowserIntrospectionFailure(t *testing.T) {
	intro := &fakeIntrospector{fail: map[string]bool{"file": true}}
	m := New(testPlugins(), intro)
	m.plugins.SetSize(80, 24)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := next.(Model)
	next, _ = model.Update(cmd())
	model = next.(Model)

	if !strings.Contains(model.View(), "introspection failed") {
		t.Errorf("expected failure message in view:\n%s", model.View())
	}
}
