// Package tui implements the interactive plugin browser: a list of
// discovered plugins, with the action catalog fetched live from the selected
// plugin's introspection actions.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	actionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	paramStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// Introspector fetches a plugin's action catalog.
type Introspector interface {
	Actions(ctx context.Context, plug *plugin.Plugin) (map[string]protocol.ActionSpec, error)
}

// item adapts a discovered plugin to the bubbles list.
type item struct {
	plug *plugin.Plugin
}

func (i item) Title() string { return i.plug.Name }
func (i item) Description() string {
	return fmt.Sprintf("v%s  %s", i.plug.Version, i.plug.Description)
}
func (i item) FilterValue() string { return i.plug.Name }

// catalogMsg carries an introspection answer back into the update loop.
type catalogMsg struct {
	plugin  string
	catalog map[string]protocol.ActionSpec
	err     error
}

// Model is the BubbleTea model for the plugin browser.
type Model struct {
	plugins  list.Model
	invoker  Introspector
	selected *plugin.Plugin
	catalog  map[string]protocol.ActionSpec
	loadErr  error
	width    int
	height   int
}

// New creates a browser over the discovered plugins.
func New(plugins []*plugin.Plugin, invoker Introspector) *Model {
	items := make([]list.Item, 0, len(plugins))
	for _, p := range plugins {
		items = append(items, item{plug: p})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "sprocket plugins"
	l.SetShowStatusBar(false)

	return &Model{plugins: l, invoker: invoker}
}

func (m Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.plugins.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.selected != nil {
				m.selected = nil
				m.catalog = nil
				m.loadErr = nil
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if m.selected == nil {
				if it, ok := m.plugins.SelectedItem().(item); ok {
					m.selected = it.plug
					m.catalog = nil
					m.loadErr = nil
					return m, fetchCatalog(m.invoker, it.plug)
				}
			}
			return m, nil
		}

	case catalogMsg:
		if m.selected != nil && msg.plugin == m.selected.Name {
			m.catalog = msg.catalog
			m.loadErr = msg.err
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.plugins, cmd = m.plugins.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.selected == nil {
		return m.plugins.View()
	}
	return m.catalogView()
}

func (m Model) catalogView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s v%s", m.selected.Name, m.selected.Version)))
	b.WriteString("\n\n")

	switch {
	case m.loadErr != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("introspection failed: %v", m.loadErr)))
	case m.catalog == nil:
		b.WriteString(paramStyle.Render("loading action catalog..."))
	case len(m.catalog) == 0:
		b.WriteString(paramStyle.Render("plugin serves no actions"))
	default:
		names := make([]string, 0, len(m.catalog))
		for name := range m.catalog {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			spec := m.catalog[name]
			b.WriteString(actionStyle.Render(name))
			if spec.Description != "" {
				b.WriteString("  " + spec.Description)
			}
			b.WriteString("\n")
			b.WriteString(renderParams("inputs", spec.Inputs))
			b.WriteString(renderParams("outputs", spec.Outputs))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("esc: back  q: quit"))
	return b.String()
}

func renderParams(label string, params map[string]protocol.ParamSpec) string {
	if len(params) == 0 {
		return ""
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		spec := params[name]
		marker := ""
		if spec.Required {
			marker = " (required)"
		}
		b.WriteString(paramStyle.Render(fmt.Sprintf("  %s %s: %s%s", label, name, spec.Type, marker)))
		b.WriteString("\n")
	}
	return b.String()
}

// fetchCatalog runs introspection off the update loop.
func fetchCatalog(invoker Introspector, plug *plugin.Plugin) tea.Cmd {
	return func() tea.Msg {
		catalog, err := invoker.Actions(context.Background(), plug)
		return catalogMsg{plugin: plug.Name, catalog: catalog, err: err}
	}
}

// Run starts the browser and blocks until the user quits.
func Run(plugins []*plugin.Plugin, invoker Introspector) error {
	_, err := tea.NewProgram(New(plugins, invoker)).Run()
	return err
}
