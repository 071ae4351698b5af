// Package sdk implements the plugin side of the subprocess invocation
// protocol: one CLI argument names an action, stdin carries a JSON parameter
// object, and exactly one JSON document comes back on stdout. A plugin binary
// builds a Plugin at process start, registers its actions, and hands control
// to Main.
package sdk

import (
	"fmt"

	"github.com/mattjoyce/sprocket/internal/protocol"
)

// Handler executes one action. It returns the success fields verbatim, or an
// error whose message becomes the response's error field. Handlers validate
// their own required parameters.
type Handler func(params Params) (protocol.Result, error)

type action struct {
	spec    protocol.ActionSpec
	handler Handler
}

// Plugin holds a plugin's immutable identity and its action registry. Both
// are built once at process start and never mutated afterwards; the process
// is single-threaded and serves exactly one request, so no synchronization
// is needed.
type Plugin struct {
	meta    protocol.Metadata
	actions map[string]action
	order   []string
}

// New creates a Plugin with the given static identity.
func New(meta protocol.Metadata) *Plugin {
	return &Plugin{
		meta:    meta,
		actions: make(map[string]action),
	}
}

// Register adds an action to the registry. Registration happens during
// process wiring, before any request is read, so misuse is a programming
// error and panics, the same way http.Handle does.
func (p *Plugin) Register(name string, spec protocol.ActionSpec, h Handler) {
	if name == "" {
		panic("sdk: action name must not be empty")
	}
	if protocol.Reserved(name) {
		panic(fmt.Sprintf("sdk: action name %q is reserved", name))
	}
	if h == nil {
		panic(fmt.Sprintf("sdk: nil handler for action %q", name))
	}
	if _, exists := p.actions[name]; exists {
		panic(fmt.Sprintf("sdk: action %q already registered", name))
	}
	p.actions[name] = action{spec: spec, handler: h}
	p.order = append(p.order, name)
}

// Metadata returns the plugin's static identity. Pure read of immutable
// data; identical for every invocation of the binary.
func (p *Plugin) Metadata() protocol.Metadata {
	meta := p.meta
	meta.Tags = append([]string(nil), p.meta.Tags...)
	return meta
}

// Actions returns the full action catalog keyed by action name.
func (p *Plugin) Actions() map[string]protocol.ActionSpec {
	catalog := make(map[string]protocol.ActionSpec, len(p.actions))
	for name, a := range p.actions {
		catalog[name] = a.spec
	}
	return catalog
}

// ActionNames returns registered action names in registration order.
func (p *Plugin) ActionNames() []string {
	return append([]string(nil), p.order...)
}
