package sdk

import (
	"fmt"

	"github.com/mattjoyce/sprocket/internal/protocol"
)

// Execute resolves an action name against the registry, runs its handler,
// and funnels every failure mode into the uniform error-shaped result. An
// unknown action is a normal, recoverable outcome, not a process failure;
// so is any error (or panic) out of a handler. Nothing that happens here
// affects the exit code.
func (p *Plugin) Execute(name string, params Params) protocol.Result {
	a, ok := p.actions[name]
	if !ok {
		err := &UnknownActionError{Action: name}
		return protocol.ErrorResult(err.Error())
	}

	res, err := invoke(a.handler, params)
	if err != nil {
		return protocol.ErrorResult(err.Error())
	}
	if res == nil {
		res = protocol.Result{}
	}
	return res
}

// invoke runs the handler, converting a panic into an ordinary error so the
// executor boundary holds even against buggy handlers.
func invoke(h Handler, params Params) (res protocol.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(params)
}
