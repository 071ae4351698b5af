package sdk

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattjoyce/sprocket/internal/log"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

// Run performs one complete invocation: parse the action from args, read the
// parameter object from stdin, dispatch, and write exactly one JSON document
// to stdout. The return value is the process exit code: 1 only for the
// missing-action protocol failure (or an unwritable stdout), 0 for every
// other outcome including domain errors.
func (p *Plugin) Run(args []string, stdin io.Reader, stdout io.Writer) int {
	logger := log.WithPlugin(p.meta.Name)

	req, perr := readRequest(args, stdin, logger)
	if perr != nil {
		// The one failure that bypasses the executor entirely.
		if err := protocol.EncodeResult(stdout, protocol.ErrorResult(perr.Error())); err != nil {
			logger.Error("failed to write protocol error", "error", err)
		}
		return 1
	}

	var doc any
	switch req.Action {
	case protocol.ActionMetadata:
		doc = p.Metadata()
	case protocol.ActionActions:
		doc = p.Actions()
	default:
		doc = p.Execute(req.Action, Params(req.Params))
	}

	if err := protocol.EncodeDocument(stdout, doc); err != nil {
		// No document made it out; the host will see this as a failed
		// invocation, so the exit code should agree.
		logger.Error("failed to write response", "action", req.Action, "error", err)
		return 1
	}

	return 0
}

// Main runs the plugin against the real process environment and exits.
func (p *Plugin) Main() {
	os.Exit(p.Run(os.Args[1:], os.Stdin, os.Stdout))
}

// readRequest parses the invocation. The action comes verbatim from the
// first argument, case-sensitive, no normalization. Stdin is absorbed
// leniently: empty input and malformed JSON both become an empty parameter
// object, with a diagnostic on stderr for the malformed case so operator
// mistakes are at least visible somewhere.
func readRequest(args []string, stdin io.Reader, logger *slog.Logger) (*protocol.Request, *ProtocolError) {
	if len(args) < 1 {
		return nil, errActionRequired
	}

	params, clean, err := protocol.DecodeParams(stdin)
	if err != nil {
		logger.Warn("failed to read stdin, using empty params", "error", err)
		params = map[string]any{}
	} else if !clean {
		logger.Warn("malformed JSON on stdin, using empty params")
	}

	return &protocol.Request{Action: args[0], Params: params}, nil
}
