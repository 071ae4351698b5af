package sdk

import "fmt"

// ProtocolError is the invocation-level failure tier: the process could not
// be invoked as a plugin at all. It is the only condition that produces a
// non-zero exit code.
type ProtocolError struct {
	msg string
}

func (e *ProtocolError) Error() string {
	return e.msg
}

// errActionRequired is the single protocol failure the dispatch loop can
// produce: the process received no argument identifying an action.
var errActionRequired = &ProtocolError{msg: "action required as first argument"}

// UnknownActionError is the domain-tier failure for an action name absent
// from the registry. It surfaces via the error field with a normal exit.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("Unknown action: %s", e.Action)
}

// RequiredParamError reports an absent (or empty) required parameter. The
// message shape is part of the protocol contract: hosts grep for it.
func RequiredParamError(param string) error {
	return fmt.Errorf("%s parameter is required", param)
}
