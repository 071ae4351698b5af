package protocol

// ParamType enumerates the advisory value types a parameter spec may declare.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
)

// Metadata is a plugin's static identity record. It is built once at process
// start and is identical for every invocation of that plugin binary.
type Metadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
}

// ParamSpec describes one input or output field of an action. Specs are
// advisory metadata only; the protocol layer never enforces them. Handlers
// enforce "required" themselves.
type ParamSpec struct {
	Type        ParamType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Default     any       `json:"default,omitempty"`
	Description string    `json:"description"`
}

// ActionSpec declares one named action: what it does and the shape of its
// inputs and outputs. The set of ActionSpecs keyed by action name forms the
// plugin's action catalog.
type ActionSpec struct {
	Description string               `json:"description"`
	Inputs      map[string]ParamSpec `json:"inputs"`
	Outputs     map[string]ParamSpec `json:"outputs"`
}

// Request is one parsed invocation: the action named by the first process
// argument plus the parameter object read from stdin.
type Request struct {
	Action string
	Params map[string]any
}

// Result is the single JSON document a plugin writes to stdout. On success
// its fields are whatever the handler returned; on failure it has exactly
// one field, "error".
type Result map[string]any

// errorKey is the one fixed field name of the error result shape.
const errorKey = "error"

// ErrorResult builds the uniform error-shaped result.
func ErrorResult(msg string) Result {
	return Result{errorKey: msg}
}

// IsError reports whether r carries an error field.
func (r Result) IsError() bool {
	_, ok := r[errorKey]
	return ok
}

// ErrorMessage returns the error field as a string, or "" if r is not an
// error result.
func (r Result) ErrorMessage() string {
	v, ok := r[errorKey]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Reserved action names. Both bypass the executor entirely and read the
// immutable descriptor data.
const (
	ActionMetadata = "metadata"
	ActionActions  = "actions"
)

// Reserved reports whether name is one of the introspection actions.
func Reserved(name string) bool {
	return name == ActionMetadata || name == ActionActions
}
