package sdk

import "fmt"

// Params is the parameter object decoded from stdin. The protocol layer
// imposes no shape on it; handlers pull out what they declared, and the
// accessors below produce the canonical validation errors so every plugin
// reports missing parameters the same way.
type Params map[string]any

// String returns a required string parameter. Missing, empty, and non-string
// values are all validation failures; an empty string is treated as absent,
// matching how handlers have always checked required inputs.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", RequiredParamError(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s parameter must be a string", key)
	}
	if s == "" {
		return "", RequiredParamError(key)
	}
	return s, nil
}

// StringDefault returns an optional string parameter, or def when the key is
// missing or not a string.
func (p Params) StringDefault(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// NumberDefault returns an optional numeric parameter. JSON numbers decode
// as float64.
func (p Params) NumberDefault(key string, def float64) float64 {
	if n, ok := p[key].(float64); ok {
		return n
	}
	return def
}

// IntDefault returns an optional numeric parameter truncated to an int.
func (p Params) IntDefault(key string, def int) int {
	if n, ok := p[key].(float64); ok {
		return int(n)
	}
	return def
}

// BoolDefault returns an optional boolean parameter.
func (p Params) BoolDefault(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

// ObjectDefault returns an optional object-valued parameter, or an empty map
// when the key is missing or not an object.
func (p Params) ObjectDefault(key string) map[string]any {
	if m, ok := p[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
