package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeParams reads r in full, trims surrounding whitespace, and parses the
// remainder as a JSON object. Empty input yields an empty parameter map.
//
// Malformed JSON also yields an empty map rather than an error. Hosts have
// shipped payload writers that close stdin mid-document; the compatible
// behavior is to absorb the garbage and let required-parameter validation in
// the handler report the real problem. When that happens the second return
// value is false so the caller can emit a diagnostic on a side channel.
func DecodeParams(r io.Reader) (map[string]any, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read params: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return map[string]any{}, true, nil
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(trimmed), &params); err != nil {
		return map[string]any{}, false, nil
	}
	if params == nil {
		// Input was the JSON literal "null".
		params = map[string]any{}
	}

	return params, true, nil
}

// EncodeResult serializes res as exactly one line of JSON on w. The document
// must be complete before the process exits; the host reads stdout only
// after termination.
func EncodeResult(w io.Writer, res Result) error {
	if res == nil {
		return fmt.Errorf("nil result")
	}
	return EncodeDocument(w, res)
}

// EncodeDocument serializes any response document (a Result, Metadata, or an
// action catalog) as a single line of JSON on w.
func EncodeDocument(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	return nil
}

// DecodeResult parses a plugin's stdout into a Result. Used host-side after
// the plugin process has exited.
func DecodeResult(data []byte) (Result, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("plugin produced no output on stdout")
	}

	var res Result
	if err := json.Unmarshal([]byte(trimmed), &res); err != nil {
		return nil, fmt.Errorf("plugin output is not valid JSON: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("plugin output is not a JSON object")
	}

	return res, nil
}
