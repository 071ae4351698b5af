package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func run(t *testing.T, args []string, stdin string) (int, map[string]any) {
	t.Helper()
	var stdout bytes.Buffer
	code := newPlugin().Run(args, strings.NewReader(stdin), &stdout)
	var doc map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, stdout.String())
	}
	return code, doc
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		want  float64
	}{
		{"simple addition", `{"expression": "2+2"}`, 4},
		{"precedence", `{"expression": "2 + 3 * 4"}`, 14},
		{"parentheses", `{"expression": "(2 + 3) * 4"}`, 20},
		{"default precision rounds to 2", `{"expression": "10 / 3"}`, 3.33},
		{"explicit precision", `{"expression": "10 / 3", "precision": 4}`, 3.3333},
		{"zero precision", `{"expression": "10 / 3", "precision": 0}`, 3},
		{"negative result", `{"expression": "2 - 5"}`, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, doc := run(t, []string{"calculate"}, tt.stdin)
			if code != 0 {
				t.Fatalf("exit code = %d", code)
			}
			if errMsg, ok := doc["error"]; ok {
				t.Fatalf("unexpected error: %v", errMsg)
			}
			if doc["result"] != tt.want {
				t.Errorf("result = %v, want %v", doc["result"], tt.want)
			}
		})
	}
}

func TestCalculate_EchoesExpression(t *testing.T) {
	_, doc := run(t, []string{"calculate"}, `{"expression": "2+2"}`)
	if doc["expression"] != "2+2" {
		t.Errorf("expression = %v", doc["expression"])
	}
}

func TestCalculate_Reproducible(t *testing.T) {
	_, first := run(t, []string{"calculate"}, `{"expression": "2+2"}`)
	for i := 0; i < 10; i++ {
		_, doc := run(t, []string{"calculate"}, `{"expression": "2+2"}`)
		if doc["result"] != first["result"] {
			t.Fatalf("iteration %d: result = %v, first = %v", i, doc["result"], first["result"])
		}
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		wantSub string
	}{
		{"missing expression", `{}`, "expression parameter is required"},
		{"malformed stdin treated as empty", `{"expression": `, "expression parameter is required"},
		{"identifiers rejected", `{"expression": "__import__ + 1"}`, "Invalid expression"},
		{"function calls rejected", `{"expression": "pow(2, 10)"}`, "Invalid expression"},
		{"division by zero", `{"expression": "1 / 0"}`, "division by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, doc := run(t, []string{"calculate"}, tt.stdin)
			if code != 0 {
				t.Fatalf("exit code = %d, want 0", code)
			}
			errMsg, _ := doc["error"].(string)
			if !strings.Contains(errMsg, tt.wantSub) {
				t.Errorf("error = %q, want substring %q", errMsg, tt.wantSub)
			}
		})
	}
}

func TestMetadataAction(t *testing.T) {
	code, doc := run(t, []string{"metadata"}, "")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if doc["name"] != "calc" {
		t.Errorf("name = %v", doc["name"])
	}
	tags, _ := doc["tags"].([]any)
	if len(tags) == 0 || tags[0] != "math" {
		t.Errorf("tags = %v", tags)
	}
}
