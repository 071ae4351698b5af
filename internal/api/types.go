package api

import "github.com/mattjoyce/sprocket/internal/protocol"

// HealthzResponse is the GET /healthz payload.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	PluginsLoaded int    `json:"plugins_loaded"`
}

// PluginSummary is one entry in GET /v1/plugins.
type PluginSummary struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Protocol    int      `json:"protocol"`
	Actions     []string `json:"actions,omitempty"`
}

// InvokeResponse is the POST /v1/plugins/{plugin}/actions/{action} payload.
// Outcome distinguishes the two failure tiers the protocol defines; Result
// is the plugin's response document verbatim.
type InvokeResponse struct {
	InvocationID string          `json:"invocation_id"`
	Outcome      string          `json:"outcome"`
	ExitCode     int             `json:"exit_code"`
	DurationMS   int64           `json:"duration_ms"`
	Result       protocol.Result `json:"result"`
}

// ErrorResponse is the uniform API error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
