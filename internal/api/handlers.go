package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

// handleHealthz handles GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		PluginsLoaded: len(s.registry.All()),
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleListPlugins handles GET /v1/plugins.
func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	plugins := s.registry.All()
	out := make([]PluginSummary, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, PluginSummary{
			Name:        p.Name,
			Version:     p.Version,
			Description: p.Description,
			Protocol:    p.Protocol,
			Actions:     p.Actions,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleMetadata handles GET /v1/plugins/{plugin}.
// The answer comes from the plugin's own metadata action, not the manifest.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	plug, ok := s.registry.Get(chi.URLParam(r, "plugin"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "plugin not found")
		return
	}

	meta, err := s.invoker.Metadata(r.Context(), plug)
	if err != nil {
		s.logger.Error("metadata introspection failed", "plugin", plug.Name, "error", err)
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("introspection failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, meta)
}

// handleActions handles GET /v1/plugins/{plugin}/actions.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	plug, ok := s.registry.Get(chi.URLParam(r, "plugin"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "plugin not found")
		return
	}

	catalog, err := s.invoker.Actions(r.Context(), plug)
	if err != nil {
		s.logger.Error("actions introspection failed", "plugin", plug.Name, "error", err)
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("introspection failed: %v", err))
		return
	}
	s.writeJSON(w, http.StatusOK, catalog)
}

// handleInvoke handles POST /v1/plugins/{plugin}/actions/{action}.
// The request body is the parameter object passed to the plugin on stdin.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	plug, ok := s.registry.Get(chi.URLParam(r, "plugin"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "plugin not found")
		return
	}

	action := chi.URLParam(r, "action")
	if protocol.Reserved(action) {
		s.writeError(w, http.StatusBadRequest, "reserved action; use the GET introspection endpoints")
		return
	}

	// io.EOF means no body at all; chunked requests report ContentLength -1,
	// so the decoder, not the header, decides whether params were sent.
	params := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	inv, err := s.invoker.Invoke(r.Context(), plug, action, params)
	if err != nil {
		s.logger.Error("invocation failed", "plugin", plug.Name, "action", action, "error", err)
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("invocation failed: %v", err))
		return
	}

	if s.history != nil {
		if err := s.history.Append(r.Context(), inv); err != nil {
			// History is bookkeeping; losing a record doesn't fail the call.
			s.logger.Warn("failed to record invocation", "invocation_id", inv.ID, "error", err)
		}
	}

	s.writeJSON(w, http.StatusOK, InvokeResponse{
		InvocationID: inv.ID,
		Outcome:      string(inv.Outcome),
		ExitCode:     inv.ExitCode,
		DurationMS:   inv.Duration.Milliseconds(),
		Result:       inv.Result,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
