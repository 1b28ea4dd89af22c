package handlers

import (
	"encoding/json"
	"net/http"

	"ollama-relay/internal/contextutil"
)

// HealthHandler reports that the process is up. It does not probe the inference service.
type HealthHandler struct{}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Always "ok"
	Status string `json:"status"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET / healthCheck
//
// # Liveness probe
//
// Returns {"status":"ok"} whatever the request body or query.
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HealthResponse{Status: "ok"}); err != nil {
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
