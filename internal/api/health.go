package api

import (
	"net/http"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Backends  map[string]bool   `json:"backends"`
	Details   map[string]string `json:"details,omitempty"`
}

// handleHealth responds to health check requests (simple liveness check)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
	}

	WriteJSON(w, response, http.StatusOK)
}

// handleReady responds to readiness check requests. Ready means the database
// answers and a model is loaded or loadable; the first probe after startup
// performs the initial load.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	backends := map[string]bool{}
	details := map[string]string{}

	if s.db != nil {
		if err := s.db.Conn().PingContext(ctx); err != nil {
			backends["database"] = false
			details["database"] = err.Error()
		} else {
			backends["database"] = true
		}
	} else {
		backends["database"] = false
		details["database"] = "not configured"
	}

	if err := s.engine.EnsureLoaded(ctx); err != nil {
		backends["model"] = false
		details["model"] = err.Error()
	} else {
		backends["model"] = true
	}

	ready := true
	for _, available := range backends {
		if !available {
			ready = false
			break
		}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	response := ReadyResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Backends:  backends,
	}
	if len(details) > 0 {
		response.Details = details
	}

	WriteJSON(w, response, statusCode)
}
