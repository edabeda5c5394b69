package api

import (
	"net/http"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)

	// System status
	s.router.HandleFunc("/status", s.handleStatus)

	// Class hierarchy
	s.router.HandleFunc("/schema/tree", s.handleSchemaTree) // GET /schema/tree?root=...
	s.router.HandleFunc("/schema/flat", s.handleSchemaFlat) // GET /schema/flat?root=...

	// Element operations
	s.router.HandleFunc("/elements", s.handleElements)   // GET /elements?kind=...&limit=...
	s.router.HandleFunc("/element/", s.handleElement)    // GET /element/:id
	s.router.HandleFunc("/usage/", s.handleUsage)        // GET /usage/:id
	s.router.HandleFunc("/search", s.handleSearch)       // GET /search?q=...
	s.router.HandleFunc("/variables", s.handleVariables) // GET /variables?class=...
	s.router.HandleFunc("/report", s.handleReport)

	// Model lifecycle
	s.router.HandleFunc("/reload", s.handleReload) // POST, token-protected

	// Prometheus scrape endpoint
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// OpenAPI spec
	s.router.HandleFunc("/openapi.json", s.handleOpenAPISpec)

	// Root endpoint
	s.router.HandleFunc("/", s.handleRoot)
}

// handleRoot handles requests to the root path
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"name":    "modeldocs HTTP API",
		"version": version.Version,
		"endpoints": []string{
			"GET /health - Health check",
			"GET /ready - Readiness check",
			"GET /status - Model and storage status",
			"GET /schema/tree?root=Class - Class inheritance tree",
			"GET /schema/flat?root=Class - Flattened class hierarchy",
			"GET /elements?kind=classes&limit=50 - List elements",
			"GET /element/:id - Element detail (class, slot, enum, type or variable)",
			"GET /usage/:id - Where an element is referenced",
			"GET /search?q=query&kinds=classes,enums&limit=20 - Search elements",
			"GET /variables?class=Specimen - Harmonized variables",
			"GET /report - Data-quality report",
			"POST /reload - Rebuild the model from source files (requires token)",
			"GET /metrics - Prometheus metrics",
			"GET /openapi.json - OpenAPI specification",
		},
		"documentation": "/openapi.json",
	}

	WriteJSON(w, response, http.StatusOK)
}
