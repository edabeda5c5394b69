package api

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/query"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/version"
)

// StatusData is the payload of the /status endpoint
type StatusData struct {
	Status        string        `json:"status"`
	Version       string        `json:"version"`
	Loaded        bool          `json:"loaded"`
	LoadedAt      string        `json:"loadedAt,omitempty"`
	Stats         *schema.Stats `json:"stats,omitempty"`
	SearchBackend string        `json:"searchBackend"`
	Storage       *StorageInfo  `json:"storage,omitempty"`
}

// StorageInfo describes the index database behind the server
type StorageInfo struct {
	DatabasePath      string         `json:"databasePath"`
	DatabaseSizeBytes int64          `json:"databaseSizeBytes"`
	IndexedElements   map[string]int `json:"indexedElements,omitempty"`
}

// ReloadData is the payload of a successful /reload call
type ReloadData struct {
	Status string       `json:"status"`
	Stats  schema.Stats `json:"stats"`
}

// writeEnvelope wraps a query result in the standard response envelope
func writeEnvelope(w http.ResponseWriter, data interface{}, prov *query.Provenance, trunc *query.Truncation) {
	env := envelope.New().Data(data).FromProvenance(prov)
	if trunc != nil {
		env.WithTruncation(true, trunc.Shown, trunc.Total, trunc.Reason)
	}
	WriteJSON(w, env.Build(), http.StatusOK)
}

// handleStatus reports whether a model is loaded and what the index holds.
// A workspace without sources still answers 200 so operators can see why
// the model is empty.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	data := StatusData{
		Status:        "operational",
		Version:       version.Version,
		SearchBackend: s.searchBackend(),
	}

	stats, prov, err := s.engine.Stats(ctx)
	if err != nil {
		data.Status = "empty"
		if s.db != nil {
			data.Storage = s.storageInfo(ctx)
		}
		env := envelope.New().Data(data).Warning(err.Error())
		WriteJSON(w, env.Build(), http.StatusOK)
		return
	}

	data.Loaded = true
	data.LoadedAt = prov.LoadedAt
	data.Stats = stats
	if s.db != nil {
		data.Storage = s.storageInfo(ctx)
	}

	writeEnvelope(w, data, prov, nil)
}

func (s *Server) searchBackend() string {
	if s.db != nil && s.config.Search.Enabled {
		return "fts"
	}
	return "memory"
}

func (s *Server) storageInfo(ctx context.Context) *StorageInfo {
	info := &StorageInfo{DatabasePath: s.db.Path()}
	if stat, err := os.Stat(s.db.Path()); err == nil {
		info.DatabaseSizeBytes = stat.Size()
	}
	if counts, err := storage.NewElementStore(s.db).CountByKind(ctx); err == nil {
		info.IndexedElements = counts
	}
	return info
}

// handleSchemaTree returns the class inheritance forest
func (s *Server) handleSchemaTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, prov, err := s.engine.Tree(r.Context(), r.URL.Query().Get("root"))
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, res.Truncation)
}

// handleSchemaFlat returns the pre-order flattened hierarchy
func (s *Server) handleSchemaFlat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, prov, err := s.engine.Flat(r.Context(), r.URL.Query().Get("root"))
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, res.Truncation)
}

// handleElements lists elements of one kind, or all kinds
func (s *Server) handleElements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := r.URL.Query().Get("kind")
	limit := QueryParamInt(r, "limit", 0)

	res, prov, err := s.engine.Elements(r.Context(), kind, limit)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, res.Truncation)
}

// handleElement returns the detail view for one element
func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := GetPathParam(r, "/element/")
	if id == "" {
		BadRequest(w, "Element ID is required")
		return
	}

	detail, prov, err := s.engine.Describe(r.Context(), id)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, detail, prov, nil)
}

// handleUsage returns every place an element is referenced
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := GetPathParam(r, "/usage/")
	if id == "" {
		BadRequest(w, "Element ID is required")
		return
	}

	res, prov, err := s.engine.Usage(r.Context(), id)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, res.Truncation)
}

// handleSearch searches elements by name and description
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		BadRequest(w, "Query parameter 'q' is required")
		return
	}

	kinds := parseKinds(r.URL.Query().Get("kinds"))
	limit := QueryParamInt(r, "limit", 0)

	res, prov, err := s.engine.Search(r.Context(), q, kinds, limit)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, nil)
}

// handleVariables lists harmonized variables, optionally for one class
func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, prov, err := s.engine.Variables(r.Context(), r.URL.Query().Get("class"))
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, res.Truncation)
}

// handleReport returns the data-quality report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, prov, err := s.engine.Report(r.Context())
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	writeEnvelope(w, res, prov, res.Truncation)
}

// handleReload rebuilds the model from source files, bypassing the snapshot
// tier. Authentication has already happened in the middleware.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	if err := s.engine.Reload(ctx); err != nil {
		WriteEngineError(w, err)
		return
	}

	stats, prov, err := s.engine.Stats(ctx)
	if err != nil {
		WriteEngineError(w, err)
		return
	}

	fields := map[string]interface{}{
		"requestID": GetRequestID(ctx),
	}
	if result := GetAuthResult(ctx); result != nil {
		fields["tokenID"] = result.TokenID
	}
	s.logger.Info("Model reloaded via API", fields)

	writeEnvelope(w, ReloadData{Status: "reloaded", Stats: *stats}, prov, nil)
}
