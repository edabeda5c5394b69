// Package query is the central coordinator for modeldocs operations. It
// resolves the best available model source, builds the in-memory model,
// persists snapshots and the search index, and answers documentation
// queries with provenance attached.
package query

import (
	"context"
	"sync"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/config"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/metrics"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

// Engine coordinates model loading and query execution. Storage and metrics
// are optional: without a database the engine still serves queries from the
// in-memory model, falling back to substring search.
type Engine struct {
	workspaceRoot string
	config        *config.Config
	logger        *logging.Logger

	db        *storage.DB
	elements  *storage.ElementStore
	snapshots *storage.SnapshotStore
	search    *storage.SearchIndex
	metrics   *metrics.Registry

	mu       sync.RWMutex
	model    *schema.Model
	baseProv Provenance
	loadedAt time.Time
}

// Options configures engine construction. Only WorkspaceRoot is required.
type Options struct {
	WorkspaceRoot string
	Config        *config.Config
	Logger        *logging.Logger
	DB            *storage.DB
	Metrics       *metrics.Registry
}

// NewEngine creates a query engine. Snapshot compression setup can fail
// independently of the database; the engine degrades rather than erroring.
func NewEngine(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	e := &Engine{
		workspaceRoot: opts.WorkspaceRoot,
		config:        cfg,
		logger:        logger,
		db:            opts.DB,
		metrics:       opts.Metrics,
	}

	if opts.DB != nil {
		e.elements = storage.NewElementStore(opts.DB)
		e.search = storage.NewSearchIndex(opts.DB)

		snapshots, err := storage.NewSnapshotStore(opts.DB)
		if err != nil {
			logger.Warn("Snapshot store unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			e.snapshots = snapshots
		}
	}

	return e
}

// Close releases engine resources. The database itself is owned by the
// caller and is not closed here.
func (e *Engine) Close() {
	if e.snapshots != nil {
		e.snapshots.Close()
	}
}

// Loaded reports whether a model is resident.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model != nil
}

// Model returns the resident model, or nil before the first load.
func (e *Engine) Model() *schema.Model {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model
}

// EnsureLoaded loads the model on first use. Subsequent calls are cheap.
func (e *Engine) EnsureLoaded(ctx context.Context) error {
	e.mu.RLock()
	loaded := e.model != nil
	e.mu.RUnlock()
	if loaded {
		return nil
	}
	return e.Load(ctx)
}

// Load resolves the best available model source and installs the result.
// Resolution order: explicit input path, latest snapshot, newest processed
// schema, expanded schema auto-transform.
func (e *Engine) Load(ctx context.Context) error {
	return e.load(ctx, true)
}

// Reload rebuilds the model from source files, bypassing the snapshot tier
// so that edits under source_data/ take effect. On success a fresh snapshot
// is saved and the search index rebuilt.
func (e *Engine) Reload(ctx context.Context) error {
	return e.load(ctx, false)
}

func (e *Engine) load(ctx context.Context, useSnapshot bool) error {
	start := time.Now()

	res, err := e.resolveModel(ctx, useSnapshot)
	if err != nil {
		e.observeReload("error", time.Since(start))
		return err
	}

	e.install(res)
	e.persist(ctx, res)
	e.observeReload("ok", time.Since(start))

	e.logger.Info("Model loaded", map[string]interface{}{
		"source":     res.prov.Source,
		"schema":     res.prov.SchemaName,
		"version":    res.prov.SchemaVersion,
		"classes":    res.model.Stats().Classes,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return nil
}

// install swaps in the freshly built model and its provenance.
func (e *Engine) install(res *loadedModel) {
	now := time.Now().UTC()
	res.prov.LoadedAt = now.Format(time.RFC3339)

	e.mu.Lock()
	e.model = res.model
	e.baseProv = res.prov
	e.loadedAt = now
	e.mu.Unlock()

	if e.metrics != nil {
		stats := res.model.Stats()
		e.metrics.SetElementCounts(map[string]int{
			"class":    stats.Classes,
			"slot":     stats.Slots + stats.SlotOverrides,
			"enum":     stats.Enums,
			"type":     stats.Types,
			"variable": stats.Variables,
		})
	}
}

func (e *Engine) observeReload(status string, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.Metrics.ModelReloadsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		e.metrics.Metrics.ModelLoadDuration.Observe(elapsed.Seconds())
	}
}

// current returns the resident model and a copy of its base provenance,
// taken under one lock so the pair is always consistent.
func (e *Engine) current() (*schema.Model, Provenance) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model, e.baseProv
}

// stampProvenance finalizes one response's provenance: the query duration and
// any per-query warnings. Warnings are copied so responses never share state.
func stampProvenance(base Provenance, start time.Time, warnings ...string) *Provenance {
	p := base
	if len(p.Warnings) > 0 || len(warnings) > 0 {
		merged := make([]string, 0, len(p.Warnings)+len(warnings))
		merged = append(merged, p.Warnings...)
		merged = append(merged, warnings...)
		p.Warnings = merged
	}
	p.QueryDurationMs = time.Since(start).Milliseconds()
	return &p
}

// LoadedAt returns when the resident model was installed.
func (e *Engine) LoadedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadedAt
}
