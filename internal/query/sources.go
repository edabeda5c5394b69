package query

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/fetch"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/loader"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/output"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/paths"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/transform"
)

// snapshotKeep is how many snapshots survive pruning after a save.
const snapshotKeep = 5

// loadedModel is the outcome of resolving one model source.
type loadedModel struct {
	model       *schema.Model
	prov        Provenance
	processed   []byte // canonical processed JSON, empty when restored from a snapshot
	fingerprint string
}

// resolveModel walks the source tiers in preference order. useSnapshot is
// false on reload: source files changed, so the stored snapshot is stale.
func (e *Engine) resolveModel(ctx context.Context, useSnapshot bool) (*loadedModel, error) {
	if e.config.Data.InputPath != "" {
		path := paths.ResolveInputPath(e.workspaceRoot, e.config.Data.InputPath, "")
		return e.loadFromProcessedFile(path, SourceProcessed)
	}

	if useSnapshot && e.snapshots != nil {
		res, err := e.loadFromSnapshot(ctx)
		if err != nil {
			e.logger.Warn("Snapshot restore failed, falling back to source files", map[string]interface{}{
				"error": err.Error(),
			})
		} else if res != nil {
			return res, nil
		}
	}

	if path := newestProcessedFile(paths.ProcessedDir(e.workspaceRoot)); path != "" {
		return e.loadFromProcessedFile(path, SourceProcessed)
	}

	res, err := e.buildFromSources()
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	return nil, errors.NewModelError(
		errors.SourceMissing,
		"no model source found: no snapshot, processed schema, or expanded schema is available",
		nil,
		errors.GetSuggestedFixes(errors.SourceMissing),
		nil,
	).WithDetails(map[string]interface{}{
		"processedDir":  paths.ProcessedDir(e.workspaceRoot),
		"sourceDataDir": paths.SourceDataDir(e.workspaceRoot),
	})
}

// loadFromSnapshot restores the latest snapshot. Returns (nil, nil) when no
// snapshot exists.
func (e *Engine) loadFromSnapshot(ctx context.Context) (*loadedModel, error) {
	snap, document, err := e.snapshots.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}

	doc, err := loader.ParseProcessed(document)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}

	model := schema.NewModel(doc)
	counts := findingCounts(model)

	prov := Provenance{
		Source:        SourceSnapshot,
		SchemaName:    model.SchemaName(),
		SchemaVersion: model.SchemaVersion(),
		SnapshotID:    snap.ID,
		Digest:        snap.ContentSHA256,
		CachedAt:      snap.CreatedAt.UTC().Format(time.RFC3339),
		Completeness:  computeCompleteness(SourceSnapshot, counts),
		Findings:      &counts,
	}

	return &loadedModel{
		model:       model,
		prov:        prov,
		fingerprint: snap.SourceFingerprint,
	}, nil
}

// loadFromProcessedFile parses a processed schema document from disk.
func (e *Engine) loadFromProcessedFile(path, source string) (*loadedModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewModelError(
				errors.SourceMissing,
				fmt.Sprintf("processed schema not found at %s", path),
				err,
				errors.GetSuggestedFixes(errors.SourceMissing),
				nil,
			)
		}
		return nil, fmt.Errorf("read processed schema %s: %w", path, err)
	}

	doc, err := loader.ParseProcessed(raw)
	if err != nil {
		return nil, errors.NewModelError(
			errors.ParseFailed,
			fmt.Sprintf("processed schema %s is not valid", path),
			err,
			nil,
			nil,
		)
	}

	model := schema.NewModel(doc)
	counts := findingCounts(model)

	prov := Provenance{
		Source:        source,
		SourcePath:    e.relPath(path),
		SchemaName:    model.SchemaName(),
		SchemaVersion: model.SchemaVersion(),
		Completeness:  computeCompleteness(source, counts),
		Findings:      &counts,
	}

	return &loadedModel{
		model:       model,
		prov:        prov,
		processed:   raw,
		fingerprint: e.sourceFingerprint(),
	}, nil
}

// buildFromSources runs the full transform pipeline against source_data/:
// expanded schema, then YAML metadata, then variable TSVs. Returns (nil, nil)
// when no expanded schema exists.
func (e *Engine) buildFromSources() (*loadedModel, error) {
	srcDir := paths.SourceDataDir(e.workspaceRoot)

	expandedPath := findExpandedSchema(srcDir)
	if expandedPath == "" {
		return nil, nil
	}

	exp, err := loader.LoadExpanded(expandedPath)
	if err != nil {
		return nil, errors.NewModelError(
			errors.ParseFailed,
			fmt.Sprintf("expanded schema %s is not valid", e.relPath(expandedPath)),
			err,
			errors.GetSuggestedFixes(errors.TransformFailed),
			nil,
		)
	}

	doc, stats := transform.Transform(exp)
	warnings := append([]string(nil), stats.Warnings...)

	if meta, warn := loadMetadata(filepath.Dir(expandedPath)); meta != nil {
		loader.MergeMetadata(doc, meta)
	} else if warn != "" {
		warnings = append(warnings, warn)
	}

	vars, varWarnings := loadVariables(srcDir)
	if len(vars) > 0 {
		doc.Variables = append(doc.Variables, vars...)
	}
	warnings = append(warnings, varWarnings...)

	model := schema.NewModel(doc)
	counts := findingCounts(model)

	processed, err := output.DeterministicEncode(doc)
	if err != nil {
		e.logger.Warn("Could not encode processed document for snapshotting", map[string]interface{}{
			"error": err.Error(),
		})
		processed = nil
	}

	prov := Provenance{
		Source:        SourceExpanded,
		SourcePath:    e.relPath(expandedPath),
		SchemaName:    model.SchemaName(),
		SchemaVersion: model.SchemaVersion(),
		Completeness:  computeCompleteness(SourceExpanded, counts),
		Findings:      &counts,
		Warnings:      warnings,
	}

	return &loadedModel{
		model:       model,
		prov:        prov,
		processed:   processed,
		fingerprint: e.sourceFingerprint(),
	}, nil
}

// TransformResult reports one offline transform run.
type TransformResult struct {
	Input    string       `json:"input"`
	Output   string       `json:"output"`
	Stats    schema.Stats `json:"stats"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Transform rebuilds the processed document from the expanded schema under
// source_data/ and writes it to the processed directory. The resident model
// and the snapshot store are left untouched; run Load afterwards to serve
// the new document.
func (e *Engine) Transform(ctx context.Context) (*TransformResult, error) {
	res, err := e.buildFromSources()
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.NewModelError(
			errors.SourceMissing,
			fmt.Sprintf("no expanded schema found under %s", e.relPath(paths.SourceDataDir(e.workspaceRoot))),
			nil,
			errors.GetSuggestedFixes(errors.SourceMissing),
			nil,
		)
	}

	dir, err := paths.EnsureProcessedDir(e.workspaceRoot)
	if err != nil {
		return nil, err
	}

	data, err := output.DeterministicEncodeIndented(res.model.Document(), "  ")
	if err != nil {
		return nil, err
	}
	data = append(data, '\n')

	outPath := filepath.Join(dir, processedFileName(res.prov.SchemaName))
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write processed schema %s: %w", outPath, err)
	}

	return &TransformResult{
		Input:    res.prov.SourcePath,
		Output:   e.relPath(outPath),
		Stats:    res.model.Stats(),
		Warnings: res.prov.Warnings,
	}, nil
}

// processedFileName derives the processed document file name from the schema
// name. Characters outside the portable set are replaced.
func processedFileName(schemaName string) string {
	name := strings.ToLower(strings.TrimSpace(schemaName))
	if name == "" {
		name = "schema"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String() + ".processed.json"
}

// persist writes the load result through to storage: search index rebuild
// always, a fresh snapshot when the model came from source files. Failures
// degrade to warnings; the in-memory model is already serving.
func (e *Engine) persist(ctx context.Context, res *loadedModel) {
	if e.db == nil {
		return
	}

	if e.elements != nil {
		records := flattenModel(res.model)
		if err := e.elements.ReplaceAll(ctx, records); err != nil {
			e.logger.Warn("Element index rebuild failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if res.prov.Source == SourceSnapshot || e.snapshots == nil || len(res.processed) == 0 {
		return
	}

	snap, err := e.snapshots.Save(ctx, res.prov.SchemaName, res.prov.SchemaVersion, res.processed, res.fingerprint)
	if err != nil {
		e.logger.Warn("Snapshot save failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	e.mu.Lock()
	e.baseProv.SnapshotID = snap.ID
	e.baseProv.Digest = snap.ContentSHA256
	e.mu.Unlock()

	e.pruneSnapshots(ctx)
}

// pruneSnapshots deletes all but the newest snapshotKeep snapshots.
func (e *Engine) pruneSnapshots(ctx context.Context) {
	snaps, err := e.snapshots.List(ctx, 0)
	if err != nil {
		e.logger.Warn("Snapshot listing failed during prune", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	for i := snapshotKeep; i < len(snaps); i++ {
		if err := e.snapshots.Delete(ctx, snaps[i].ID); err != nil {
			e.logger.Warn("Snapshot prune failed", map[string]interface{}{
				"id":    snaps[i].ID,
				"error": err.Error(),
			})
		}
	}
}

// sourceFingerprint reads the fetch manifest digest, or "" when no manifest
// has been written yet.
func (e *Engine) sourceFingerprint() string {
	m, err := fetch.ReadManifest(paths.ManifestPath(e.workspaceRoot))
	if err != nil || m == nil {
		return ""
	}
	return m.Fingerprint()
}

func (e *Engine) relPath(path string) string {
	if rel, err := filepath.Rel(e.workspaceRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

func findingCounts(m *schema.Model) FindingCounts {
	r := m.Validate()
	return FindingCounts{
		Errors:   r.Counts.Errors,
		Warnings: r.Counts.Warnings,
		Infos:    r.Counts.Infos,
	}
}

// newestProcessedFile returns the most recently modified *.json under dir,
// or "" when the directory is empty or absent.
func newestProcessedFile(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	return newest
}

// findExpandedSchema scans one level of source_data/ subdirectories for a
// gen-linkml output file. Directories and files are visited in sorted order
// so the choice is stable.
func findExpandedSchema(srcDir string) string {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return ""
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		files, err := os.ReadDir(filepath.Join(srcDir, dir))
		if err != nil {
			continue
		}
		var names []string
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			name := f.Name()
			if strings.HasSuffix(name, ".schema.json") || strings.HasSuffix(name, ".expanded.json") {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		if len(names) > 0 {
			return filepath.Join(srcDir, dir, names[0])
		}
	}
	return ""
}

// loadMetadata parses the first schema YAML next to the expanded file.
// Returns a warning string instead of an error: metadata is an enrichment.
func loadMetadata(dir string) (*loader.Metadata, string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ""
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		meta, err := loader.LoadSchemaYAML(filepath.Join(dir, name))
		if err == nil {
			return meta, ""
		}
		return nil, fmt.Sprintf("schema metadata %s skipped: %v", name, err)
	}
	return nil, ""
}

// loadVariables gathers harmonized variables from every TSV under
// source_data/ subdirectories, in sorted path order.
func loadVariables(srcDir string) ([]*schema.Variable, []string) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, nil
	}

	var tsvPaths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(srcDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if !f.IsDir() && strings.HasSuffix(f.Name(), ".tsv") {
				tsvPaths = append(tsvPaths, filepath.Join(srcDir, entry.Name(), f.Name()))
			}
		}
	}
	sort.Strings(tsvPaths)

	var vars []*schema.Variable
	var warnings []string
	for _, path := range tsvPaths {
		loaded, err := loader.LoadVariablesTSV(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("variables %s skipped: %v", filepath.Base(path), err))
			continue
		}
		vars = append(vars, loaded...)
	}
	return vars, warnings
}
