package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/output"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// Exporter writes documentation exports of one schema model.
type Exporter struct {
	model  *schema.Model
	logger *logging.Logger
}

// New creates an exporter over a built model.
func New(model *schema.Model, logger *logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Exporter{
		model:  model,
		logger: logger,
	}
}

// Export writes the model in the requested format and reports the files
// written. The output directory is created if missing.
func (e *Exporter) Export(ctx context.Context, opts Options) (*Result, error) {
	if opts.Format == "" {
		opts.Format = FormatRawMarkdown
	}
	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.OutDir == "" {
		return nil, fmt.Errorf("export output directory not set")
	}

	e.logger.Debug("Starting export", map[string]interface{}{
		"format": format,
		"outDir": opts.OutDir,
	})

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory %s: %w", opts.OutDir, err)
	}

	w := &fileWriter{outDir: opts.OutDir}

	switch format {
	case FormatRawMarkdown:
		err = e.exportSite(ctx, w, siteRaw)
	case FormatHugo:
		err = e.exportSite(ctx, w, siteHugo)
	case FormatDocusaurus:
		err = e.exportSite(ctx, w, siteDocusaurus)
	case FormatJSON:
		err = e.exportJSON(w)
	case FormatTurtle:
		err = e.exportTurtle(w)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(w.files)
	result := &Result{
		Format:    format,
		OutDir:    opts.OutDir,
		Files:     w.files,
		Bytes:     w.bytes,
		Generated: time.Now().Format(time.RFC3339),
	}

	e.logger.Info("Export complete", map[string]interface{}{
		"format": format,
		"files":  len(result.Files),
		"bytes":  result.Bytes,
	})
	return result, nil
}

// exportJSON dumps the processed document deterministically. The file
// round-trips through the processed-document loader unchanged.
func (e *Exporter) exportJSON(w *fileWriter) error {
	data, err := output.DeterministicEncodeIndented(e.model.Document(), "  ")
	if err != nil {
		return fmt.Errorf("encode processed document: %w", err)
	}
	return w.write(schemaSlug(e.model)+".processed.json", append(data, '\n'))
}

// fileWriter writes files under one output directory and records what it
// wrote for the export result.
type fileWriter struct {
	outDir string
	files  []string
	bytes  int64
}

// write stores data at a slash-separated path relative to the output
// directory, creating parent directories as needed.
func (w *fileWriter) write(rel string, data []byte) error {
	path := filepath.Join(w.outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	w.files = append(w.files, rel)
	w.bytes += int64(len(data))
	return nil
}

// schemaSlug returns the schema name as a lowercase file stem.
func schemaSlug(m *schema.Model) string {
	name := strings.ToLower(strings.TrimSpace(m.SchemaName()))
	if name == "" {
		return "schema"
	}
	return slugFile(name)
}

// slugFile makes a name safe to use as a file or local name component.
func slugFile(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
