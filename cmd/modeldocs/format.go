package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/envelope"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/errors"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/export"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/fetch"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/query"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	// FormatJSON prints the full response envelope as indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatHuman prints a terminal-friendly rendering of the payload.
	FormatHuman OutputFormat = "human"
)

// FormatResponse renders a response envelope in the requested format.
func FormatResponse(env *envelope.Response, format OutputFormat) (string, error) {
	switch format {
	case FormatHuman:
		return formatHuman(env)
	case FormatJSON:
		return formatJSONString(env)
	default:
		return "", fmt.Errorf("unknown output format: %s (use json or human)", format)
	}
}

func formatJSONString(env *envelope.Response) (string, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal response: %w", err)
	}
	return string(data), nil
}

// formatHuman dispatches on the payload type. Payloads without a dedicated
// renderer fall back to JSON so nothing is ever silently dropped.
func formatHuman(env *envelope.Response) (string, error) {
	var sb strings.Builder

	switch data := env.Data.(type) {
	case *schema.Detail:
		writeDetailHuman(&sb, data)
	case *query.TreeResult:
		writeTreeHuman(&sb, data)
	case *query.FlatResult:
		writeFlatHuman(&sb, data)
	case *query.UsageResult:
		writeUsageHuman(&sb, data)
	case *query.SearchResponse:
		writeSearchHuman(&sb, data)
	case *query.VariablesResult:
		writeVariablesHuman(&sb, data)
	case *query.ReportResult:
		writeReportHuman(&sb, data)
	case *query.TransformResult:
		writeTransformHuman(&sb, data)
	case *fetch.Result:
		writeFetchHuman(&sb, data)
	case *export.Result:
		writeExportHuman(&sb, data)
	case *LoadResponseCLI:
		writeLoadHuman(&sb, data)
	case *StatusResponseCLI:
		writeStatusHuman(&sb, data)
	case *DoctorResponseCLI:
		writeDoctorHuman(&sb, data)
	default:
		return formatJSONString(env)
	}

	writeMetaFooter(&sb, env)
	return strings.TrimRight(sb.String(), "\n"), nil
}

// writeMetaFooter appends truncation notes, warnings, and the model source so
// human output never hides what the JSON envelope would carry.
func writeMetaFooter(sb *strings.Builder, env *envelope.Response) {
	if env.Meta != nil && env.Meta.Truncation != nil && env.Meta.Truncation.IsTruncated {
		t := env.Meta.Truncation
		fmt.Fprintf(sb, "\n(showing %d of %d: %s)\n", t.Shown, t.Total, t.Reason)
	}
	for _, w := range env.Warnings {
		fmt.Fprintf(sb, "! %s\n", w.Message)
	}
	if env.Meta != nil && env.Meta.Provenance != nil && env.Meta.Provenance.Source != "" {
		p := env.Meta.Provenance
		label := p.Source
		if p.SchemaName != "" {
			label += ": " + p.SchemaName
			if p.SchemaVersion != "" {
				label += " " + p.SchemaVersion
			}
		}
		fmt.Fprintf(sb, "\n(source %s)\n", label)
	}
}

// writeDetailHuman renders an element detail as markdown through glamour.
// When the terminal renderer cannot be built the raw markdown is printed
// instead, which is still readable.
func writeDetailHuman(sb *strings.Builder, d *schema.Detail) {
	md := string(export.DetailMarkdown(d))

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		sb.WriteString(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		sb.WriteString(md)
		return
	}
	sb.WriteString(out)
}

func writeTreeHuman(sb *strings.Builder, t *query.TreeResult) {
	fmt.Fprintf(sb, "Class Hierarchy\n%s\n", strings.Repeat("=", 60))
	if len(t.Roots) == 0 {
		sb.WriteString("No classes in the model.\n")
		return
	}
	writeTreeNodes(sb, t.Roots)
}

func writeTreeNodes(sb *strings.Builder, nodes []*schema.ClassNode) {
	for _, n := range nodes {
		indent := strings.Repeat("  ", n.Depth)
		name := n.Class.Name
		if n.Class.Abstract {
			name += " (abstract)"
		}
		if len(n.Children) > 0 {
			fmt.Fprintf(sb, "%s%s [%d]\n", indent, name, len(n.Children))
		} else {
			fmt.Fprintf(sb, "%s%s\n", indent, name)
		}
		writeTreeNodes(sb, n.Children)
	}
}

func writeFlatHuman(sb *strings.Builder, f *query.FlatResult) {
	fmt.Fprintf(sb, "Class Hierarchy (flat)\n%s\n", strings.Repeat("=", 60))
	if len(f.Nodes) == 0 {
		sb.WriteString("No classes in the model.\n")
		return
	}
	for _, n := range f.Nodes {
		indent := strings.Repeat("  ", n.Depth)
		name := n.Name
		if n.Abstract {
			name += " (abstract)"
		}
		if n.ChildCount > 0 {
			fmt.Fprintf(sb, "%s%s [%d]\n", indent, name, n.ChildCount)
		} else {
			fmt.Fprintf(sb, "%s%s\n", indent, name)
		}
	}
}

func writeUsageHuman(sb *strings.Builder, u *query.UsageResult) {
	fmt.Fprintf(sb, "Usage of %s (%s)\n%s\n", u.Name, u.Kind, strings.Repeat("=", 60))
	if len(u.Usages) == 0 {
		sb.WriteString("Nothing references this element.\n")
		return
	}
	for _, usage := range u.Usages {
		line := fmt.Sprintf("%-10s %-9s %s", usage.Role, usage.Kind, usage.Name)
		if usage.Context != "" {
			line += fmt.Sprintf("  (via %s)", usage.Context)
		}
		fmt.Fprintf(sb, "%s\n", line)
	}
}

func writeSearchHuman(sb *strings.Builder, s *query.SearchResponse) {
	fmt.Fprintf(sb, "Search: %q (%s backend)\n%s\n", s.Query, s.Backend, strings.Repeat("=", 60))
	if len(s.Hits) == 0 {
		sb.WriteString("No matches.\n")
		return
	}
	for _, hit := range s.Hits {
		fmt.Fprintf(sb, "%5.2f  %-9s %-28s", hit.Score, hit.Kind, hit.Name)
		if hit.Snippet != "" {
			fmt.Fprintf(sb, "  %s", hit.Snippet)
		}
		sb.WriteString("\n")
	}
}

func writeVariablesHuman(sb *strings.Builder, v *query.VariablesResult) {
	title := "Harmonized Variables"
	if v.Class != "" {
		title += ": " + v.Class
	}
	fmt.Fprintf(sb, "%s (%d)\n%s\n", title, len(v.Variables), strings.Repeat("=", 60))
	if len(v.Variables) == 0 {
		sb.WriteString("No variables.\n")
		return
	}
	fmt.Fprintf(sb, "%-30s %-18s %-11s %-9s %s\n", "NAME", "CLASS", "TYPE", "UNIT", "LABEL")
	for _, row := range v.Variables {
		fmt.Fprintf(sb, "%-30s %-18s %-11s %-9s %s\n",
			row.Name, row.MappedClass, row.DataType, row.Unit, row.Label)
	}
}

func writeReportHuman(sb *strings.Builder, r *query.ReportResult) {
	fmt.Fprintf(sb, "Data Quality Report\n%s\n", strings.Repeat("=", 60))
	switch {
	case r.Clean:
		sb.WriteString("✓ Clean: no findings\n")
	case r.Counts.Errors > 0:
		fmt.Fprintf(sb, "✗ %d errors, %d warnings, %d infos\n\n",
			r.Counts.Errors, r.Counts.Warnings, r.Counts.Infos)
	default:
		fmt.Fprintf(sb, "⚠ %d warnings, %d infos\n\n", r.Counts.Warnings, r.Counts.Infos)
	}
	for _, f := range r.Findings {
		fmt.Fprintf(sb, "%-8s %-24s %-28s %s\n",
			strings.ToUpper(f.Severity), f.Code, f.ElementID, f.Message)
	}
}

func writeTransformHuman(sb *strings.Builder, t *query.TransformResult) {
	fmt.Fprintf(sb, "✓ Transformed %s\n", t.Input)
	fmt.Fprintf(sb, "  Output: %s\n", t.Output)
	writeStatsLines(sb, t.Stats)
	for _, w := range t.Warnings {
		fmt.Fprintf(sb, "⚠ %s\n", w)
	}
}

func writeStatsLines(sb *strings.Builder, s schema.Stats) {
	fmt.Fprintf(sb, "  Classes: %d  Slots: %d (+%d overrides)  Enums: %d  Types: %d\n",
		s.Classes, s.Slots, s.SlotOverrides, s.Enums, s.Types)
	fmt.Fprintf(sb, "  Variables: %d  Roots: %d\n", s.Variables, s.Roots)
	if s.Findings.Errors > 0 || s.Findings.Warnings > 0 {
		fmt.Fprintf(sb, "  Findings: %d errors, %d warnings\n",
			s.Findings.Errors, s.Findings.Warnings)
	}
}

func writeFetchHuman(sb *strings.Builder, f *fetch.Result) {
	if f.Failed > 0 {
		fmt.Fprintf(sb, "⚠ Fetched %d files, %d failed (%dms)\n\n", f.Fetched, f.Failed, f.DurationMs)
	} else {
		fmt.Fprintf(sb, "✓ Fetched %d files (%dms)\n\n", f.Fetched, f.DurationMs)
	}
	for _, file := range f.Files {
		name := file.Dependency + "/" + file.Name
		if file.Error != "" {
			fmt.Fprintf(sb, "  ✗ %-36s %s\n", name, file.Error)
			continue
		}
		fmt.Fprintf(sb, "  ✓ %-36s %8s\n", name, formatBytes(file.Bytes))
	}
}

func writeExportHuman(sb *strings.Builder, r *export.Result) {
	fmt.Fprintf(sb, "✓ Exported %d files (%s) to %s [%s]\n",
		len(r.Files), formatBytes(r.Bytes), r.OutDir, r.Format)
}

func writeLoadHuman(sb *strings.Builder, l *LoadResponseCLI) {
	verb := "loaded"
	if l.Reloaded {
		verb = "reloaded"
	}
	label := l.Source
	if l.Stats.SchemaName != "" {
		label = fmt.Sprintf("%s: %s %s", l.Source, l.Stats.SchemaName, l.Stats.SchemaVersion)
	}
	fmt.Fprintf(sb, "✓ Model %s (%s) in %dms\n", verb, label, l.DurationMs)
	writeStatsLines(sb, l.Stats)
}

func writeStatusHuman(sb *strings.Builder, s *StatusResponseCLI) {
	fmt.Fprintf(sb, "Model Status\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(sb, "%-18s %s\n", "Status:", s.Status)
	fmt.Fprintf(sb, "%-18s %s\n", "Version:", s.Version)
	fmt.Fprintf(sb, "%-18s %s\n", "Workspace:", s.Workspace)
	if s.Loaded {
		loaded := "yes"
		if s.Source != "" {
			loaded += " (" + s.Source
			if s.LoadedAt != "" {
				loaded += ", " + s.LoadedAt
			}
			loaded += ")"
		}
		fmt.Fprintf(sb, "%-18s %s\n", "Loaded:", loaded)
	} else {
		fmt.Fprintf(sb, "%-18s no\n", "Loaded:")
	}
	fmt.Fprintf(sb, "%-18s %s\n", "Search backend:", s.SearchBackend)

	if s.Stats != nil {
		if s.Stats.SchemaName != "" {
			fmt.Fprintf(sb, "%-18s %s %s\n", "Schema:", s.Stats.SchemaName, s.Stats.SchemaVersion)
		}
		sb.WriteString("\nElements\n")
		fmt.Fprintf(sb, "  %-16s %d\n", "Classes:", s.Stats.Classes)
		fmt.Fprintf(sb, "  %-16s %d (+%d overrides)\n", "Slots:", s.Stats.Slots, s.Stats.SlotOverrides)
		fmt.Fprintf(sb, "  %-16s %d\n", "Enums:", s.Stats.Enums)
		fmt.Fprintf(sb, "  %-16s %d\n", "Types:", s.Stats.Types)
		fmt.Fprintf(sb, "  %-16s %d\n", "Variables:", s.Stats.Variables)
		fmt.Fprintf(sb, "  %-16s %d errors, %d warnings\n", "Findings:",
			s.Stats.Findings.Errors, s.Stats.Findings.Warnings)
	}

	if s.Storage != nil {
		sb.WriteString("\nStorage\n")
		fmt.Fprintf(sb, "  %-16s %s (%s)\n", "Database:",
			s.Storage.DatabasePath, formatBytes(s.Storage.DatabaseSizeBytes))
		fmt.Fprintf(sb, "  %-16s %d elements\n", "Indexed:", s.Storage.IndexedElements)
	}
}

func writeDoctorHuman(sb *strings.Builder, d *DoctorResponseCLI) {
	fmt.Fprintf(sb, "modeldocs doctor\n%s\n", strings.Repeat("=", 60))

	var ok, warn, failed int
	for _, check := range d.Checks {
		var icon string
		switch check.Status {
		case doctorOK:
			icon, ok = "✓", ok+1
		case doctorWarn:
			icon, warn = "⚠", warn+1
		default:
			icon, failed = "✗", failed+1
		}
		fmt.Fprintf(sb, "%s %-16s %s\n", icon, check.Name, check.Message)
		for _, fix := range check.Fixes {
			fmt.Fprintf(sb, "    Try: $ %s\n", fix)
		}
	}

	fmt.Fprintf(sb, "\n%d ok, %d warnings, %d failures\n", ok, warn, failed)
}

// formatBytes renders a byte count with a binary-unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// queryEnvelope wraps a query result with its provenance and truncation
// metadata, matching what the HTTP API returns for the same operation.
func queryEnvelope(data interface{}, prov *query.Provenance, trunc *query.Truncation) *envelope.Response {
	b := envelope.New().Data(data).FromProvenance(prov)
	if trunc != nil {
		b.WithTruncation(true, trunc.Shown, trunc.Total, trunc.Reason)
	}
	return b.Build()
}

// printResult renders the envelope to stdout or exits.
func printResult(env *envelope.Response, format OutputFormat) {
	out, err := FormatResponse(env, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// fail prints a command error and exits non-zero. JSON mode emits an error
// envelope on stderr so scripted callers can still parse the failure; human
// mode prints the message plus any suggested fixes and follow-up queries.
func fail(format OutputFormat, err error) {
	if format == FormatJSON {
		env := envelope.New().Error(err).Build()
		if out, jerr := json.MarshalIndent(env, "", "  "); jerr == nil {
			fmt.Fprintln(os.Stderr, string(out))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if modelErr, ok := err.(*errors.ModelError); ok {
		for _, fix := range modelErr.SuggestedFixes {
			switch {
			case fix.Command != "":
				fmt.Fprintf(os.Stderr, "  Try: $ %s\n", fix.Command)
			case fix.Description != "":
				fmt.Fprintf(os.Stderr, "  %s\n", fix.Description)
			}
		}
		for _, d := range modelErr.Drilldowns {
			fmt.Fprintf(os.Stderr, "  %s: modeldocs %s\n", d.Label, d.Query)
		}
	}
	os.Exit(1)
}
