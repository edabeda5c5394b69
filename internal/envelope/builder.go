package envelope

import (
	"strings"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/output"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/query"
)

// Builder constructs Response envelopes using a fluent API.
type Builder struct {
	resp *Response
}

// New creates a new envelope builder.
func New() *Builder {
	return &Builder{
		resp: &Response{
			SchemaVersion: CurrentSchemaVersion,
		},
	}
}

// Data sets the payload.
func (b *Builder) Data(data interface{}) *Builder {
	b.resp.Data = data
	return b
}

// FromProvenance populates metadata from a query.Provenance.
func (b *Builder) FromProvenance(p *query.Provenance) *Builder {
	if p == nil {
		return b
	}

	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}

	b.resp.Meta.Provenance = &Provenance{
		Source:        p.Source,
		SchemaName:    p.SchemaName,
		SchemaVersion: p.SchemaVersion,
		SnapshotID:    p.SnapshotID,
		Digest:        p.Digest,
		LoadedAt:      p.LoadedAt,
	}

	// Set confidence from completeness
	b.resp.Meta.Confidence = &Confidence{
		Score: p.Completeness.Score,
		Tier:  ScoreToTier(p.Completeness.Score),
	}
	if p.Completeness.Reason != "" {
		b.resp.Meta.Confidence.Reasons = append(
			b.resp.Meta.Confidence.Reasons,
			p.Completeness.Reason,
		)
	}

	// Generate confidence factors from the model source and its report
	factors := generateConfidenceFactors(p)
	if len(factors) > 0 {
		b.resp.Meta.Confidence.Factors = factors
	}

	// Add cache info if the response was served from the in-memory model
	if p.CachedAt != "" {
		b.resp.Meta.Cache = &CacheInfo{
			Hit: true,
			Age: p.CachedAt,
		}
	}

	// Add warnings from provenance
	for _, w := range p.Warnings {
		b.resp.Warnings = append(b.resp.Warnings, Warning{Message: w})
	}

	return b
}

// generateConfidenceFactors creates ConfidenceFactor entries from provenance.
// Explains why confidence is what it is.
func generateConfidenceFactors(p *query.Provenance) []ConfidenceFactor {
	var factors []ConfidenceFactor

	// The model source is the dominant factor: a snapshot has been through a
	// full load, a processed schema was transformed offline, an expanded
	// schema was transformed on the fly.
	var sourceImpact float64
	switch p.Source {
	case query.SourceSnapshot:
		sourceImpact = 0.3
	case query.SourceProcessed:
		sourceImpact = 0.2
	case query.SourceExpanded:
		sourceImpact = 0.1
	default:
		sourceImpact = -0.1
	}
	factors = append(factors, ConfidenceFactor{
		Factor: "source",
		Status: p.Source,
		Impact: sourceImpact,
	})

	// Structural findings in the model report pull confidence down.
	if p.Findings != nil {
		switch {
		case p.Findings.Errors > 0:
			factors = append(factors, ConfidenceFactor{
				Factor: "findings",
				Status: "errors",
				Impact: -0.2,
			})
		case p.Findings.Warnings > 0:
			factors = append(factors, ConfidenceFactor{
				Factor: "findings",
				Status: "warnings",
				Impact: -0.1,
			})
		default:
			factors = append(factors, ConfidenceFactor{
				Factor: "findings",
				Status: "clean",
				Impact: 0.0,
			})
		}
	}

	return factors
}

// WithTruncation adds truncation metadata.
func (b *Builder) WithTruncation(truncated bool, shown, total int, reason string) *Builder {
	if !truncated {
		return b
	}

	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}

	b.resp.Meta.Truncation = &Truncation{
		IsTruncated: true,
		Shown:       shown,
		Total:       total,
		Reason:      reason,
	}

	return b
}

// WithFreshness adds snapshot freshness info.
func (b *Builder) WithFreshness(age string, stale bool, staleReason string) *Builder {
	if age == "" && !stale {
		return b
	}

	if b.resp.Meta == nil {
		b.resp.Meta = &Meta{}
	}

	b.resp.Meta.Freshness = &Freshness{
		SnapshotAge: age,
		Stale:       stale,
		StaleReason: staleReason,
	}

	// Downgrade confidence if the source has moved on since the model loaded
	if stale && b.resp.Meta.Confidence != nil {
		if b.resp.Meta.Confidence.Tier == TierHigh {
			b.resp.Meta.Confidence.Tier = TierMedium
			b.resp.Meta.Confidence.Reasons = append(
				b.resp.Meta.Confidence.Reasons,
				"snapshot-stale",
			)
		}
	}

	return b
}

// SuggestCalls converts drilldowns to structured suggested calls.
func (b *Builder) SuggestCalls(drilldowns []output.Drilldown) *Builder {
	if len(drilldowns) == 0 {
		return b
	}

	b.resp.SuggestedNextCalls = make([]SuggestedCall, 0, len(drilldowns))
	for _, d := range drilldowns {
		call := ParseDrilldown(d)
		if call != nil {
			b.resp.SuggestedNextCalls = append(b.resp.SuggestedNextCalls, *call)
		}
	}

	return b
}

// Warning adds a warning message.
func (b *Builder) Warning(msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Message: msg})
	return b
}

// WarningWithCode adds a warning with a code.
func (b *Builder) WarningWithCode(code, msg string) *Builder {
	b.resp.Warnings = append(b.resp.Warnings, Warning{Code: code, Message: msg})
	return b
}

// Error sets the error field.
func (b *Builder) Error(err error) *Builder {
	if err != nil {
		msg := err.Error()
		b.resp.Error = &msg
	}
	return b
}

// Build returns the completed response envelope.
func (b *Builder) Build() *Response {
	return b.resp
}

// ParseDrilldown converts a drilldown to a SuggestedCall.
func ParseDrilldown(d output.Drilldown) *SuggestedCall {
	// Drilldown.Query format: "command param1 --flag=value" or just "command id"
	parts := strings.Fields(d.Query)
	if len(parts) == 0 {
		return nil
	}

	tool := parts[0]
	params := make(map[string]interface{})

	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if strings.HasPrefix(part, "--") {
			// Flag parameter: --key=value
			kv := strings.SplitN(strings.TrimPrefix(part, "--"), "=", 2)
			if len(kv) == 2 {
				params[kv[0]] = kv[1]
			}
		} else {
			// Positional parameter - infer name based on command
			paramName := inferPositionalParam(tool, i-1)
			params[paramName] = part
		}
	}

	return &SuggestedCall{
		Tool:   tool,
		Params: params,
		Reason: d.Label,
	}
}

// inferPositionalParam guesses the parameter name for positional args.
func inferPositionalParam(tool string, position int) string {
	// Map of command -> positional param names
	toolParams := map[string][]string{
		"describe":  {"id"},
		"usage":     {"id"},
		"tree":      {"root"},
		"search":    {"query"},
		"variables": {"class"},
		"export":    {"format"},
	}

	if params, ok := toolParams[tool]; ok && position < len(params) {
		return params[position]
	}
	return "arg" // fallback
}

// Operational creates a simple envelope for operational commands.
// These always have high confidence and no truncation/freshness concerns.
func Operational(data interface{}) *Response {
	return &Response{
		SchemaVersion: CurrentSchemaVersion,
		Data:          data,
		Meta: &Meta{
			Confidence: &Confidence{
				Score: 1.0,
				Tier:  TierHigh,
			},
		},
	}
}
