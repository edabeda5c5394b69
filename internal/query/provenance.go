package query

import "fmt"

// Model source kinds, in warm-start preference order.
const (
	SourceSnapshot  = "snapshot"
	SourceProcessed = "processed"
	SourceExpanded  = "expanded"
)

// CompletenessInfo scores how trustworthy the loaded model is: where it came
// from and whether its data-quality report is clean.
type CompletenessInfo struct {
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
	Details string  `json:"details,omitempty"`
}

// FindingCounts tallies the model's data-quality report by severity.
type FindingCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Truncation marks a result set that was cut to a configured budget.
type Truncation struct {
	Shown  int    `json:"shown"`
	Total  int    `json:"total"`
	Reason string `json:"reason"`
}

// Provenance describes the model behind a response: its source, identity,
// digests, age, and quality. Attached to every query result.
type Provenance struct {
	Source          string           `json:"source"`
	SourcePath      string           `json:"sourcePath,omitempty"`
	SchemaName      string           `json:"schemaName,omitempty"`
	SchemaVersion   string           `json:"schemaVersion,omitempty"`
	SnapshotID      string           `json:"snapshotId,omitempty"`
	Digest          string           `json:"digest,omitempty"`
	LoadedAt        string           `json:"loadedAt,omitempty"`
	CachedAt        string           `json:"cachedAt,omitempty"`
	Completeness    CompletenessInfo `json:"completeness"`
	Findings        *FindingCounts   `json:"findings,omitempty"`
	QueryDurationMs int64            `json:"queryDurationMs"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// computeCompleteness derives the completeness score from the model source
// and its report. Snapshots and processed schemas score high; auto-transformed
// expanded schemas medium; structural findings pull the score down.
func computeCompleteness(source string, counts FindingCounts) CompletenessInfo {
	var info CompletenessInfo

	switch source {
	case SourceSnapshot:
		info.Score = 0.98
		info.Reason = "model restored from verified snapshot"
	case SourceProcessed:
		info.Score = 0.95
		info.Reason = "model built from processed schema"
	case SourceExpanded:
		info.Score = 0.85
		info.Reason = "model auto-transformed from expanded schema"
	default:
		info.Score = 0.5
		info.Reason = "model source unknown"
	}

	switch {
	case counts.Errors > 0:
		info.Score -= 0.3
		info.Details = fmt.Sprintf("%d structural errors in data-quality report", counts.Errors)
	case counts.Warnings > 0:
		info.Score -= 0.15
		info.Details = fmt.Sprintf("%d warnings in data-quality report", counts.Warnings)
	}

	if info.Score < 0 {
		info.Score = 0
	}
	return info
}
