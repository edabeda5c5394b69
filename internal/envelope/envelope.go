// Package envelope provides a standardized response wrapper for all modeldocs
// API and CLI responses. Every response is wrapped in a consistent envelope that
// includes metadata about confidence, provenance, freshness, truncation,
// warnings, and suggested next calls.
package envelope

// ConfidenceTier represents the quality tier of results.
type ConfidenceTier string

const (
	// TierHigh indicates results backed by a clean snapshot or processed schema.
	TierHigh ConfidenceTier = "high"
	// TierMedium indicates results from an auto-transformed expanded schema or a
	// stale snapshot.
	TierMedium ConfidenceTier = "medium"
	// TierLow indicates results from a model with structural findings such as
	// missing parents or hierarchy cycles.
	TierLow ConfidenceTier = "low"
)

// ConfidenceFactor explains one component of the confidence score.
type ConfidenceFactor struct {
	Factor string  `json:"factor"` // e.g., "source", "findings"
	Status string  `json:"status"` // e.g., "snapshot", "clean", "errors"
	Impact float64 `json:"impact"` // contribution to score (-1.0 to 1.0)
}

// Confidence describes result quality.
type Confidence struct {
	Score   float64            `json:"score"`             // 0.0 - 1.0
	Tier    ConfidenceTier     `json:"tier"`              // high, medium, low
	Reasons []string           `json:"reasons,omitempty"` // why this tier
	Factors []ConfidenceFactor `json:"factors,omitempty"` // breakdown of score
}

// Provenance describes where the model behind a response came from.
type Provenance struct {
	Source        string `json:"source"`                  // "snapshot", "processed", "expanded"
	SchemaName    string `json:"schemaName,omitempty"`    // e.g., "bdchm"
	SchemaVersion string `json:"schemaVersion,omitempty"` // schema version string
	SnapshotID    string `json:"snapshotId,omitempty"`    // snapshot identifier if loaded from one
	Digest        string `json:"digest,omitempty"`        // sha256 of the source document
	LoadedAt      string `json:"loadedAt,omitempty"`      // when the model was loaded
}

// Freshness describes how current the loaded model is relative to its source.
type Freshness struct {
	SnapshotAge string `json:"snapshotAge,omitempty"` // e.g., "2m30s"
	Stale       bool   `json:"stale,omitempty"`       // source file newer than the model
	StaleReason string `json:"staleReason,omitempty"` // "source-modified", "snapshot-superseded"
}

// Truncation describes result trimming.
type Truncation struct {
	IsTruncated bool   `json:"isTruncated"`
	Shown       int    `json:"shown,omitempty"`  // items returned
	Total       int    `json:"total,omitempty"`  // total available
	Reason      string `json:"reason,omitempty"` // "max-results", "max-variables", etc.
}

// CacheInfo describes cache status for this response.
type CacheInfo struct {
	Hit bool   `json:"hit"`           // true if served from the in-memory model
	Age string `json:"age,omitempty"` // if hit, how old (e.g., "2m30s")
}

// Meta holds response metadata.
type Meta struct {
	Confidence *Confidence `json:"confidence,omitempty"`
	Provenance *Provenance `json:"provenance,omitempty"`
	Freshness  *Freshness  `json:"freshness,omitempty"`
	Truncation *Truncation `json:"truncation,omitempty"`
	Cache      *CacheInfo  `json:"cache,omitempty"`
}

// SuggestedCall represents a recommended follow-up call.
type SuggestedCall struct {
	Tool   string                 `json:"tool"`             // command or endpoint name
	Params map[string]interface{} `json:"params,omitempty"` // pre-filled parameters
	Reason string                 `json:"reason,omitempty"` // why this is suggested
}

// Warning represents a non-fatal issue.
type Warning struct {
	Code    string `json:"code,omitempty"` // machine-readable code
	Message string `json:"message"`        // human-readable message
}

// Response is the standard envelope for all modeldocs responses.
type Response struct {
	SchemaVersion      string          `json:"schemaVersion"`
	Data               interface{}     `json:"data"`
	Meta               *Meta           `json:"meta,omitempty"`
	Warnings           []Warning       `json:"warnings,omitempty"`
	Error              *string         `json:"error,omitempty"`
	SuggestedNextCalls []SuggestedCall `json:"suggestedNextCalls,omitempty"`
}

// CurrentSchemaVersion is the current envelope schema version.
const CurrentSchemaVersion = "1.0"
