package output

// ElementRow is a flattened model element used in list responses
type ElementRow struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parent      string `json:"parent,omitempty"`
}

// UsageRow records one place an element is referenced from
type UsageRow struct {
	SourceID   string `json:"sourceId"`
	SourceKind string `json:"sourceKind"`
	SourceName string `json:"sourceName"`
	Role       string `json:"role"`
	Detail     string `json:"detail,omitempty"`
}

// SearchHit is a ranked full-text search result
type SearchHit struct {
	ID      string  `json:"id"`
	Kind    string  `json:"kind"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

// VariableRow is a harmonized variable used in list responses
type VariableRow struct {
	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	MappedClass string `json:"mappedClass,omitempty"`
	DataType    string `json:"dataType,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Curie       string `json:"curie,omitempty"`
}

// Finding is a data-quality observation from a model report
type Finding struct {
	Severity  string `json:"severity"`
	Code      string `json:"code"`
	ElementID string `json:"elementId,omitempty"`
	Message   string `json:"message"`
}

// Warning represents a warning message
type Warning struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
	Code     string `json:"code,omitempty"`
}

// Drilldown is a suggested follow-up query attached to a response
type Drilldown struct {
	Label string `json:"label"`
	Query string `json:"query"`
}
