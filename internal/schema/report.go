package schema

import "sort"

// Severity ranks data-quality findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding codes. Findings never block loading; they describe data-quality
// issues in the schema or the variable sheet.
const (
	FindingMissingParent       = "missing-parent"
	FindingHierarchyCycle      = "hierarchy-cycle"
	FindingMissingRange        = "missing-range"
	FindingAmbiguousRange      = "ambiguous-range"
	FindingMissingClassMapping = "missing-class-mapping"
	FindingDuplicateVariable   = "duplicate-variable"
	FindingEmptyEnum           = "empty-enum"
)

// Finding is one data-quality issue discovered while building the model.
type Finding struct {
	Severity  Severity    `json:"severity"`
	Code      string      `json:"code"`
	Kind      ElementKind `json:"kind"`
	ElementID string      `json:"elementId"`
	Message   string      `json:"message"`
}

// Report is the full data-quality report for a model.
type Report struct {
	Findings []Finding    `json:"findings"`
	Counts   ReportCounts `json:"counts"`
}

// ReportCounts tallies findings by severity.
type ReportCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Clean reports whether the model carries no error or warning findings.
func (r *Report) Clean() bool {
	return r.Counts.Errors == 0 && r.Counts.Warnings == 0
}

var severityRank = map[Severity]int{
	SeverityError:   1,
	SeverityWarning: 2,
	SeverityInfo:    3,
}

// sortFindings orders findings by severity, then code, then element ID.
func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] < severityRank[b.Severity]
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.ElementID < b.ElementID
	})
}

func buildReport(findings []Finding) *Report {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sortFindings(sorted)

	report := &Report{Findings: sorted}
	for _, f := range sorted {
		switch f.Severity {
		case SeverityError:
			report.Counts.Errors++
		case SeverityWarning:
			report.Counts.Warnings++
		default:
			report.Counts.Infos++
		}
	}
	return report
}
