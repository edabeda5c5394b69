package output

import (
	"sort"
)

// SortElements sorts element rows by kind priority, then name ASC, then id ASC
func SortElements(rows []ElementRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		// Primary: kind priority
		iPriority := GetElementKindPriority(rows[i].Kind)
		jPriority := GetElementKindPriority(rows[j].Kind)
		if iPriority != jPriority {
			return iPriority < jPriority
		}
		// Secondary: name ASC
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		// Tertiary: id ASC
		return rows[i].ID < rows[j].ID
	})
}

// SortUsages sorts usage rows by role priority, then sourceId ASC, then detail ASC
func SortUsages(rows []UsageRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		// Primary: role priority
		iPriority := GetUsageRolePriority(rows[i].Role)
		jPriority := GetUsageRolePriority(rows[j].Role)
		if iPriority != jPriority {
			return iPriority < jPriority
		}
		// Secondary: sourceId ASC
		if rows[i].SourceID != rows[j].SourceID {
			return rows[i].SourceID < rows[j].SourceID
		}
		// Tertiary: detail ASC
		return rows[i].Detail < rows[j].Detail
	})
}

// SortSearchHits sorts hits by score DESC, then id ASC
func SortSearchHits(hits []SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		// Primary: score DESC
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		// Secondary: id ASC
		return hits[i].ID < hits[j].ID
	})
}

// SortVariables sorts variable rows by mappedClass ASC, then label ASC, then name ASC
func SortVariables(rows []VariableRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		// Primary: mappedClass ASC
		if rows[i].MappedClass != rows[j].MappedClass {
			return rows[i].MappedClass < rows[j].MappedClass
		}
		// Secondary: label ASC
		if rows[i].Label != rows[j].Label {
			return rows[i].Label < rows[j].Label
		}
		// Tertiary: name ASC
		return rows[i].Name < rows[j].Name
	})
}

// SortFindings sorts findings by severity priority, then code ASC, then elementId ASC
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		// Primary: severity priority
		iSev := GetFindingSeverity(findings[i].Severity)
		jSev := GetFindingSeverity(findings[j].Severity)
		if iSev != jSev {
			return iSev < jSev
		}
		// Secondary: code ASC
		if findings[i].Code != findings[j].Code {
			return findings[i].Code < findings[j].Code
		}
		// Tertiary: elementId ASC
		return findings[i].ElementID < findings[j].ElementID
	})
}

// SortWarnings sorts warnings by severity priority, then text ASC
func SortWarnings(warnings []Warning) {
	sort.SliceStable(warnings, func(i, j int) bool {
		// Primary: severity priority
		iSev := GetFindingSeverity(warnings[i].Severity)
		jSev := GetFindingSeverity(warnings[j].Severity)
		if iSev != jSev {
			return iSev < jSev
		}
		// Secondary: text ASC
		return warnings[i].Text < warnings[j].Text
	})
}
