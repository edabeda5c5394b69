package output

// ElementKindPriority defines the ordering priority for element kinds
// Lower numbers have higher priority (sorted first)
var ElementKindPriority = map[string]int{
	"class":    1,
	"enum":     2,
	"slot":     3,
	"type":     4,
	"variable": 5,
	"unknown":  6,
}

// UsageRolePriority defines the ordering priority for usage roles
// Lower numbers have higher priority (sorted first)
var UsageRolePriority = map[string]int{
	"parent":    1,
	"attribute": 2,
	"range":     3,
	"override":  4,
	"mapping":   5,
	"unknown":   6,
}

// FindingSeverity defines the ordering priority for finding severities
// Lower numbers have higher priority (sorted first)
var FindingSeverity = map[string]int{
	"error":   1,
	"warning": 2,
	"info":    3,
}

// GetElementKindPriority returns the priority for a given element kind
// Unknown kinds get the lowest priority (highest number)
func GetElementKindPriority(kind string) int {
	if priority, ok := ElementKindPriority[kind]; ok {
		return priority
	}
	return ElementKindPriority["unknown"]
}

// GetUsageRolePriority returns the priority for a given usage role
// Unknown roles get the lowest priority (highest number)
func GetUsageRolePriority(role string) int {
	if priority, ok := UsageRolePriority[role]; ok {
		return priority
	}
	return UsageRolePriority["unknown"]
}

// GetFindingSeverity returns the priority for a given severity
// Unknown severities get the lowest priority (highest number)
func GetFindingSeverity(severity string) int {
	if priority, ok := FindingSeverity[severity]; ok {
		return priority
	}
	return FindingSeverity["info"]
}
