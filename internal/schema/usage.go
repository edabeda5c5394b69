package schema

import "sort"

// UsageRole classifies an inbound reference to an element.
type UsageRole string

const (
	// RoleParent marks a class that inherits from the target class.
	RoleParent UsageRole = "parent"
	// RoleAttribute marks a class that carries an attribute bound to the
	// target slot.
	RoleAttribute UsageRole = "attribute"
	// RoleRange marks a slot or class attribute using the target element
	// as its range.
	RoleRange UsageRole = "range"
	// RoleOverride marks a slot instance overriding the target base slot.
	RoleOverride UsageRole = "override"
	// RoleMapping marks a variable mapped onto the target class.
	RoleMapping UsageRole = "mapping"
)

// Usage records one inbound reference: the element identified by ID uses the
// element the usage is attached to.
type Usage struct {
	Role UsageRole   `json:"role"`
	Kind ElementKind `json:"kind"`
	ID   string      `json:"id"`
	Name string      `json:"name"`

	// Context carries the attribute name (attribute role), the overriding
	// class (override role) or the variable label (mapping role).
	Context string `json:"context,omitempty"`
}

var usageRoleRank = map[UsageRole]int{
	RoleParent:    1,
	RoleAttribute: 2,
	RoleRange:     3,
	RoleOverride:  4,
	RoleMapping:   5,
}

// sortUsages orders usages by role, then referencing kind, then name, then ID
// so repeated queries return identical listings.
func sortUsages(usages []Usage) {
	sort.SliceStable(usages, func(i, j int) bool {
		a, b := usages[i], usages[j]
		if usageRoleRank[a.Role] != usageRoleRank[b.Role] {
			return usageRoleRank[a.Role] < usageRoleRank[b.Role]
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// UsageOf answers "what uses this element" for any element reference.
// Accepts canonical "kind:id" references and bare names. The returned slice
// is a copy and stable-sorted; unknown references yield an empty slice.
func (m *Model) UsageOf(ref string) []Usage {
	el, ok := m.Element(ref)
	if !ok {
		return nil
	}
	usages := m.usages[el.ElementID()]
	out := make([]Usage, len(usages))
	copy(out, usages)
	return out
}

// addUsage records an inbound reference on target, deduplicating exact
// repeats (the same source can reach a target through several walks).
func (m *Model) addUsage(targetID string, u Usage) {
	key := string(u.Role) + "\x00" + u.ID + "\x00" + u.Context
	if m.usageSeen[targetID] == nil {
		m.usageSeen[targetID] = map[string]bool{}
	}
	if m.usageSeen[targetID][key] {
		return
	}
	m.usageSeen[targetID][key] = true
	m.usages[targetID] = append(m.usages[targetID], u)
}
