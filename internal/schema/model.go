package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Model is the queryable object graph over a processed schema document.
// It is built once, single-threaded, and never mutated afterwards, so it is
// safe for concurrent reads.
type Model struct {
	doc *Document

	classes   map[string]*Class
	slots     map[string]*Slot
	enums     map[string]*Enum
	types     map[string]*TypeDef
	variables map[string]*Variable

	varOrder         []string
	roots            []string
	children         map[string][]string
	cycleMembers     map[string]bool
	overrides        map[string][]string
	variablesByClass map[string][]string

	usages    map[string][]Usage
	usageSeen map[string]map[string]bool

	findings []Finding
	report   *Report
}

// NewModel builds the object graph from a processed document. The document
// is normalized in place and owned by the model afterwards. Data-quality
// issues are collected as findings, never returned as errors.
func NewModel(doc *Document) *Model {
	if doc == nil {
		doc = NewDocument()
	}
	doc.normalize()

	m := &Model{
		doc:              doc,
		classes:          doc.Classes,
		slots:            doc.Slots,
		enums:            doc.Enums,
		types:            doc.Types,
		variables:        map[string]*Variable{},
		children:         map[string][]string{},
		cycleMembers:     map[string]bool{},
		overrides:        map[string][]string{},
		variablesByClass: map[string][]string{},
		usages:           map[string][]Usage{},
		usageSeen:        map[string]map[string]bool{},
	}

	m.assignVariableIDs()
	m.buildHierarchy()
	m.buildUsageIndex()
	m.validateRanges()
	m.validateEnums()
	m.report = buildReport(m.findings)

	return m
}

// Document returns the underlying processed document.
func (m *Model) Document() *Document { return m.doc }

// SchemaName returns the schema name from the document header.
func (m *Model) SchemaName() string { return m.doc.Name }

// SchemaVersion returns the schema version from the document header.
func (m *Model) SchemaVersion() string { return m.doc.Version }

// Prefixes returns the CURIE prefix expansions declared by the schema.
func (m *Model) Prefixes() map[string]string { return m.doc.Prefixes }

// ExpandCURIE expands a compact identifier like "OBI:0002599" using the
// schema prefixes. Unknown prefixes return the input unchanged.
func (m *Model) ExpandCURIE(curie string) string {
	idx := strings.Index(curie, ":")
	if idx <= 0 {
		return curie
	}
	if uri, ok := m.doc.Prefixes[curie[:idx]]; ok {
		return uri + curie[idx+1:]
	}
	return curie
}

// Element resolves a reference to an element. Canonical "kind:id" references
// resolve directly; bare names are tried per kind in resolution order
// (class, enum, slot, type, variable).
func (m *Model) Element(ref string) (Element, bool) {
	if kind, id, ok := ParseElementID(ref); ok {
		return m.elementByKind(kind, id)
	}
	for _, kind := range AllKinds {
		if el, ok := m.elementByKind(kind, ref); ok {
			return el, true
		}
	}
	return nil, false
}

func (m *Model) elementByKind(kind ElementKind, id string) (Element, bool) {
	switch kind {
	case KindClass:
		if c, ok := m.classes[id]; ok {
			return c, true
		}
	case KindEnum:
		if e, ok := m.enums[id]; ok {
			return e, true
		}
	case KindSlot:
		if s, ok := m.slots[id]; ok {
			return s, true
		}
	case KindType:
		if t, ok := m.types[id]; ok {
			return t, true
		}
	case KindVariable:
		if v, ok := m.variables[id]; ok {
			return v, true
		}
	}
	return nil, false
}

// Class looks up a class by name.
func (m *Model) Class(name string) (*Class, bool) {
	c, ok := m.classes[name]
	return c, ok
}

// Slot looks up a slot by ID (base name or override instance ID).
func (m *Model) Slot(id string) (*Slot, bool) {
	s, ok := m.slots[id]
	return s, ok
}

// Enum looks up an enum by name.
func (m *Model) Enum(name string) (*Enum, bool) {
	e, ok := m.enums[name]
	return e, ok
}

// Type looks up a type definition by name.
func (m *Model) Type(name string) (*TypeDef, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Variable looks up a variable by its normalized ID.
func (m *Model) Variable(id string) (*Variable, bool) {
	v, ok := m.variables[id]
	return v, ok
}

// ElementsOfKind returns the elements of one kind sorted by name (ID as
// tiebreak). Slot override instances are excluded from slot listings; use
// OverridesOf or Slots to reach them.
func (m *Model) ElementsOfKind(kind ElementKind) []Element {
	var out []Element
	switch kind {
	case KindClass:
		for _, c := range m.classes {
			out = append(out, c)
		}
	case KindEnum:
		for _, e := range m.enums {
			out = append(out, e)
		}
	case KindSlot:
		for _, s := range m.slots {
			if !s.IsOverride() {
				out = append(out, s)
			}
		}
	case KindType:
		for _, t := range m.types {
			out = append(out, t)
		}
	case KindVariable:
		for _, id := range m.varOrder {
			out = append(out, m.variables[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ElementName() != out[j].ElementName() {
			return out[i].ElementName() < out[j].ElementName()
		}
		return out[i].ElementID() < out[j].ElementID()
	})
	return out
}

// Slots returns every slot, optionally including override instances,
// sorted by ID.
func (m *Model) Slots(includeOverrides bool) []*Slot {
	var out []*Slot
	for _, s := range m.slots {
		if !includeOverrides && s.IsOverride() {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Variables returns every variable in sheet order.
func (m *Model) Variables() []*Variable {
	out := make([]*Variable, 0, len(m.varOrder))
	for _, id := range m.varOrder {
		out = append(out, m.variables[id])
	}
	return out
}

// VariablesFor returns the variables mapped onto a class, in sheet order.
func (m *Model) VariablesFor(className string) []*Variable {
	ids := m.variablesByClass[className]
	out := make([]*Variable, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.variables[id])
	}
	return out
}

// OverridesOf returns the override instances of a base slot, sorted by ID.
func (m *Model) OverridesOf(baseID string) []*Slot {
	ids := m.overrides[baseID]
	out := make([]*Slot, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.slots[id])
	}
	return out
}

// Ancestors returns the inheritance chain of a class from root to the class
// itself, inclusive. Cut parent edges (missing parents, cycle members) end
// the chain.
func (m *Model) Ancestors(className string) []string {
	if _, ok := m.classes[className]; !ok {
		return nil
	}
	var chain []string
	seen := map[string]bool{}
	for cur := className; cur != "" && !seen[cur]; cur = m.effectiveParent(cur) {
		seen[cur] = true
		chain = append(chain, cur)
	}
	// reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Subclasses returns the direct subclasses of a class, sorted by name.
func (m *Model) Subclasses(className string) []string {
	kids := m.children[className]
	out := make([]string, len(kids))
	copy(out, kids)
	return out
}

// effectiveParent returns the parent of a class with cut edges (missing
// parent, cycle member) treated as absent.
func (m *Model) effectiveParent(className string) string {
	c, ok := m.classes[className]
	if !ok || c.Parent == "" || m.cycleMembers[className] {
		return ""
	}
	if _, ok := m.classes[c.Parent]; !ok {
		return ""
	}
	return c.Parent
}

// Attribute provenance values.
const (
	ProvenanceInline     = "inline"
	ProvenanceInherited  = "inherited"
	ProvenanceOverridden = "overridden"
)

// AttributeProvenance classifies how a class acquired an attribute: defined
// on the class, inherited from an ancestor, or overridden via a slot
// instance. Overrides win over inheritance.
func (m *Model) AttributeProvenance(attr *Attribute) string {
	if slot, ok := m.slots[attr.SlotID]; ok && slot.IsOverride() {
		return ProvenanceOverridden
	}
	if attr.InheritedFrom != "" {
		return ProvenanceInherited
	}
	return ProvenanceInline
}

// RangeKind classifies what a slot range or a detail row reference points at.
type RangeKind string

const (
	RangeClass     RangeKind = "class"
	RangeEnum      RangeKind = "enum"
	RangeSlot      RangeKind = "slot"
	RangeType      RangeKind = "type"
	RangeVariable  RangeKind = "variable"
	RangePrimitive RangeKind = "primitive"
	RangeMissing   RangeKind = "missing"
)

// RangeRef is a resolved reference to the element (or builtin type) a slot
// range names, also used to point detail rows at related elements.
type RangeRef struct {
	Kind RangeKind `json:"kind"`
	Name string    `json:"name,omitempty"`

	// ID is the canonical element ID when the reference resolves to a
	// schema element. Empty for primitives and missing references.
	ID string `json:"id,omitempty"`
}

// ResolveRange resolves a range name against the schema namespaces in
// precedence order class, enum, type, then LinkML builtins.
func (m *Model) ResolveRange(name string) RangeRef {
	if name == "" {
		return RangeRef{Kind: RangeMissing}
	}
	if c, ok := m.classes[name]; ok {
		return RangeRef{Kind: RangeClass, Name: name, ID: c.ElementID()}
	}
	if e, ok := m.enums[name]; ok {
		return RangeRef{Kind: RangeEnum, Name: name, ID: e.ElementID()}
	}
	if t, ok := m.types[name]; ok {
		return RangeRef{Kind: RangeType, Name: name, ID: t.ElementID()}
	}
	if IsPrimitive(name) {
		return RangeRef{Kind: RangePrimitive, Name: name}
	}
	return RangeRef{Kind: RangeMissing, Name: name}
}

// rangeNamespaceCount counts how many element namespaces a range name
// resolves in. More than one means the reference is ambiguous.
func (m *Model) rangeNamespaceCount(name string) int {
	count := 0
	if _, ok := m.classes[name]; ok {
		count++
	}
	if _, ok := m.enums[name]; ok {
		count++
	}
	if _, ok := m.types[name]; ok {
		count++
	}
	return count
}

// Validate returns the data-quality report collected at build time.
func (m *Model) Validate() *Report { return m.report }

// Stats summarizes the model for status output.
type Stats struct {
	SchemaName    string       `json:"schemaName,omitempty"`
	SchemaVersion string       `json:"schemaVersion,omitempty"`
	Classes       int          `json:"classes"`
	Slots         int          `json:"slots"`
	SlotOverrides int          `json:"slotOverrides"`
	Enums         int          `json:"enums"`
	Types         int          `json:"types"`
	Variables     int          `json:"variables"`
	Roots         int          `json:"roots"`
	Findings      ReportCounts `json:"findings"`
}

// Stats returns element counts and finding tallies.
func (m *Model) Stats() Stats {
	overrides := 0
	for _, s := range m.slots {
		if s.IsOverride() {
			overrides++
		}
	}
	return Stats{
		SchemaName:    m.doc.Name,
		SchemaVersion: m.doc.Version,
		Classes:       len(m.classes),
		Slots:         len(m.slots) - overrides,
		SlotOverrides: overrides,
		Enums:         len(m.enums),
		Types:         len(m.types),
		Variables:     len(m.variables),
		Roots:         len(m.roots),
		Findings:      m.report.Counts,
	}
}

// assignVariableIDs gives every variable a normalized ID, suffixing
// duplicates with "#n" and recording a finding for each collision.
func (m *Model) assignVariableIDs() {
	seen := map[string]bool{}
	for _, v := range m.doc.Variables {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			name = strings.TrimSpace(v.Label)
		}
		if name == "" {
			continue
		}
		v.Name = name

		id := v.ID
		if id == "" {
			id = NormalizeVariableID(name)
		}
		if seen[id] {
			base := id
			for n := 2; ; n++ {
				id = fmt.Sprintf("%s#%d", base, n)
				if !seen[id] {
					break
				}
			}
			m.findings = append(m.findings, Finding{
				Severity:  SeverityWarning,
				Code:      FindingDuplicateVariable,
				Kind:      KindVariable,
				ElementID: ElementIDFor(KindVariable, id),
				Message:   fmt.Sprintf("duplicate variable name %q", name),
			})
		}
		seen[id] = true
		v.ID = id
		m.variables[id] = v
		m.varOrder = append(m.varOrder, id)
		if v.Class != "" {
			m.variablesByClass[v.Class] = append(m.variablesByClass[v.Class], id)
		}
	}
}

// NormalizeVariableID lowercases a variable name and collapses separator
// runs (spaces, dashes, dots, slashes) to single underscores.
func NormalizeVariableID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '-', '.', '/':
			pendingSep = b.Len() > 0
		default:
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// buildHierarchy detects inheritance cycles, cuts their parent edges, and
// builds sorted root and children lists. Classes referencing a missing
// parent become roots with a finding.
func (m *Model) buildHierarchy() {
	names := sortedKeys(m.classes)

	const (
		unvisited = iota
		inProgress
		done
	)
	state := map[string]int{}

	for _, name := range names {
		if state[name] != unvisited {
			continue
		}
		var path []string
		pos := map[string]int{}
		cur := name
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == inProgress {
				cycle := path[pos[cur]:]
				for _, member := range cycle {
					m.cycleMembers[member] = true
				}
				m.findings = append(m.findings, Finding{
					Severity:  SeverityError,
					Code:      FindingHierarchyCycle,
					Kind:      KindClass,
					ElementID: ElementIDFor(KindClass, cycle[0]),
					Message:   fmt.Sprintf("inheritance cycle: %s -> %s", strings.Join(cycle, " -> "), cycle[0]),
				})
				break
			}
			state[cur] = inProgress
			pos[cur] = len(path)
			path = append(path, cur)

			parent := m.classes[cur].Parent
			if parent == "" {
				break
			}
			if _, ok := m.classes[parent]; !ok {
				m.findings = append(m.findings, Finding{
					Severity:  SeverityWarning,
					Code:      FindingMissingParent,
					Kind:      KindClass,
					ElementID: ElementIDFor(KindClass, cur),
					Message:   fmt.Sprintf("parent class %q does not exist", parent),
				})
				break
			}
			cur = parent
		}
		for _, n := range path {
			state[n] = done
		}
	}

	// names iterate sorted, so roots and children lists come out sorted
	for _, name := range names {
		if parent := m.effectiveParent(name); parent != "" {
			m.children[parent] = append(m.children[parent], name)
		} else {
			m.roots = append(m.roots, name)
		}
	}
}

// buildUsageIndex records every inbound reference so UsageOf can answer
// "what uses this element" for any element.
func (m *Model) buildUsageIndex() {
	for _, cname := range sortedKeys(m.classes) {
		c := m.classes[cname]

		if c.Parent != "" && !m.cycleMembers[cname] {
			if p, ok := m.classes[c.Parent]; ok {
				m.addUsage(p.ElementID(), Usage{
					Role: RoleParent, Kind: KindClass,
					ID: c.ElementID(), Name: c.Name,
				})
			}
		}

		for _, attrName := range sortedKeys(c.Attributes) {
			attr := c.Attributes[attrName]
			if slot, ok := m.slots[attr.SlotID]; ok {
				m.addUsage(slot.ElementID(), Usage{
					Role: RoleAttribute, Kind: KindClass,
					ID: c.ElementID(), Name: c.Name, Context: attrName,
				})
				continue
			}
			// Class-local attribute without a slot entry: the class is
			// the ranging source.
			if rr := m.ResolveRange(attr.Range); rr.ID != "" {
				m.addUsage(rr.ID, Usage{
					Role: RoleRange, Kind: KindClass,
					ID: c.ElementID(), Name: c.Name, Context: attrName,
				})
			}
		}
	}

	for _, sid := range sortedKeys(m.slots) {
		s := m.slots[sid]
		if s.IsOverride() {
			m.overrides[s.Overrides] = append(m.overrides[s.Overrides], sid)
			if base, ok := m.slots[s.Overrides]; ok {
				m.addUsage(base.ElementID(), Usage{
					Role: RoleOverride, Kind: KindSlot,
					ID: s.ElementID(), Name: s.Name, Context: overrideClass(s),
				})
			}
		}
		if rr := m.ResolveRange(s.Range); rr.ID != "" {
			m.addUsage(rr.ID, Usage{
				Role: RoleRange, Kind: KindSlot,
				ID: s.ElementID(), Name: s.Name,
			})
		}
	}

	for _, vid := range m.varOrder {
		v := m.variables[vid]
		if v.Class == "" {
			continue
		}
		c, ok := m.classes[v.Class]
		if !ok {
			m.findings = append(m.findings, Finding{
				Severity:  SeverityWarning,
				Code:      FindingMissingClassMapping,
				Kind:      KindVariable,
				ElementID: v.ElementID(),
				Message:   fmt.Sprintf("mapped class %q does not exist", v.Class),
			})
			continue
		}
		m.addUsage(c.ElementID(), Usage{
			Role: RoleMapping, Kind: KindVariable,
			ID: v.ElementID(), Name: v.Name, Context: v.Label,
		})
	}

	for id := range m.usages {
		sortUsages(m.usages[id])
	}
}

// overrideClass extracts the owning class from an override instance ID
// "{slotName}-{ClassName}".
func overrideClass(s *Slot) string {
	return strings.TrimPrefix(s.ID, s.Name+"-")
}

// validateRanges records findings for dangling and ambiguous range names.
func (m *Model) validateRanges() {
	for _, sid := range sortedKeys(m.slots) {
		s := m.slots[sid]
		if s.Range == "" {
			continue
		}
		if n := m.rangeNamespaceCount(s.Range); n > 1 {
			m.findings = append(m.findings, Finding{
				Severity:  SeverityWarning,
				Code:      FindingAmbiguousRange,
				Kind:      KindSlot,
				ElementID: s.ElementID(),
				Message:   fmt.Sprintf("range %q matches %d element namespaces", s.Range, n),
			})
		}
		if m.ResolveRange(s.Range).Kind == RangeMissing {
			m.findings = append(m.findings, Finding{
				Severity:  SeverityWarning,
				Code:      FindingMissingRange,
				Kind:      KindSlot,
				ElementID: s.ElementID(),
				Message:   fmt.Sprintf("range %q does not resolve to a class, enum, type or builtin", s.Range),
			})
		}
	}

	for _, cname := range sortedKeys(m.classes) {
		c := m.classes[cname]
		for _, attrName := range sortedKeys(c.Attributes) {
			attr := c.Attributes[attrName]
			if attr.Range == "" {
				continue
			}
			if _, ok := m.slots[attr.SlotID]; ok {
				continue // covered by the slot entry above
			}
			if m.ResolveRange(attr.Range).Kind == RangeMissing {
				m.findings = append(m.findings, Finding{
					Severity:  SeverityWarning,
					Code:      FindingMissingRange,
					Kind:      KindClass,
					ElementID: c.ElementID(),
					Message:   fmt.Sprintf("attribute %q range %q does not resolve to a class, enum, type or builtin", attrName, attr.Range),
				})
			}
		}
	}
}

// validateEnums flags enums without permissible values.
func (m *Model) validateEnums() {
	for _, ename := range sortedKeys(m.enums) {
		e := m.enums[ename]
		if len(e.PermissibleValues) == 0 {
			m.findings = append(m.findings, Finding{
				Severity:  SeverityInfo,
				Code:      FindingEmptyEnum,
				Kind:      KindEnum,
				ElementID: e.ElementID(),
				Message:   "enum declares no permissible values",
			})
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
