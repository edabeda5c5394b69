package schema

import (
	"fmt"
	"strings"
)

// Detail is the renderable description of one element: title, badges, and
// labeled sections of rows. Rows may point at related elements via Ref so a
// renderer can link them.
type Detail struct {
	ID       string          `json:"id"`
	Kind     ElementKind     `json:"kind"`
	Title    string          `json:"title"`
	Badges   []string        `json:"badges,omitempty"`
	Sections []DetailSection `json:"sections"`
}

// DetailSection groups related rows under a label.
type DetailSection struct {
	Label string      `json:"label"`
	Rows  []DetailRow `json:"rows"`
}

// DetailRow is one name/value line of a detail section.
type DetailRow struct {
	Name  string    `json:"name"`
	Value string    `json:"value,omitempty"`
	Ref   *RangeRef `json:"ref,omitempty"`
}

// Detail assembles the class view: definition, lineage, attributes,
// subclasses, mapped variables and usage.
func (c *Class) Detail(m *Model) *Detail {
	d := &Detail{ID: c.ElementID(), Kind: KindClass, Title: c.Name}
	if c.Abstract {
		d.Badges = append(d.Badges, "abstract")
	}

	var def []DetailRow
	if c.Description != "" {
		def = append(def, DetailRow{Name: "description", Value: c.Description})
	}
	if c.Parent != "" {
		row := DetailRow{Name: "parent", Value: c.Parent}
		if p, ok := m.Class(c.Parent); ok {
			row.Ref = elementRef(p)
		} else {
			row.Ref = &RangeRef{Kind: RangeMissing, Name: c.Parent}
		}
		def = append(def, row)
	}
	if len(def) > 0 {
		d.Sections = append(d.Sections, DetailSection{Label: "Definition", Rows: def})
	}

	if chain := m.Ancestors(c.Name); len(chain) > 1 {
		rows := make([]DetailRow, 0, len(chain))
		for _, name := range chain {
			row := DetailRow{Name: name}
			if a, ok := m.Class(name); ok {
				row.Ref = elementRef(a)
			}
			rows = append(rows, row)
		}
		d.Sections = append(d.Sections, DetailSection{Label: "Lineage", Rows: rows})
	}

	if len(c.Attributes) > 0 {
		rows := make([]DetailRow, 0, len(c.Attributes))
		for _, attrName := range sortedKeys(c.Attributes) {
			rows = append(rows, attributeRow(m, attrName, c.Attributes[attrName]))
		}
		d.Sections = append(d.Sections, DetailSection{Label: "Attributes", Rows: rows})
	}

	if subs := m.Subclasses(c.Name); len(subs) > 0 {
		rows := make([]DetailRow, 0, len(subs))
		for _, name := range subs {
			row := DetailRow{Name: name}
			if s, ok := m.Class(name); ok {
				row.Ref = elementRef(s)
			}
			rows = append(rows, row)
		}
		d.Sections = append(d.Sections, DetailSection{Label: "Subclasses", Rows: rows})
	}

	if vars := m.VariablesFor(c.Name); len(vars) > 0 {
		rows := make([]DetailRow, 0, len(vars))
		for _, v := range vars {
			rows = append(rows, DetailRow{Name: v.Name, Value: v.Label, Ref: elementRef(v)})
		}
		d.Sections = append(d.Sections, DetailSection{Label: "Variables", Rows: rows})
	}

	appendUsageSection(d, m)
	return d
}

// Detail assembles the enum view: definition, permissible values and the
// slots ranging over it.
func (e *Enum) Detail(m *Model) *Detail {
	d := &Detail{ID: e.ElementID(), Kind: KindEnum, Title: e.Name}

	if e.Description != "" {
		d.Sections = append(d.Sections, DetailSection{
			Label: "Definition",
			Rows:  []DetailRow{{Name: "description", Value: e.Description}},
		})
	}

	if len(e.PermissibleValues) > 0 {
		rows := make([]DetailRow, 0, len(e.PermissibleValues))
		for _, text := range sortedKeys(e.PermissibleValues) {
			pv := e.PermissibleValues[text]
			value := ""
			if pv != nil {
				value = pv.Description
				if pv.Meaning != "" {
					if value != "" {
						value = fmt.Sprintf("%s (%s)", value, pv.Meaning)
					} else {
						value = pv.Meaning
					}
				}
			}
			rows = append(rows, DetailRow{Name: text, Value: value})
		}
		d.Sections = append(d.Sections, DetailSection{Label: "Permissible Values", Rows: rows})
	}

	appendUsageSection(d, m)
	return d
}

// Detail assembles the slot view: definition, override provenance and the
// classes carrying it.
func (s *Slot) Detail(m *Model) *Detail {
	d := &Detail{ID: s.ElementID(), Kind: KindSlot, Title: s.Name}
	if s.Required {
		d.Badges = append(d.Badges, "required")
	}
	if s.Multivalued {
		d.Badges = append(d.Badges, "multivalued")
	}
	if s.Identifier {
		d.Badges = append(d.Badges, "identifier")
	}
	if s.IsOverride() {
		d.Badges = append(d.Badges, "override")
	}

	var def []DetailRow
	if s.Description != "" {
		def = append(def, DetailRow{Name: "description", Value: s.Description})
	}
	if s.Range != "" {
		rr := m.ResolveRange(s.Range)
		def = append(def, DetailRow{Name: "range", Value: s.Range, Ref: &rr})
	}
	if len(def) > 0 {
		d.Sections = append(d.Sections, DetailSection{Label: "Definition", Rows: def})
	}

	if s.IsOverride() {
		rows := []DetailRow{}
		baseRow := DetailRow{Name: "base slot", Value: s.Overrides}
		if base, ok := m.Slot(s.Overrides); ok {
			baseRow.Ref = elementRef(base)
		} else {
			baseRow.Ref = &RangeRef{Kind: RangeMissing, Name: s.Overrides}
		}
		rows = append(rows, baseRow)

		classRow := DetailRow{Name: "class", Value: overrideClass(s)}
		if c, ok := m.Class(overrideClass(s)); ok {
			classRow.Ref = elementRef(c)
		}
		rows = append(rows, classRow)
		d.Sections = append(d.Sections, DetailSection{Label: "Overrides", Rows: rows})
	} else if insts := m.OverridesOf(s.ID); len(insts) > 0 {
		rows := make([]DetailRow, 0, len(insts))
		for _, inst := range insts {
			rows = append(rows, DetailRow{Name: overrideClass(inst), Value: inst.Range, Ref: elementRef(inst)})
		}
		d.Sections = append(d.Sections, DetailSection{Label: "Overridden By", Rows: rows})
	}

	appendUsageSection(d, m)
	return d
}

// Detail assembles the type view.
func (t *TypeDef) Detail(m *Model) *Detail {
	d := &Detail{ID: t.ElementID(), Kind: KindType, Title: t.Name}

	var def []DetailRow
	if t.Description != "" {
		def = append(def, DetailRow{Name: "description", Value: t.Description})
	}
	if t.URI != "" {
		def = append(def, DetailRow{Name: "uri", Value: t.URI})
	}
	if t.Base != "" {
		def = append(def, DetailRow{Name: "base", Value: t.Base})
	}
	if len(def) > 0 {
		d.Sections = append(d.Sections, DetailSection{Label: "Definition", Rows: def})
	}

	appendUsageSection(d, m)
	return d
}

// Detail assembles the variable view: label, mapped class, data type, unit
// and CURIE.
func (v *Variable) Detail(m *Model) *Detail {
	d := &Detail{ID: v.ElementID(), Kind: KindVariable, Title: v.Name}

	var def []DetailRow
	if v.Description != "" {
		def = append(def, DetailRow{Name: "description", Value: v.Description})
	}
	if v.Label != "" {
		def = append(def, DetailRow{Name: "label", Value: v.Label})
	}
	if v.Class != "" {
		row := DetailRow{Name: "class", Value: v.Class}
		if c, ok := m.Class(v.Class); ok {
			row.Ref = elementRef(c)
		} else {
			row.Ref = &RangeRef{Kind: RangeMissing, Name: v.Class}
		}
		def = append(def, row)
	}
	if v.DataType != "" {
		def = append(def, DetailRow{Name: "data type", Value: v.DataType})
	}
	if v.Unit != "" {
		def = append(def, DetailRow{Name: "unit", Value: v.Unit})
	}
	if v.CURIE != "" {
		def = append(def, DetailRow{Name: "curie", Value: v.CURIE})
	}
	if len(def) > 0 {
		d.Sections = append(d.Sections, DetailSection{Label: "Definition", Rows: def})
	}

	return d
}

// attributeRow renders one class attribute: range, flags and provenance in
// the value, the resolved range as the ref.
func attributeRow(m *Model, name string, attr *Attribute) DetailRow {
	rangeName := attr.Range
	var provenance []string

	if slot, ok := m.Slot(attr.SlotID); ok && slot.IsOverride() {
		provenance = append(provenance, "overrides "+slot.Overrides)
		if rangeName == "" {
			rangeName = slot.Range
		}
	}
	if attr.InheritedFrom != "" {
		provenance = append(provenance, "inherited from "+attr.InheritedFrom)
	}

	var parts []string
	if rangeName != "" {
		parts = append(parts, rangeName)
	}
	if attr.Required {
		parts = append(parts, "required")
	}
	if attr.Multivalued {
		parts = append(parts, "multivalued")
	}
	if attr.Identifier {
		parts = append(parts, "identifier")
	}
	parts = append(parts, provenance...)

	row := DetailRow{Name: name, Value: strings.Join(parts, ", ")}
	if rangeName != "" {
		rr := m.ResolveRange(rangeName)
		row.Ref = &rr
	}
	return row
}

// elementRef builds a row reference pointing at a schema element.
func elementRef(el Element) *RangeRef {
	return &RangeRef{
		Kind: RangeKind(el.ElementKind()),
		Name: el.ElementName(),
		ID:   el.ElementID(),
	}
}

func appendUsageSection(d *Detail, m *Model) {
	usages := m.usages[d.ID]
	if len(usages) == 0 {
		return
	}
	rows := make([]DetailRow, 0, len(usages))
	for _, u := range usages {
		value := string(u.Role)
		if u.Context != "" {
			value = fmt.Sprintf("%s (%s)", value, u.Context)
		}
		rows = append(rows, DetailRow{
			Name:  u.Name,
			Value: value,
			Ref:   &RangeRef{Kind: RangeKind(u.Kind), Name: u.Name, ID: u.ID},
		})
	}
	d.Sections = append(d.Sections, DetailSection{Label: "Usage", Rows: rows})
}
