package query

import (
	"sort"
	"strings"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

// flattenModel converts the model into element records for the search index.
// Parent links classes to their superclass and override slots to their base
// slot; RangeRef points at the resolved range element. Doc widens the
// searchable text beyond name and description.
func flattenModel(m *schema.Model) []storage.ElementRecord {
	var records []storage.ElementRecord

	for _, el := range m.ElementsOfKind(schema.KindClass) {
		c := el.(*schema.Class)
		rec := storage.ElementRecord{
			ID:          c.ElementID(),
			Kind:        string(schema.KindClass),
			Name:        c.Name,
			Description: c.Description,
			Flags:       map[string]bool{"abstract": c.Abstract},
			Doc:         classDoc(c),
		}
		if c.Parent != "" {
			rec.Parent = schema.ElementIDFor(schema.KindClass, c.Parent)
		}
		records = append(records, rec)
	}

	for _, s := range m.Slots(true) {
		rec := storage.ElementRecord{
			ID:          s.ElementID(),
			Kind:        string(schema.KindSlot),
			Name:        s.Name,
			Description: s.Description,
			Flags: map[string]bool{
				"required":    s.Required,
				"multivalued": s.Multivalued,
				"identifier":  s.Identifier,
			},
			Doc: joinDoc(s.Name, s.Description),
		}
		if s.IsOverride() {
			rec.Parent = schema.ElementIDFor(schema.KindSlot, s.Overrides)
		}
		if ref := m.ResolveRange(s.Range); ref.ID != "" {
			rec.RangeRef = ref.ID
		}
		records = append(records, rec)
	}

	for _, el := range m.ElementsOfKind(schema.KindEnum) {
		e := el.(*schema.Enum)
		records = append(records, storage.ElementRecord{
			ID:          e.ElementID(),
			Kind:        string(schema.KindEnum),
			Name:        e.Name,
			Description: e.Description,
			Doc:         enumDoc(e),
		})
	}

	for _, el := range m.ElementsOfKind(schema.KindType) {
		t := el.(*schema.TypeDef)
		records = append(records, storage.ElementRecord{
			ID:          t.ElementID(),
			Kind:        string(schema.KindType),
			Name:        t.Name,
			Description: t.Description,
			Doc:         joinDoc(t.Name, t.Description, t.Base),
		})
	}

	for _, el := range m.ElementsOfKind(schema.KindVariable) {
		v := el.(*schema.Variable)
		rec := storage.ElementRecord{
			ID:          v.ElementID(),
			Kind:        string(schema.KindVariable),
			Name:        v.Name,
			Description: v.Description,
			Doc:         joinDoc(v.Name, v.Label, v.Description),
		}
		if v.Class != "" {
			if c, ok := m.Class(v.Class); ok {
				rec.RangeRef = c.ElementID()
			}
		}
		records = append(records, rec)
	}

	return records
}

// classDoc folds attribute names and descriptions into the searchable text
// so queries like "collection date" find the owning class.
func classDoc(c *schema.Class) string {
	parts := []string{c.Name, c.Description}

	names := make([]string, 0, len(c.Attributes))
	for name := range c.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	parts = append(parts, names...)

	return joinDoc(parts...)
}

// enumDoc folds permissible value texts and descriptions into the
// searchable text.
func enumDoc(e *schema.Enum) string {
	parts := []string{e.Name, e.Description}

	texts := make([]string, 0, len(e.PermissibleValues))
	for text, pv := range e.PermissibleValues {
		texts = append(texts, text)
		if pv != nil && pv.Description != "" {
			texts = append(texts, pv.Description)
		}
	}
	sort.Strings(texts)
	parts = append(parts, texts...)

	return joinDoc(parts...)
}

func joinDoc(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
