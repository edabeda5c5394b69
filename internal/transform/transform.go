// Package transform converts expanded gen-linkml schema documents into the
// processed form consumed by the model layer. The expanded input has
// inherited slots merged into class attributes and overrides as slot_usage
// blocks; the processed output carries computed inherited_from provenance,
// slot override instances with IDs "{slot}-{Class}", and none of the
// redundancy of the generator output.
package transform

import (
	"fmt"
	"sort"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// Stats summarizes one transform run.
type Stats struct {
	Classes       int `json:"classes"`
	SlotsBase     int `json:"slotsBase"`
	SlotOverrides int `json:"slotOverrides"`
	Enums         int `json:"enums"`
	Types         int `json:"types"`
	Variables     int `json:"variables"`

	// Warnings records slot_usage entries that match no class attribute.
	Warnings []string `json:"warnings,omitempty"`
}

// Transform converts an expanded document into the processed form. The
// transform never fails: malformed relationships surface as warnings here
// or as findings when the model is built.
func Transform(exp *Expanded) (*schema.Document, *Stats) {
	if exp == nil {
		exp = &Expanded{}
	}

	doc := schema.NewDocument()
	doc.Name = exp.Name
	doc.Version = exp.Version
	for pfx, uri := range exp.Prefixes {
		doc.Prefixes[pfx] = uri
	}

	stats := &Stats{}
	hierarchy := buildHierarchy(exp.Classes)
	transformClasses(exp, hierarchy, doc)
	transformSlots(exp, doc, stats)
	transformEnums(exp, doc)
	transformTypes(exp, doc)

	if len(exp.Variables) > 0 {
		doc.Variables = make([]*schema.Variable, 0, len(exp.Variables))
		for _, v := range exp.Variables {
			dup := *v
			doc.Variables = append(doc.Variables, &dup)
		}
	}

	stats.Classes = len(doc.Classes)
	for _, s := range doc.Slots {
		if s.IsOverride() {
			stats.SlotOverrides++
		} else {
			stats.SlotsBase++
		}
	}
	stats.Enums = len(doc.Enums)
	stats.Types = len(doc.Types)
	stats.Variables = len(doc.Variables)
	return doc, stats
}

// buildHierarchy maps class name to is_a parent name.
func buildHierarchy(classes map[string]*ExpandedClass) map[string]string {
	hierarchy := make(map[string]string, len(classes))
	for name, def := range classes {
		hierarchy[name] = def.IsA
	}
	return hierarchy
}

// definingClass walks the ancestor chain to find the class that originally
// defined attrName. Returns "" when the attribute originates on className
// itself. The visited set cuts inheritance cycles.
func definingClass(className, attrName string, classes map[string]*ExpandedClass, hierarchy map[string]string) string {
	current := className
	parent := hierarchy[current]
	seen := map[string]bool{current: true}

	for parent != "" && !seen[parent] {
		seen[parent] = true
		parentDef := classes[parent]
		if parentDef == nil {
			break
		}
		if _, ok := parentDef.Attributes[attrName]; ok {
			// Defined on the parent too, keep walking to the original definer
			current = parent
			parent = hierarchy[current]
			continue
		}
		break
	}

	if current != className {
		return current
	}
	return ""
}

func transformClasses(exp *Expanded, hierarchy map[string]string, doc *schema.Document) {
	for className, classDef := range exp.Classes {
		attrs := make(map[string]*schema.Attribute, len(classDef.Attributes))
		for attrName, attrDef := range classDef.Attributes {
			slotID := attrName
			if _, ok := classDef.SlotUsage[attrName]; ok {
				slotID = attrName + "-" + className
			}
			attrs[attrName] = &schema.Attribute{
				SlotID:        slotID,
				Range:         attrDef.Range,
				Required:      attrDef.Required,
				Multivalued:   attrDef.Multivalued,
				Identifier:    attrDef.Identifier,
				InheritedFrom: definingClass(className, attrName, exp.Classes, hierarchy),
			}
		}
		doc.Classes[className] = &schema.Class{
			ID:          className,
			Name:        className,
			Parent:      classDef.IsA,
			Abstract:    classDef.Abstract,
			Description: classDef.Description,
			Attributes:  attrs,
		}
	}
}

func transformSlots(exp *Expanded, doc *schema.Document, stats *Stats) {
	for slotName, slotDef := range exp.Slots {
		doc.Slots[slotName] = &schema.Slot{
			ID:          slotName,
			Name:        slotName,
			Range:       slotDef.Range,
			Description: slotDef.Description,
			Required:    slotDef.Required,
			Multivalued: slotDef.Multivalued,
			Identifier:  slotDef.Identifier,
		}
	}

	// Sorted iteration keeps warnings and base-slot synthesis deterministic
	for _, className := range sortedKeys(exp.Classes) {
		classDef := exp.Classes[className]
		for _, slotName := range sortedKeys(classDef.SlotUsage) {
			merged := classDef.Attributes[slotName]
			if merged == nil {
				stats.Warnings = append(stats.Warnings,
					fmt.Sprintf("slot_usage for %q in class %q matches no attribute", slotName, className))
				continue
			}

			instanceID := slotName + "-" + className
			doc.Slots[instanceID] = &schema.Slot{
				ID:          instanceID,
				Name:        slotName,
				Range:       merged.Range,
				Description: merged.Description,
				Required:    merged.Required,
				Multivalued: merged.Multivalued,
				Identifier:  merged.Identifier,
				Overrides:   slotName,
			}

			// The base slot may exist only as class attributes
			if _, ok := doc.Slots[slotName]; !ok {
				if base := synthesizeBaseSlot(className, slotName, exp.Classes); base != nil {
					doc.Slots[slotName] = base
				}
			}
		}
	}
}

// synthesizeBaseSlot recovers a base definition for a slot that has no
// global entry, walking ancestors for the nearest definition that is not
// itself a slot_usage override. The visited set cuts inheritance cycles.
func synthesizeBaseSlot(className, slotName string, classes map[string]*ExpandedClass) *schema.Slot {
	classDef := classes[className]
	if classDef == nil {
		return nil
	}

	seen := map[string]bool{className: true}
	parentName := classDef.IsA
	var baseAttr *ExpandedSlot

	for parentName != "" && !seen[parentName] {
		seen[parentName] = true
		parentClass := classes[parentName]
		if parentClass == nil {
			break
		}
		if attr, ok := parentClass.Attributes[slotName]; ok {
			baseAttr = attr
			if _, overridden := parentClass.SlotUsage[slotName]; overridden {
				// Parent overrides too, keep walking up
				parentName = parentClass.IsA
				continue
			}
			break
		}
		parentName = parentClass.IsA
	}

	if baseAttr == nil {
		return nil
	}
	return &schema.Slot{
		ID:          slotName,
		Name:        slotName,
		Range:       baseAttr.Range,
		Description: baseAttr.Description,
		Required:    baseAttr.Required,
		Multivalued: baseAttr.Multivalued,
		Identifier:  baseAttr.Identifier,
	}
}

func transformEnums(exp *Expanded, doc *schema.Document) {
	for enumName, enumDef := range exp.Enums {
		e := &schema.Enum{
			ID:          enumName,
			Name:        enumName,
			Description: enumDef.Description,
		}
		if len(enumDef.PermissibleValues) > 0 {
			e.PermissibleValues = make(map[string]*schema.PermissibleValue, len(enumDef.PermissibleValues))
			for text, pv := range enumDef.PermissibleValues {
				if pv == nil {
					e.PermissibleValues[text] = &schema.PermissibleValue{Text: text}
					continue
				}
				dup := *pv
				if dup.Text == "" {
					dup.Text = text
				}
				e.PermissibleValues[text] = &dup
			}
		}
		doc.Enums[enumName] = e
	}
}

func transformTypes(exp *Expanded, doc *schema.Document) {
	for typeName, typeDef := range exp.Types {
		doc.Types[typeName] = &schema.TypeDef{
			ID:          typeName,
			Name:        typeName,
			Description: typeDef.Description,
			URI:         typeDef.URI,
			Base:        typeDef.Base,
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
