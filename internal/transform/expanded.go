package transform

import (
	"encoding/json"
	"fmt"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/schema"
)

// Expanded is the gen-linkml expanded schema document: inherited slots are
// merged into class attributes, overrides appear as slot_usage, and no
// inherited_from provenance exists yet. Only the fields the transform needs
// are decoded; everything else in the file is ignored.
type Expanded struct {
	Name     string    `json:"name,omitempty"`
	Version  string    `json:"version,omitempty"`
	Prefixes PrefixMap `json:"prefixes,omitempty"`

	Classes map[string]*ExpandedClass `json:"classes"`
	Slots   map[string]*ExpandedSlot  `json:"slots"`
	Enums   map[string]*ExpandedEnum  `json:"enums"`
	Types   map[string]*ExpandedType  `json:"types"`

	Variables []*schema.Variable `json:"variables,omitempty"`
}

// ExpandedClass is a class definition with merged attributes and raw
// slot_usage overrides.
type ExpandedClass struct {
	Name        string `json:"name,omitempty"`
	IsA         string `json:"is_a,omitempty"`
	Abstract    bool   `json:"abstract,omitempty"`
	Description string `json:"description,omitempty"`

	Attributes map[string]*ExpandedSlot `json:"attributes,omitempty"`
	SlotUsage  map[string]*ExpandedSlot `json:"slot_usage,omitempty"`
}

// ExpandedSlot is a slot definition as it appears in global slots, class
// attributes and slot_usage blocks. The three share the LinkML slot shape.
type ExpandedSlot struct {
	Name        string `json:"name,omitempty"`
	Range       string `json:"range,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Multivalued bool   `json:"multivalued,omitempty"`
	Identifier  bool   `json:"identifier,omitempty"`
}

// ExpandedEnum is an enum definition with its permissible values.
type ExpandedEnum struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	PermissibleValues map[string]*schema.PermissibleValue `json:"permissible_values,omitempty"`
}

// ExpandedType is a named scalar type definition.
type ExpandedType struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri,omitempty"`
	Base        string `json:"base,omitempty"`
}

// PrefixMap maps CURIE prefixes to URI expansions. gen-linkml serializes
// prefixes either as a plain string map or as objects carrying
// prefix_reference; both forms decode.
type PrefixMap map[string]string

func (p *PrefixMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(PrefixMap, len(raw))
	for name, val := range raw {
		var s string
		if err := json.Unmarshal(val, &s); err == nil {
			out[name] = s
			continue
		}
		var obj struct {
			PrefixReference string `json:"prefix_reference"`
		}
		if err := json.Unmarshal(val, &obj); err != nil {
			return fmt.Errorf("prefix %q: %w", name, err)
		}
		out[name] = obj.PrefixReference
	}
	*p = out
	return nil
}
