package schema

// Document is the processed schema document: the canonical wire format
// produced by the transform stage and consumed by the model builder.
// Classes, slots, enums and types are keyed by their in-namespace ID.
type Document struct {
	// Name and Version come from the LinkML schema header when available.
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`

	// Prefixes maps CURIE prefixes to URI expansions.
	Prefixes map[string]string `json:"prefixes,omitempty"`

	Classes map[string]*Class   `json:"classes"`
	Slots   map[string]*Slot    `json:"slots"`
	Enums   map[string]*Enum    `json:"enums"`
	Types   map[string]*TypeDef `json:"types"`

	Variables []*Variable `json:"variables,omitempty"`
}

// Class is a schema class definition. Classes form a single-inheritance
// tree via Parent.
type Class struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Parent      string `json:"parent,omitempty"`
	Abstract    bool   `json:"abstract,omitempty"`
	Description string `json:"description,omitempty"`

	// Attributes are keyed by attribute name. Inherited attributes are
	// merged in by the transform stage with InheritedFrom set.
	Attributes map[string]*Attribute `json:"attributes,omitempty"`
}

// Attribute binds a class to a slot definition.
type Attribute struct {
	// SlotID references the slot carrying the full definition. For
	// attributes overridden via slot_usage this is the override instance
	// ID "{slotName}-{ClassName}", otherwise the base slot name.
	SlotID string `json:"slotId"`

	Range       string `json:"range,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Multivalued bool   `json:"multivalued,omitempty"`
	Identifier  bool   `json:"identifier,omitempty"`

	// InheritedFrom names the ancestor class that originally defined this
	// attribute. Empty for attributes defined on the class itself.
	InheritedFrom string `json:"inherited_from,omitempty"`
}

// Slot is an attribute definition, either a global base slot or a
// per-class override instance.
type Slot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Range       string `json:"range,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Multivalued bool   `json:"multivalued,omitempty"`
	Identifier  bool   `json:"identifier,omitempty"`

	// Overrides names the base slot when this is an override instance
	// (ID "{slotName}-{ClassName}"). Empty for base slots.
	Overrides string `json:"overrides,omitempty"`
}

// IsOverride reports whether the slot is a per-class override instance.
func (s *Slot) IsOverride() bool {
	return s.Overrides != ""
}

// Enum is an enumerated value set.
type Enum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// PermissibleValues is keyed by value text.
	PermissibleValues map[string]*PermissibleValue `json:"permissible_values,omitempty"`
}

// PermissibleValue is one allowed value of an enum.
type PermissibleValue struct {
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`
	Meaning     string `json:"meaning,omitempty"`
}

// TypeDef is a named scalar type definition.
type TypeDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri,omitempty"`
	Base        string `json:"base,omitempty"`
}

// Variable is a column specification from an external tabular dataset,
// mapped many-to-one onto a schema class.
type Variable struct {
	// ID is the normalized variable name, assigned at model build when
	// the loader did not set it. Duplicates get a "#n" suffix.
	ID string `json:"id,omitempty"`

	Name        string `json:"name"`
	Label       string `json:"label,omitempty"`
	Class       string `json:"class,omitempty"`
	DataType    string `json:"dataType,omitempty"`
	Unit        string `json:"unit,omitempty"`
	CURIE       string `json:"curie,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewDocument returns an empty document with all maps initialized.
func NewDocument() *Document {
	return &Document{
		Prefixes: map[string]string{},
		Classes:  map[string]*Class{},
		Slots:    map[string]*Slot{},
		Enums:    map[string]*Enum{},
		Types:    map[string]*TypeDef{},
	}
}

// normalize fills nil maps and back-fills ID/Name fields from map keys so
// the model builder can trust them.
func (d *Document) normalize() {
	if d.Prefixes == nil {
		d.Prefixes = map[string]string{}
	}
	if d.Classes == nil {
		d.Classes = map[string]*Class{}
	}
	if d.Slots == nil {
		d.Slots = map[string]*Slot{}
	}
	if d.Enums == nil {
		d.Enums = map[string]*Enum{}
	}
	if d.Types == nil {
		d.Types = map[string]*TypeDef{}
	}

	for key, c := range d.Classes {
		if c.ID == "" {
			c.ID = key
		}
		if c.Name == "" {
			c.Name = key
		}
	}
	for key, s := range d.Slots {
		if s.ID == "" {
			s.ID = key
		}
		if s.Name == "" {
			s.Name = key
		}
	}
	for key, e := range d.Enums {
		if e.ID == "" {
			e.ID = key
		}
		if e.Name == "" {
			e.Name = key
		}
	}
	for key, td := range d.Types {
		if td.ID == "" {
			td.ID = key
		}
		if td.Name == "" {
			td.Name = key
		}
	}
	for _, e := range d.Enums {
		for text, pv := range e.PermissibleValues {
			if pv != nil && pv.Text == "" {
				pv.Text = text
			}
		}
	}
}
