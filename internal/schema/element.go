package schema

// Element is the common interface over classes, enums, slots, types and
// variables. Concrete structs are returned to callers; the interface exists
// for uniform listing, lookup and detail rendering.
type Element interface {
	// ElementID returns the canonical "kind:id" identifier.
	ElementID() string
	ElementKind() ElementKind
	ElementName() string
	ElementDescription() string

	// Detail assembles the kind-specific renderable detail view. The model
	// supplies cross-element context (lineage, usage, variables).
	Detail(m *Model) *Detail
}

func (c *Class) ElementID() string          { return ElementIDFor(KindClass, c.ID) }
func (c *Class) ElementKind() ElementKind   { return KindClass }
func (c *Class) ElementName() string        { return c.Name }
func (c *Class) ElementDescription() string { return c.Description }

func (s *Slot) ElementID() string          { return ElementIDFor(KindSlot, s.ID) }
func (s *Slot) ElementKind() ElementKind   { return KindSlot }
func (s *Slot) ElementName() string        { return s.Name }
func (s *Slot) ElementDescription() string { return s.Description }

func (e *Enum) ElementID() string          { return ElementIDFor(KindEnum, e.ID) }
func (e *Enum) ElementKind() ElementKind   { return KindEnum }
func (e *Enum) ElementName() string        { return e.Name }
func (e *Enum) ElementDescription() string { return e.Description }

func (t *TypeDef) ElementID() string          { return ElementIDFor(KindType, t.ID) }
func (t *TypeDef) ElementKind() ElementKind   { return KindType }
func (t *TypeDef) ElementName() string        { return t.Name }
func (t *TypeDef) ElementDescription() string { return t.Description }

func (v *Variable) ElementID() string          { return ElementIDFor(KindVariable, v.ID) }
func (v *Variable) ElementKind() ElementKind   { return KindVariable }
func (v *Variable) ElementName() string        { return v.Name }
func (v *Variable) ElementDescription() string { return v.Description }
