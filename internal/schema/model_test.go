package schema

import (
	"reflect"
	"testing"
)

// testDocument builds a small schema exercising inheritance, overrides,
// class-local attributes, dangling references and variable mappings.
func testDocument() *Document {
	return &Document{
		Name:    "bdchm",
		Version: "2.1.0",
		Prefixes: map[string]string{
			"OBI":  "http://purl.obolibrary.org/obo/OBI_",
			"NCIT": "http://purl.obolibrary.org/obo/NCIT_",
		},
		Classes: map[string]*Class{
			"Entity": {
				ID: "Entity", Name: "Entity", Abstract: true,
				Description: "Root of the hierarchy",
				Attributes: map[string]*Attribute{
					"id": {SlotID: "id", Range: "string", Required: true, Identifier: true},
				},
			},
			"Specimen": {
				ID: "Specimen", Name: "Specimen", Parent: "Entity",
				Description: "A material sample",
				Attributes: map[string]*Attribute{
					"id":              {SlotID: "id-Specimen", Range: "string", Required: true, InheritedFrom: "Entity"},
					"specimen_type":   {SlotID: "specimen_type", Range: "SpecimenTypeEnum"},
					"parent_specimen": {SlotID: "parent_specimen", Range: "Specimen"},
				},
			},
			"BloodSpecimen": {
				ID: "BloodSpecimen", Name: "BloodSpecimen", Parent: "Specimen",
				Attributes: map[string]*Attribute{
					"specimen_type":   {SlotID: "specimen_type", Range: "SpecimenTypeEnum", InheritedFrom: "Specimen"},
					"volume":          {SlotID: "volume", Range: "decimal"},
					"source_material": {SlotID: "source_material", Range: "SpecimenTypeEnum"},
				},
			},
			"Subject": {
				ID: "Subject", Name: "Subject", Parent: "Entity",
				Attributes: map[string]*Attribute{
					"age": {SlotID: "age", Range: "AgeType"},
				},
			},
			"Ghost":  {ID: "Ghost", Name: "Ghost", Parent: "Phantom"},
			"CycleA": {ID: "CycleA", Name: "CycleA", Parent: "CycleB"},
			"CycleB": {ID: "CycleB", Name: "CycleB", Parent: "CycleA"},
		},
		Slots: map[string]*Slot{
			"id": {
				ID: "id", Name: "id", Range: "string",
				Required: true, Identifier: true,
				Description: "Unique identifier",
			},
			"id-Specimen": {
				ID: "id-Specimen", Name: "id", Range: "string",
				Required: true, Overrides: "id",
				Description: "Specimen identifier",
			},
			"specimen_type":   {ID: "specimen_type", Name: "specimen_type", Range: "SpecimenTypeEnum"},
			"parent_specimen": {ID: "parent_specimen", Name: "parent_specimen", Range: "Specimen"},
			"age":             {ID: "age", Name: "age", Range: "AgeType"},
			"dangling":        {ID: "dangling", Name: "dangling", Range: "NoSuchThing"},
		},
		Enums: map[string]*Enum{
			"SpecimenTypeEnum": {
				ID: "SpecimenTypeEnum", Name: "SpecimenTypeEnum",
				Description: "Kinds of specimen material",
				PermissibleValues: map[string]*PermissibleValue{
					"BLOOD":  {Description: "Venous blood", Meaning: "OBI:0000655"},
					"TISSUE": {Description: "Tissue sample"},
				},
			},
			"EmptyEnum": {ID: "EmptyEnum", Name: "EmptyEnum"},
		},
		Types: map[string]*TypeDef{
			"AgeType": {
				ID: "AgeType", Name: "AgeType",
				URI: "xsd:int", Base: "int",
				Description: "Age in whole years",
			},
		},
		Variables: []*Variable{
			{Name: "Age at Enrollment", Label: "Age at enrollment (years)", Class: "Subject", DataType: "integer", Unit: "years", CURIE: "NCIT:C25150"},
			{Name: "specimen_source", Label: "Specimen source", Class: "Specimen", DataType: "string"},
			{Name: "specimen_source", Label: "Specimen source (duplicate)", Class: "Specimen"},
			{Name: "orphan_var", Label: "Orphan", Class: "NoClass"},
		},
	}
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	return NewModel(testDocument())
}

func TestElementLookup(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		ref      string
		wantKind ElementKind
		wantID   string
		found    bool
	}{
		{"class:Specimen", KindClass, "class:Specimen", true},
		{"Specimen", KindClass, "class:Specimen", true},
		{"SpecimenTypeEnum", KindEnum, "enum:SpecimenTypeEnum", true},
		{"slot:id", KindSlot, "slot:id", true},
		{"id-Specimen", KindSlot, "slot:id-Specimen", true},
		{"variable:age_at_enrollment", KindVariable, "variable:age_at_enrollment", true},
		{"age_at_enrollment", KindVariable, "variable:age_at_enrollment", true},
		{"type:AgeType", KindType, "type:AgeType", true},
		{"class:NoSuchClass", "", "", false},
		{"nothing_here", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			el, ok := m.Element(tt.ref)
			if ok != tt.found {
				t.Fatalf("Element(%q) found = %v, want %v", tt.ref, ok, tt.found)
			}
			if !ok {
				return
			}
			if el.ElementKind() != tt.wantKind {
				t.Errorf("kind = %s, want %s", el.ElementKind(), tt.wantKind)
			}
			if el.ElementID() != tt.wantID {
				t.Errorf("id = %s, want %s", el.ElementID(), tt.wantID)
			}
		})
	}
}

func TestElementLookupCrossKindOrder(t *testing.T) {
	// A bare name present in several namespaces resolves class first
	doc := NewDocument()
	doc.Classes["Thing"] = &Class{ID: "Thing", Name: "Thing"}
	doc.Enums["Thing"] = &Enum{ID: "Thing", Name: "Thing"}
	m := NewModel(doc)

	el, ok := m.Element("Thing")
	if !ok {
		t.Fatal("expected Thing to resolve")
	}
	if el.ElementKind() != KindClass {
		t.Errorf("kind = %s, want class", el.ElementKind())
	}

	// The enum stays reachable with an explicit kind
	el, ok = m.Element("enum:Thing")
	if !ok || el.ElementKind() != KindEnum {
		t.Errorf("enum:Thing resolved to %v, want the enum", el)
	}
}

func TestElementsOfKindExcludesOverrides(t *testing.T) {
	m := newTestModel(t)

	slots := m.ElementsOfKind(KindSlot)
	var names []string
	for _, el := range slots {
		names = append(names, el.ElementName())
		if s := el.(*Slot); s.IsOverride() {
			t.Errorf("override instance %s should not appear in slot listings", s.ID)
		}
	}

	want := []string{"age", "dangling", "id", "parent_specimen", "specimen_type"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("slot names = %v, want %v", names, want)
	}

	// With overrides included the instance shows up
	all := m.Slots(true)
	found := false
	for _, s := range all {
		if s.ID == "id-Specimen" {
			found = true
		}
	}
	if !found {
		t.Error("Slots(true) should include the override instance")
	}
}

func TestStats(t *testing.T) {
	m := newTestModel(t)
	stats := m.Stats()

	if stats.SchemaName != "bdchm" || stats.SchemaVersion != "2.1.0" {
		t.Errorf("schema identity = %s/%s, want bdchm/2.1.0", stats.SchemaName, stats.SchemaVersion)
	}
	if stats.Classes != 7 {
		t.Errorf("Classes = %d, want 7", stats.Classes)
	}
	if stats.Slots != 5 {
		t.Errorf("Slots = %d, want 5", stats.Slots)
	}
	if stats.SlotOverrides != 1 {
		t.Errorf("SlotOverrides = %d, want 1", stats.SlotOverrides)
	}
	if stats.Enums != 2 {
		t.Errorf("Enums = %d, want 2", stats.Enums)
	}
	if stats.Types != 1 {
		t.Errorf("Types = %d, want 1", stats.Types)
	}
	if stats.Variables != 4 {
		t.Errorf("Variables = %d, want 4", stats.Variables)
	}
	if stats.Roots != 4 {
		t.Errorf("Roots = %d, want 4", stats.Roots)
	}
}

func TestVariableIDAssignment(t *testing.T) {
	m := newTestModel(t)

	vars := m.Variables()
	var ids []string
	for _, v := range vars {
		ids = append(ids, v.ID)
	}

	want := []string{"age_at_enrollment", "specimen_source", "specimen_source#2", "orphan_var"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("variable IDs = %v, want %v", ids, want)
	}
}

func TestVariablesFor(t *testing.T) {
	m := newTestModel(t)

	vars := m.VariablesFor("Specimen")
	if len(vars) != 2 {
		t.Fatalf("VariablesFor(Specimen) = %d variables, want 2", len(vars))
	}
	if vars[0].ID != "specimen_source" || vars[1].ID != "specimen_source#2" {
		t.Errorf("variables = %s, %s; want sheet order", vars[0].ID, vars[1].ID)
	}

	if got := m.VariablesFor("Entity"); len(got) != 0 {
		t.Errorf("VariablesFor(Entity) = %v, want none", got)
	}
}

func TestAncestors(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		class string
		want  []string
	}{
		{"BloodSpecimen", []string{"Entity", "Specimen", "BloodSpecimen"}},
		{"Specimen", []string{"Entity", "Specimen"}},
		{"Entity", []string{"Entity"}},
		// Missing parents and cycle membership cut the chain
		{"Ghost", []string{"Ghost"}},
		{"CycleA", []string{"CycleA"}},
		{"NoSuchClass", nil},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			got := m.Ancestors(tt.class)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Ancestors(%s) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestAttributeProvenance(t *testing.T) {
	m := newTestModel(t)

	entity, _ := m.Class("Entity")
	specimen, _ := m.Class("Specimen")
	blood, _ := m.Class("BloodSpecimen")

	if got := m.AttributeProvenance(entity.Attributes["id"]); got != ProvenanceInline {
		t.Errorf("Entity.id provenance = %s, want inline", got)
	}
	// Overridden wins even though the attribute is also inherited
	if got := m.AttributeProvenance(specimen.Attributes["id"]); got != ProvenanceOverridden {
		t.Errorf("Specimen.id provenance = %s, want overridden", got)
	}
	if got := m.AttributeProvenance(blood.Attributes["specimen_type"]); got != ProvenanceInherited {
		t.Errorf("BloodSpecimen.specimen_type provenance = %s, want inherited", got)
	}
}

func TestResolveRange(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		name     string
		wantKind RangeKind
		wantID   string
	}{
		{"Specimen", RangeClass, "class:Specimen"},
		{"SpecimenTypeEnum", RangeEnum, "enum:SpecimenTypeEnum"},
		{"AgeType", RangeType, "type:AgeType"},
		{"string", RangePrimitive, ""},
		{"datetime", RangePrimitive, ""},
		{"NoSuchThing", RangeMissing, ""},
		{"", RangeMissing, ""},
	}

	for _, tt := range tests {
		rr := m.ResolveRange(tt.name)
		if rr.Kind != tt.wantKind {
			t.Errorf("ResolveRange(%q).Kind = %s, want %s", tt.name, rr.Kind, tt.wantKind)
		}
		if rr.ID != tt.wantID {
			t.Errorf("ResolveRange(%q).ID = %q, want %q", tt.name, rr.ID, tt.wantID)
		}
	}
}

func TestNormalizeVariableID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Age at Enrollment", "age_at_enrollment"},
		{"BMI", "bmi"},
		{"heart-rate", "heart_rate"},
		{"  spaced   name  ", "spaced_name"},
		{"a.b/c", "a_b_c"},
		{"already_fine", "already_fine"},
	}

	for _, tt := range tests {
		if got := NormalizeVariableID(tt.input); got != tt.want {
			t.Errorf("NormalizeVariableID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExpandCURIE(t *testing.T) {
	m := newTestModel(t)

	tests := []struct {
		curie string
		want  string
	}{
		{"OBI:0000655", "http://purl.obolibrary.org/obo/OBI_0000655"},
		{"XYZ:123", "XYZ:123"},
		{"no-colon", "no-colon"},
		{":leading", ":leading"},
	}

	for _, tt := range tests {
		if got := m.ExpandCURIE(tt.curie); got != tt.want {
			t.Errorf("ExpandCURIE(%q) = %q, want %q", tt.curie, got, tt.want)
		}
	}
}

func TestNewModelNilDocument(t *testing.T) {
	m := NewModel(nil)

	if stats := m.Stats(); stats.Classes != 0 || stats.Variables != 0 {
		t.Errorf("empty model stats = %+v, want zeros", stats)
	}
	if _, ok := m.Element("anything"); ok {
		t.Error("empty model should resolve nothing")
	}
	if r := m.Validate(); len(r.Findings) != 0 {
		t.Errorf("empty model findings = %v, want none", r.Findings)
	}
}
