package schema

import (
	"reflect"
	"testing"
)

func TestUsageOfClass(t *testing.T) {
	m := newTestModel(t)

	usages := m.UsageOf("class:Entity")
	want := []Usage{
		{Role: RoleParent, Kind: KindClass, ID: "class:Specimen", Name: "Specimen"},
		{Role: RoleParent, Kind: KindClass, ID: "class:Subject", Name: "Subject"},
	}
	if !reflect.DeepEqual(usages, want) {
		t.Errorf("UsageOf(Entity) = %v, want %v", usages, want)
	}
}

func TestUsageOfClassWithRangeAndMappings(t *testing.T) {
	m := newTestModel(t)

	usages := m.UsageOf("class:Specimen")
	want := []Usage{
		{Role: RoleParent, Kind: KindClass, ID: "class:BloodSpecimen", Name: "BloodSpecimen"},
		{Role: RoleRange, Kind: KindSlot, ID: "slot:parent_specimen", Name: "parent_specimen"},
		{Role: RoleMapping, Kind: KindVariable, ID: "variable:specimen_source", Name: "specimen_source", Context: "Specimen source"},
		{Role: RoleMapping, Kind: KindVariable, ID: "variable:specimen_source#2", Name: "specimen_source", Context: "Specimen source (duplicate)"},
	}
	if !reflect.DeepEqual(usages, want) {
		t.Errorf("UsageOf(Specimen) = %v, want %v", usages, want)
	}
}

func TestUsageOfEnum(t *testing.T) {
	m := newTestModel(t)

	usages := m.UsageOf("enum:SpecimenTypeEnum")
	want := []Usage{
		// Class-local attribute ranges come from the class, slot ranges
		// from the slot entry
		{Role: RoleRange, Kind: KindClass, ID: "class:BloodSpecimen", Name: "BloodSpecimen", Context: "source_material"},
		{Role: RoleRange, Kind: KindSlot, ID: "slot:specimen_type", Name: "specimen_type"},
	}
	if !reflect.DeepEqual(usages, want) {
		t.Errorf("UsageOf(SpecimenTypeEnum) = %v, want %v", usages, want)
	}
}

func TestUsageOfSlot(t *testing.T) {
	m := newTestModel(t)

	usages := m.UsageOf("slot:specimen_type")
	want := []Usage{
		{Role: RoleAttribute, Kind: KindClass, ID: "class:BloodSpecimen", Name: "BloodSpecimen", Context: "specimen_type"},
		{Role: RoleAttribute, Kind: KindClass, ID: "class:Specimen", Name: "Specimen", Context: "specimen_type"},
	}
	if !reflect.DeepEqual(usages, want) {
		t.Errorf("UsageOf(specimen_type) = %v, want %v", usages, want)
	}
}

func TestUsageOfBaseSlotWithOverride(t *testing.T) {
	m := newTestModel(t)

	usages := m.UsageOf("slot:id")
	want := []Usage{
		{Role: RoleAttribute, Kind: KindClass, ID: "class:Entity", Name: "Entity", Context: "id"},
		{Role: RoleOverride, Kind: KindSlot, ID: "slot:id-Specimen", Name: "id", Context: "Specimen"},
	}
	if !reflect.DeepEqual(usages, want) {
		t.Errorf("UsageOf(id) = %v, want %v", usages, want)
	}
}

func TestUsageOfType(t *testing.T) {
	m := newTestModel(t)

	usages := m.UsageOf("type:AgeType")
	want := []Usage{
		{Role: RoleRange, Kind: KindSlot, ID: "slot:age", Name: "age"},
	}
	if !reflect.DeepEqual(usages, want) {
		t.Errorf("UsageOf(AgeType) = %v, want %v", usages, want)
	}
}

func TestUsageOfBareNameAndUnknown(t *testing.T) {
	m := newTestModel(t)

	// Bare names resolve before usage lookup
	if got := m.UsageOf("Subject"); len(got) != 1 || got[0].Role != RoleMapping {
		t.Errorf("UsageOf(Subject) = %v, want one mapping usage", got)
	}

	if got := m.UsageOf("class:NoSuchClass"); got != nil {
		t.Errorf("UsageOf(NoSuchClass) = %v, want nil", got)
	}

	// Elements nothing points at return an empty list, not nil
	if got := m.UsageOf("enum:EmptyEnum"); len(got) != 0 {
		t.Errorf("UsageOf(EmptyEnum) = %v, want empty", got)
	}
}

func TestUsageReturnsCopy(t *testing.T) {
	m := newTestModel(t)

	first := m.UsageOf("class:Entity")
	if len(first) == 0 {
		t.Fatal("expected usages for Entity")
	}
	first[0].Name = "mutated"

	second := m.UsageOf("class:Entity")
	if second[0].Name == "mutated" {
		t.Error("UsageOf should return a copy, not the internal slice")
	}
}

func TestOverridesOf(t *testing.T) {
	m := newTestModel(t)

	insts := m.OverridesOf("id")
	if len(insts) != 1 || insts[0].ID != "id-Specimen" {
		t.Errorf("OverridesOf(id) = %v, want [id-Specimen]", insts)
	}

	if got := m.OverridesOf("specimen_type"); len(got) != 0 {
		t.Errorf("OverridesOf(specimen_type) = %v, want none", got)
	}
}
