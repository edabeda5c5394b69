package schema

import (
	"reflect"
	"testing"
)

func TestTree(t *testing.T) {
	m := newTestModel(t)

	roots := m.Tree()
	var rootNames []string
	for _, n := range roots {
		rootNames = append(rootNames, n.Class.Name)
	}

	// Cycle members and classes with missing parents surface as roots
	want := []string{"CycleA", "CycleB", "Entity", "Ghost"}
	if !reflect.DeepEqual(rootNames, want) {
		t.Fatalf("roots = %v, want %v", rootNames, want)
	}

	var entity *ClassNode
	for _, n := range roots {
		if n.Class.Name == "Entity" {
			entity = n
		}
	}
	if entity == nil {
		t.Fatal("Entity root not found")
	}
	if entity.Depth != 0 {
		t.Errorf("Entity depth = %d, want 0", entity.Depth)
	}

	var childNames []string
	for _, c := range entity.Children {
		childNames = append(childNames, c.Class.Name)
	}
	if !reflect.DeepEqual(childNames, []string{"Specimen", "Subject"}) {
		t.Errorf("Entity children = %v, want [Specimen Subject]", childNames)
	}

	specimen := entity.Children[0]
	if specimen.Depth != 1 {
		t.Errorf("Specimen depth = %d, want 1", specimen.Depth)
	}
	if len(specimen.Children) != 1 || specimen.Children[0].Class.Name != "BloodSpecimen" {
		t.Errorf("Specimen children = %v, want [BloodSpecimen]", specimen.Children)
	}
	if specimen.Children[0].Depth != 2 {
		t.Errorf("BloodSpecimen depth = %d, want 2", specimen.Children[0].Depth)
	}
}

func TestTreeCycleEdgesCut(t *testing.T) {
	m := newTestModel(t)

	for _, n := range m.Tree() {
		if n.Class.Name == "CycleA" || n.Class.Name == "CycleB" {
			if len(n.Children) != 0 {
				t.Errorf("%s should have no children after the cycle edge is cut, got %d",
					n.Class.Name, len(n.Children))
			}
		}
	}
}

func TestSubtree(t *testing.T) {
	m := newTestModel(t)

	node := m.Subtree("Specimen")
	if node == nil {
		t.Fatal("Subtree(Specimen) = nil")
	}
	if node.Class.Name != "Specimen" || node.Depth != 0 {
		t.Errorf("subtree root = %s depth %d, want Specimen depth 0", node.Class.Name, node.Depth)
	}
	if len(node.Children) != 1 || node.Children[0].Class.Name != "BloodSpecimen" {
		t.Errorf("subtree children = %v, want [BloodSpecimen]", node.Children)
	}

	if got := m.Subtree("NoSuchClass"); got != nil {
		t.Errorf("Subtree(NoSuchClass) = %v, want nil", got)
	}
}

func TestFlatten(t *testing.T) {
	m := newTestModel(t)

	flat := m.Flatten()
	want := []FlatNode{
		{Name: "CycleA", Depth: 0, ChildCount: 0},
		{Name: "CycleB", Depth: 0, ChildCount: 0},
		{Name: "Entity", Depth: 0, Abstract: true, ChildCount: 2},
		{Name: "Specimen", Depth: 1, ChildCount: 1},
		{Name: "BloodSpecimen", Depth: 2, ChildCount: 0},
		{Name: "Subject", Depth: 1, ChildCount: 0},
		{Name: "Ghost", Depth: 0, ChildCount: 0},
	}

	if !reflect.DeepEqual(flat, want) {
		t.Errorf("Flatten() = %v, want %v", flat, want)
	}
}

func TestFlattenFrom(t *testing.T) {
	m := newTestModel(t)

	flat := m.FlattenFrom("Specimen")
	want := []FlatNode{
		{Name: "Specimen", Depth: 0, ChildCount: 1},
		{Name: "BloodSpecimen", Depth: 1, ChildCount: 0},
	}
	if !reflect.DeepEqual(flat, want) {
		t.Errorf("FlattenFrom(Specimen) = %v, want %v", flat, want)
	}

	if got := m.FlattenFrom("NoSuchClass"); got != nil {
		t.Errorf("FlattenFrom(NoSuchClass) = %v, want nil", got)
	}
}

func TestTreeDeterminism(t *testing.T) {
	m := newTestModel(t)

	first := m.Flatten()
	for i := 0; i < 5; i++ {
		if got := m.Flatten(); !reflect.DeepEqual(got, first) {
			t.Fatalf("Flatten() changed between calls: %v vs %v", got, first)
		}
	}
}
