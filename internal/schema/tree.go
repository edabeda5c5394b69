package schema

// ClassNode is one node of the class inheritance tree.
type ClassNode struct {
	Class    *Class       `json:"class"`
	Children []*ClassNode `json:"children,omitempty"`
	Depth    int          `json:"depth"`
}

// FlatNode is one row of the pre-order flattened hierarchy, for list-style
// rendering.
type FlatNode struct {
	Name       string `json:"name"`
	Depth      int    `json:"depth"`
	Abstract   bool   `json:"abstract,omitempty"`
	ChildCount int    `json:"childCount"`
}

// Tree returns the class inheritance forest. Roots and children are sorted
// by name; nodes are built fresh on every call so callers may annotate them.
func (m *Model) Tree() []*ClassNode {
	nodes := make([]*ClassNode, 0, len(m.roots))
	for _, root := range m.roots {
		nodes = append(nodes, m.buildNode(root, 0))
	}
	return nodes
}

// Subtree returns the tree rooted at one class, or nil when the class does
// not exist.
func (m *Model) Subtree(className string) *ClassNode {
	if _, ok := m.classes[className]; !ok {
		return nil
	}
	return m.buildNode(className, 0)
}

func (m *Model) buildNode(className string, depth int) *ClassNode {
	node := &ClassNode{Class: m.classes[className], Depth: depth}
	for _, child := range m.children[className] {
		node.Children = append(node.Children, m.buildNode(child, depth+1))
	}
	return node
}

// Flatten returns the pre-order traversal of the class forest.
func (m *Model) Flatten() []FlatNode {
	var out []FlatNode
	for _, root := range m.roots {
		out = m.flattenInto(out, root, 0)
	}
	return out
}

// FlattenFrom returns the pre-order traversal of one subtree.
func (m *Model) FlattenFrom(className string) []FlatNode {
	if _, ok := m.classes[className]; !ok {
		return nil
	}
	return m.flattenInto(nil, className, 0)
}

func (m *Model) flattenInto(out []FlatNode, className string, depth int) []FlatNode {
	c := m.classes[className]
	kids := m.children[className]
	out = append(out, FlatNode{
		Name:       c.Name,
		Depth:      depth,
		Abstract:   c.Abstract,
		ChildCount: len(kids),
	})
	for _, child := range kids {
		out = m.flattenInto(out, child, depth+1)
	}
	return out
}
