// Package value implements the textual grammar shared by every
// configuration value.
//
// A raw value is an implicit, comma-separated list. Square brackets open a
// nested list, to any depth:
//
//	42                  single value
//	1, 2, 3             list of three values
//	[1, 2], [3, 4, 5]   list of two lists
//	"a, b", c           quoted values may contain separators
//
// Parse only recognizes structure. Turning leaf text into typed values is
// the job of the convert package.
package value

// Node is one element of a parsed value.
//
// A node is either a leaf, holding text in Value, or a container whose
// Children are the elements of a bracketed list. Value is empty for
// containers. An empty bracket pair is a container with a non-nil, empty
// Children slice.
type Node struct {
	Value    string
	Children []*Node
}

// IsLeaf reports whether the node holds text rather than child nodes.
func (n *Node) IsLeaf() bool {
	return n.Children == nil
}

// Depth returns the nesting depth below n. A leaf has depth 0, a list of
// leaves (or an empty list) depth 1 and a list of lists depth 2.
func (n *Node) Depth() int {
	if n.IsLeaf() {
		return 0
	}
	depth := 1
	for _, child := range n.Children {
		if d := child.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// Leaves returns the text of every leaf below n in document order.
func (n *Node) Leaves() []string {
	if n.IsLeaf() {
		return []string{n.Value}
	}
	var out []string
	for _, child := range n.Children {
		out = append(out, child.Leaves()...)
	}
	return out
}
