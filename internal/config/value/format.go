package value

import "strings"

// FormatList joins already formatted elements into list text that Parse
// reads back as a one-level list.
func FormatList(elems []string) string {
	return strings.Join(elems, ",")
}

// FormatMatrix joins already formatted rows into nested list text that
// Parse reads back as a list of lists.
func FormatMatrix(rows [][]string) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = "[" + FormatList(row) + "]"
	}
	return strings.Join(parts, ",")
}

// Format renders a node tree as raw text. The root's children are written
// without enclosing brackets, mirroring the implicit top-level list.
func Format(n *Node) string {
	if n.IsLeaf() {
		return n.Value
	}
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = formatNested(child)
	}
	return strings.Join(parts, ",")
}

func formatNested(n *Node) string {
	if n.IsLeaf() {
		return n.Value
	}
	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		parts[i] = formatNested(child)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
