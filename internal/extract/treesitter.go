package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// childrenByKind finds all child nodes with the given kind.
func childrenByKind(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// firstErrorLine walks the tree for the first ERROR or missing node and
// returns its 1-based line, or 0 when none is found.
func firstErrorLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.IsError() || node.IsMissing() {
		return int(node.StartPosition().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if line := firstErrorLine(node.Child(uint(i))); line > 0 {
			return line
		}
	}
	return 0
}
