package extract

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// normalizeWeak produces the best-effort canonical form for languages that
// have no reliable re-serializer: comment nodes are removed by span, then
// every whitespace run collapses to a single space.
//
// This path is strictly weaker than the Python path's ast.unparse
// round-trip: it erases comments and formatting but cannot canonicalize
// structurally-equivalent code written differently (for example, reordered
// members inside a class body still read as modified), and whitespace
// inside string literals is collapsed along with everything else. That
// asymmetry is deliberate and surfaced here rather than hidden.
func normalizeWeak(node *sitter.Node, source []byte) string {
	text := stripComments(node, source)
	return collapseWhitespace(text)
}

// stripComments returns the node's source text with every comment node
// inside its span blanked out.
func stripComments(node *sitter.Node, source []byte) string {
	start := node.StartByte()
	end := node.EndByte()

	var comments [][2]uint
	collectComments(node, &comments)

	if len(comments) == 0 {
		return string(source[start:end])
	}

	var sb strings.Builder
	pos := start
	for _, span := range comments {
		if span[0] > pos {
			sb.Write(source[pos:span[0]])
		}
		// Replace the comment with a space so adjacent tokens don't fuse.
		sb.WriteByte(' ')
		pos = span[1]
	}
	if pos < end {
		sb.Write(source[pos:end])
	}
	return sb.String()
}

func collectComments(node *sitter.Node, spans *[][2]uint) {
	if node == nil {
		return
	}
	if node.Kind() == "comment" {
		*spans = append(*spans, [2]uint{node.StartByte(), node.EndByte()})
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		collectComments(node.Child(uint(i)), spans)
	}
}

// collapseWhitespace reduces every whitespace run to a single space and
// trims the ends.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
