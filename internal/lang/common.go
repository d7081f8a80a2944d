package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// walkTree recursively walks a tree-sitter tree, calling visitor for each
// node. Returning false from visitor skips that node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTree(node.Child(uint(i)), visitor)
	}
}

// extractNodeText returns the verbatim source text spanned by node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func startLine(node *sitter.Node) int { return int(node.StartPosition().Row) + 1 }
func endLine(node *sitter.Node) int   { return int(node.EndPosition().Row) + 1 }

func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var out []*sitter.Node
	if node == nil {
		return out
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			out = append(out, child)
		}
	}
	return out
}

// nearestAncestorName walks up from node looking for the first ancestor
// whose kind is in boundaryKinds, returning the text of its "name" field.
// Used to populate parentScope.
func nearestAncestorName(node *sitter.Node, source []byte, boundaryKinds map[string]bool) string {
	parent := node.Parent()
	for parent != nil {
		if boundaryKinds[parent.Kind()] {
			if nameNode := parent.ChildByFieldName("name"); nameNode != nil {
				return extractNodeText(nameNode, source)
			}
		}
		parent = parent.Parent()
	}
	return ""
}

// countDecisionPoints walks node's subtree counting occurrences of the given
// node kinds, the generic half of LanguageSupport.CalculateComplexity: it
// counts decision points, plus one for the entry.
func countDecisionPoints(node *sitter.Node, kinds map[string]bool) int {
	count := 1
	walkTree(node, func(n *sitter.Node) bool {
		if kinds[n.Kind()] {
			count++
		}
		return true
	})
	return count
}

// precedingComment reports whether node is immediately preceded by a
// doc-comment-shaped sibling (line/block comment directly above it, no blank
// line between). Works for C-style (//, /** */) comment grammars.
func precedingComment(node *sitter.Node, commentKinds map[string]bool) bool {
	prev := node.PrevSibling()
	if prev == nil {
		return false
	}
	return commentKinds[prev.Kind()] && endLine(prev) == startLine(node)-1
}

// trimTrailingBlankLines removes trailing blank lines from chunk content.
func trimTrailingBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

func hasPrefix(name string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
