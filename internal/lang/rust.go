package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var rustBoundaryKinds = map[string]bool{
	"struct_item":   true,
	"enum_item":     true,
	"trait_item":    true,
	"function_item": true,
	"impl_item":     true,
}

var rustReserved = buildReservedWords(
	"as", "break", "const", "continue", "crate", "else", "enum", "extern",
	"false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
	"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
	"super", "trait", "true", "type", "unsafe", "use", "where", "while",
	"async", "await", "dyn",
)

type rustSupport struct {
	grammar *sitter.Language
}

// NewRust returns LanguageSupport for .rs files.
func NewRust() LanguageSupport {
	return &rustSupport{grammar: sitter.NewLanguage(rust.Language())}
}

func (r *rustSupport) ID() string                     { return "rust" }
func (r *rustSupport) Extensions() []string           { return []string{".rs"} }
func (r *rustSupport) ReservedWords() map[string]bool { return rustReserved }
func (r *rustSupport) Grammar() *sitter.Language       { return r.grammar }

func (r *rustSupport) IsChunkBoundary(node *sitter.Node) bool {
	// impl_item is not itself a chunk boundary; its function_item children are,
	// via the normal walk, but its fallback-metadata ParentScope (the type
	// being impl'd) needs to be resolvable by nearestAncestorName, so impl_item
	// still participates in the walk (the chunker does not prune it).
	return rustBoundaryKinds[node.Kind()] && node.Kind() != "impl_item"
}

func (r *rustSupport) CalculateComplexity(node *sitter.Node) int {
	kinds := map[string]bool{
		"if_expression": true, "match_arm": true, "for_expression": true,
		"while_expression": true, "loop_expression": true, "binary_expression": true,
	}
	return countDecisionPoints(node, kinds)
}

func (r *rustSupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "use_declaration" {
			if arg := n.ChildByFieldName("argument"); arg != nil {
				imports = append(imports, extractNodeText(arg, source))
			}
		}
		return true
	})
	return imports
}

func (r *rustSupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		md.SymbolName = extractNodeText(nameNode, source)
	}

	switch node.Kind() {
	case "struct_item":
		md.SymbolType = "type"
		md.Variant = "struct"
	case "enum_item":
		md.SymbolType = "enum"
	case "trait_item":
		md.SymbolType = "type"
		md.Variant = "protocol"
	case "function_item":
		md.IsAsync = hasChildText(node, source, "async")
		if impl := r.enclosingImpl(node); impl != nil {
			md.SymbolType = "method"
			if typeNode := impl.ChildByFieldName("type"); typeNode != nil {
				md.ParentScope = extractNodeText(typeNode, source)
			}
			if r.firstParamIsSelf(node) {
				md.IsStatic = false
			} else {
				md.IsStatic = true
				md.Variant = "classmethod"
			}
		} else {
			md.SymbolType = "function"
		}
	}

	md.IsExported = hasChildText(node, source, "pub")
	md.HasDocumentation = r.hasDocComment(node)

	return md
}

func (r *rustSupport) enclosingImpl(node *sitter.Node) *sitter.Node {
	parent := node.Parent() // declaration_list
	if parent == nil {
		return nil
	}
	grand := parent.Parent()
	if grand != nil && grand.Kind() == "impl_item" {
		return grand
	}
	return nil
}

func (r *rustSupport) firstParamIsSelf(node *sitter.Node) bool {
	params := node.ChildByFieldName("parameters")
	if params == nil || params.ChildCount() == 0 {
		return false
	}
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(uint(i))
		if child.Kind() == "self_parameter" {
			return true
		}
	}
	return false
}

func (r *rustSupport) hasDocComment(node *sitter.Node) bool {
	prev := node.PrevSibling()
	return prev != nil && strings.HasPrefix(prev.Kind(), "line_comment")
}
