package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

var rubyBoundaryKinds = map[string]bool{
	"class":         true,
	"module":        true,
	"method":        true,
	"singleton_method": true,
}

var rubyReserved = buildReservedWords(
	"begin", "break", "case", "class", "def", "defined?", "do", "else", "elsif",
	"end", "ensure", "false", "for", "if", "in", "module", "next", "nil", "not",
	"or", "redo", "rescue", "retry", "return", "self", "super", "then", "true",
	"undef", "unless", "until", "when", "while", "yield", "attr_accessor",
	"attr_reader", "attr_writer", "require", "require_relative",
)

type rubySupport struct {
	grammar *sitter.Language
}

// NewRuby returns LanguageSupport for .rb files.
func NewRuby() LanguageSupport {
	return &rubySupport{grammar: sitter.NewLanguage(ruby.Language())}
}

func (r *rubySupport) ID() string                     { return "ruby" }
func (r *rubySupport) Extensions() []string           { return []string{".rb"} }
func (r *rubySupport) ReservedWords() map[string]bool { return rubyReserved }
func (r *rubySupport) Grammar() *sitter.Language       { return r.grammar }

func (r *rubySupport) IsChunkBoundary(node *sitter.Node) bool {
	return rubyBoundaryKinds[node.Kind()]
}

func (r *rubySupport) CalculateComplexity(node *sitter.Node) int {
	kinds := map[string]bool{
		"if": true, "elsif": true, "unless": true, "while": true, "until": true,
		"for": true, "rescue": true, "when": true, "binary": true, "conditional": true,
	}
	return countDecisionPoints(node, kinds)
}

func (r *rubySupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "call" {
			method := n.ChildByFieldName("method")
			if method != nil {
				name := extractNodeText(method, source)
				if name == "require" || name == "require_relative" {
					if args := n.ChildByFieldName("arguments"); args != nil && args.ChildCount() > 0 {
						imports = append(imports, strings.Trim(extractNodeText(args.Child(0), source), `"'`))
					}
				}
			}
		}
		return true
	})
	return imports
}

func (r *rubySupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		md.SymbolName = extractNodeText(nameNode, source)
	}

	switch node.Kind() {
	case "class":
		md.SymbolType = "class"
		if superclass := node.ChildByFieldName("superclass"); superclass != nil {
			if strings.Contains(extractNodeText(superclass, source), "Struct") {
				md.Variant = "dataclass"
			}
		}
	case "module":
		md.SymbolType = "module"
	case "singleton_method":
		md.SymbolType = "method"
		md.IsStatic = true
		md.Variant = "classmethod"
		md.ParentScope = nearestAncestorName(node, source, map[string]bool{"class": true, "module": true})
	case "method":
		md.SymbolType = "method"
		md.ParentScope = nearestAncestorName(node, source, map[string]bool{"class": true, "module": true})
		if md.ParentScope == "" {
			md.SymbolType = "function"
		}
		if strings.Contains(extractNodeText(node, source), "yield") {
			md.Variant = "generator"
		}
	}

	md.IsExported = md.SymbolName != "" && !strings.HasPrefix(md.SymbolName, "_")
	md.HasDocumentation = precedingComment(node, map[string]bool{"comment": true})

	return md
}
