package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

var phpBoundaryKinds = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"trait_declaration":     true,
	"enum_declaration":      true,
	"function_definition":   true,
	"method_declaration":    true,
}

var phpReserved = buildReservedWords(
	"abstract", "and", "array", "as", "break", "callable", "case", "catch",
	"class", "clone", "const", "continue", "declare", "default", "do", "echo",
	"else", "elseif", "empty", "enddeclare", "endfor", "endforeach", "endif",
	"endswitch", "endwhile", "extends", "final", "finally", "fn", "for",
	"foreach", "function", "global", "goto", "if", "implements", "include",
	"instanceof", "insteadof", "interface", "isset", "list", "match",
	"namespace", "new", "or", "print", "private", "protected", "public",
	"readonly", "require", "return", "static", "switch", "throw", "trait",
	"try", "unset", "use", "var", "while", "xor", "yield", "this",
)

type phpSupport struct {
	grammar *sitter.Language
}

// NewPHP returns LanguageSupport for .php files.
func NewPHP() LanguageSupport {
	return &phpSupport{grammar: sitter.NewLanguage(php.LanguagePHP())}
}

func (p *phpSupport) ID() string                     { return "php" }
func (p *phpSupport) Extensions() []string           { return []string{".php"} }
func (p *phpSupport) ReservedWords() map[string]bool { return phpReserved }
func (p *phpSupport) Grammar() *sitter.Language       { return p.grammar }

func (p *phpSupport) IsChunkBoundary(node *sitter.Node) bool {
	return phpBoundaryKinds[node.Kind()]
}

func (p *phpSupport) CalculateComplexity(node *sitter.Node) int {
	kinds := map[string]bool{
		"if_statement": true, "for_statement": true, "foreach_statement": true,
		"while_statement": true, "do_statement": true, "catch_clause": true,
		"case_statement": true, "conditional_expression": true, "binary_expression": true,
		"match_expression": true,
	}
	return countDecisionPoints(node, kinds)
}

func (p *phpSupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "namespace_use_declaration" {
			for _, clause := range findChildrenByType(n, "namespace_use_clause") {
				if nameNode := clause.ChildByFieldName("name"); nameNode != nil {
					imports = append(imports, extractNodeText(nameNode, source))
				}
			}
		}
		return true
	})
	return imports
}

func (p *phpSupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		md.SymbolName = extractNodeText(nameNode, source)
	}

	switch node.Kind() {
	case "class_declaration":
		md.SymbolType = "class"
		if phpHasModifier(node, source, "abstract") {
			md.IsAbstract = true
			md.Variant = "abstract"
		}
	case "interface_declaration":
		md.SymbolType = "type"
		md.Variant = "interface"
	case "trait_declaration":
		md.SymbolType = "type"
		md.Variant = "protocol"
	case "enum_declaration":
		md.SymbolType = "enum"
	case "function_definition":
		md.SymbolType = "function"
	case "method_declaration":
		md.SymbolType = "method"
		md.IsStatic = phpHasModifier(node, source, "static")
		md.IsAbstract = phpHasModifier(node, source, "abstract")
		md.ParentScope = nearestAncestorName(node, source, map[string]bool{
			"class_declaration": true, "interface_declaration": true, "trait_declaration": true,
		})
	}

	md.IsExported = !phpHasModifier(node, source, "private") && !phpHasModifier(node, source, "protected")
	md.Decorators = phpAttributes(node, source)
	md.HasDocumentation = precedingComment(node, map[string]bool{"comment": true})

	return md
}

func phpHasModifier(node *sitter.Node, source []byte, keyword string) bool {
	// method_declaration's modifiers are direct children in tree-sitter-php.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == "visibility_modifier" || child.Kind() == "abstract_modifier" || child.Kind() == "static_modifier" {
			if extractNodeText(child, source) == keyword {
				return true
			}
		}
	}
	return false
}

// phpAttributes collects PHP 8 attribute groups (#[...]) that precede node.
func phpAttributes(node *sitter.Node, source []byte) []string {
	var attrs []string
	for sib := node.PrevSibling(); sib != nil && sib.Kind() == "attribute_list"; sib = sib.PrevSibling() {
		attrs = append([]string{strings.TrimSpace(extractNodeText(sib, source))}, attrs...)
	}
	return attrs
}
