package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var tsBoundaryKinds = map[string]bool{
	"class_declaration":       true,
	"interface_declaration":   true,
	"type_alias_declaration":  true,
	"enum_declaration":        true,
	"function_declaration":    true,
	"method_definition":       true,
	"abstract_method_signature": true,
}

var tsDecisionKinds = map[string]bool{
	"if_statement":          true,
	"for_statement":         true,
	"for_in_statement":      true,
	"while_statement":       true,
	"do_statement":          true,
	"catch_clause":          true,
	"case_clause":           true,
	"ternary_expression":    true,
	"binary_expression":     true, // refined by operator check in calculateComplexity
}

var tsReserved = buildReservedWords(
	"break", "case", "catch", "class", "const", "continue", "debugger", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally", "for",
	"function", "if", "import", "in", "instanceof", "interface", "let", "new",
	"null", "return", "super", "switch", "this", "throw", "true", "try", "typeof",
	"var", "void", "while", "with", "yield", "async", "await", "static", "public",
	"private", "protected", "readonly", "abstract", "implements", "namespace",
	"type", "as", "from", "of",
)

func buildReservedWords(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type typeScriptSupport struct {
	grammar *sitter.Language
	id      string
}

// NewTypeScript returns LanguageSupport for .ts/.tsx files.
func NewTypeScript() LanguageSupport {
	return &typeScriptSupport{
		grammar: sitter.NewLanguage(typescript.LanguageTypescript()),
		id:      "typescript",
	}
}

// NewJavaScript returns LanguageSupport for .js/.jsx/.mjs/.cjs files, reusing
// the TypeScript grammar since it is a strict syntactic superset.
func NewJavaScript() LanguageSupport {
	return &typeScriptSupport{
		grammar: sitter.NewLanguage(typescript.LanguageTypescript()),
		id:      "javascript",
	}
}

func (t *typeScriptSupport) ID() string { return t.id }

func (t *typeScriptSupport) Extensions() []string {
	if t.id == "javascript" {
		return []string{".js", ".jsx", ".mjs", ".cjs"}
	}
	return []string{".ts", ".tsx"}
}

func (t *typeScriptSupport) ReservedWords() map[string]bool { return tsReserved }
func (t *typeScriptSupport) Grammar() *sitter.Language       { return t.grammar }

func (t *typeScriptSupport) IsChunkBoundary(node *sitter.Node) bool {
	return tsBoundaryKinds[node.Kind()]
}

func (t *typeScriptSupport) CalculateComplexity(node *sitter.Node) int {
	count := 1
	walkTree(node, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "catch_clause", "case_clause", "ternary_expression":
			count++
		case "binary_expression":
			op := findChildByType(n, "&&")
			if op == nil {
				op = findChildByType(n, "||")
			}
			if op != nil {
				count++
			}
		}
		return true
	})
	return count
}

func (t *typeScriptSupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "import_statement" {
			if src := n.ChildByFieldName("source"); src != nil {
				imports = append(imports, strings.Trim(extractNodeText(src, source), `"'`))
			}
		}
		return true
	})
	return imports
}

func (t *typeScriptSupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil {
		md.SymbolName = extractNodeText(nameNode, source)
	}

	switch node.Kind() {
	case "class_declaration":
		md.SymbolType = "class"
		if hasModifier(node, source, "abstract") {
			md.IsAbstract = true
			md.Variant = "abstract"
		}
	case "interface_declaration":
		md.SymbolType = "type"
		md.Variant = "interface"
	case "type_alias_declaration":
		md.SymbolType = "type"
		md.Variant = "alias"
	case "enum_declaration":
		md.SymbolType = "enum"
	case "function_declaration":
		md.SymbolType = "function"
		md.IsAsync = hasModifier(node, source, "async")
	case "method_definition", "abstract_method_signature":
		md.SymbolType = "method"
		md.IsAsync = hasModifier(node, source, "async")
		md.IsStatic = hasModifier(node, source, "static")
		if node.Kind() == "abstract_method_signature" {
			md.IsAbstract = true
		}
		if nameNode != nil && strings.HasPrefix(extractNodeText(nameNode, source), "get ") {
			md.Variant = "property"
		}
	}

	md.IsExported = t.isExported(node, source)
	md.Decorators = t.extractDecorators(node, source)
	md.ParentScope = nearestAncestorName(node, source, map[string]bool{
		"class_declaration": true, "interface_declaration": true,
	})
	md.HasDocumentation = precedingComment(node, map[string]bool{"comment": true})

	return md
}

func (t *typeScriptSupport) isExported(node *sitter.Node, source []byte) bool {
	// export and export_statement wrap the declaration; walk up looking for it.
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "export_statement" {
			return true
		}
		if p.Kind() == "program" {
			break
		}
	}
	return false
}

func hasModifier(node *sitter.Node, source []byte, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if extractNodeText(child, source) == keyword {
			return true
		}
	}
	return false
}

func (t *typeScriptSupport) extractDecorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	// Decorators are preceding siblings of kind "decorator" on the nearest
	// export_statement/class member wrapper.
	target := node
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "export_statement" {
			target = p
		}
	}
	for sib := target.PrevSibling(); sib != nil && sib.Kind() == "decorator"; sib = sib.PrevSibling() {
		decorators = append([]string{extractNodeText(sib, source)}, decorators...)
	}
	return decorators
}
