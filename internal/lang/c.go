package lang

import (
	"strings"

	clang "github.com/tree-sitter/tree-sitter-c/bindings/go"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

var cBoundaryKinds = map[string]bool{
	"function_definition": true,
	"struct_specifier":    true,
	"enum_specifier":      true,
	"union_specifier":     true,
	"declaration":         true, // top-level const/extern globals
}

var cReserved = buildReservedWords(
	"auto", "break", "case", "char", "const", "continue", "default", "do",
	"double", "else", "enum", "extern", "float", "for", "goto", "if", "inline",
	"int", "long", "register", "restrict", "return", "short", "signed",
	"sizeof", "static", "struct", "switch", "typedef", "union", "unsigned",
	"void", "volatile", "while",
)

type cSupport struct {
	grammar *sitter.Language
}

// NewC returns LanguageSupport for .c/.h files.
func NewC() LanguageSupport {
	return &cSupport{grammar: sitter.NewLanguage(clang.Language())}
}

func (cs *cSupport) ID() string                     { return "c" }
func (cs *cSupport) Extensions() []string           { return []string{".c", ".h"} }
func (cs *cSupport) ReservedWords() map[string]bool { return cReserved }
func (cs *cSupport) Grammar() *sitter.Language       { return cs.grammar }

func (cs *cSupport) IsChunkBoundary(node *sitter.Node) bool {
	if node.Kind() == "declaration" {
		// Only top-level declarations that declare a function pointer/global,
		// not every local statement — local "declaration" nodes are never
		// direct children of translation_unit.
		parent := node.Parent()
		return parent != nil && parent.Kind() == "translation_unit"
	}
	return cBoundaryKinds[node.Kind()]
}

func (cs *cSupport) CalculateComplexity(node *sitter.Node) int {
	kinds := map[string]bool{
		"if_statement": true, "for_statement": true, "while_statement": true,
		"do_statement": true, "case_statement": true, "binary_expression": true,
		"conditional_expression": true,
	}
	return countDecisionPoints(node, kinds)
}

func (cs *cSupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "preproc_include" {
			if path := findChildByType(n, "string_literal"); path != nil {
				imports = append(imports, strings.Trim(extractNodeText(path, source), `"`))
			} else if path := findChildByType(n, "system_lib_string"); path != nil {
				imports = append(imports, strings.Trim(extractNodeText(path, source), "<>"))
			}
		}
		return true
	})
	return imports
}

func (cs *cSupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	switch node.Kind() {
	case "function_definition":
		md.SymbolType = "function"
		declarator := node.ChildByFieldName("declarator")
		if name := functionName(declarator, source); name != "" {
			md.SymbolName = name
		}
		md.IsStatic = hasChildText(node, source, "static")
	case "struct_specifier":
		md.SymbolType = "type"
		md.Variant = "struct"
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			md.SymbolName = extractNodeText(nameNode, source)
		}
	case "enum_specifier":
		md.SymbolType = "enum"
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			md.SymbolName = extractNodeText(nameNode, source)
		}
	case "union_specifier":
		md.SymbolType = "type"
		md.Variant = "struct"
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			md.SymbolName = extractNodeText(nameNode, source)
		}
	case "declaration":
		md.SymbolType = "variable"
		md.Variant = "constant"
		if declarator := node.ChildByFieldName("declarator"); declarator != nil {
			md.SymbolName = extractNodeText(declarator, source)
		}
	}

	// C has no module-level export keyword; "static" is the sole visibility
	// marker and it means file-private, so exported == not static.
	md.IsExported = !hasChildText(node, source, "static")
	md.HasDocumentation = precedingComment(node, map[string]bool{"comment": true})

	return md
}

// functionName unwraps nested pointer/function declarators to find the
// identifier, since `int *foo(...)` nests a pointer_declarator around the
// function_declarator.
func functionName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier":
			return extractNodeText(node, source)
		case "function_declarator", "pointer_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return ""
		}
	}
	return ""
}
