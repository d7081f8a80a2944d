package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var javaBoundaryKinds = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"method_declaration":    true,
	"constructor_declaration": true,
}

var javaReserved = buildReservedWords(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while", "var", "record", "yield",
)

type javaSupport struct {
	grammar *sitter.Language
}

// NewJava returns LanguageSupport for .java files.
func NewJava() LanguageSupport {
	return &javaSupport{grammar: sitter.NewLanguage(java.Language())}
}

func (j *javaSupport) ID() string                     { return "java" }
func (j *javaSupport) Extensions() []string           { return []string{".java"} }
func (j *javaSupport) ReservedWords() map[string]bool { return javaReserved }
func (j *javaSupport) Grammar() *sitter.Language       { return j.grammar }

func (j *javaSupport) IsChunkBoundary(node *sitter.Node) bool {
	return javaBoundaryKinds[node.Kind()]
}

func (j *javaSupport) CalculateComplexity(node *sitter.Node) int {
	kinds := map[string]bool{
		"if_statement": true, "for_statement": true, "enhanced_for_statement": true,
		"while_statement": true, "do_statement": true, "catch_clause": true,
		"switch_label": true, "ternary_expression": true, "binary_expression": true,
	}
	return countDecisionPoints(node, kinds)
}

func (j *javaSupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		if n.Kind() == "import_declaration" {
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(uint(i))
				if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
					imports = append(imports, extractNodeText(child, source))
				}
			}
		}
		return true
	})
	return imports
}

func (j *javaSupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		md.SymbolName = extractNodeText(nameNode, source)
	}

	switch node.Kind() {
	case "class_declaration":
		md.SymbolType = "class"
		if javaHasModifier(node, source, "abstract") {
			md.IsAbstract = true
			md.Variant = "abstract"
		}
		if hasAnnotation(node, source, "@Entity") || hasAnnotation(node, source, "@Data") {
			md.Variant = "dataclass"
		}
	case "interface_declaration":
		md.SymbolType = "type"
		md.Variant = "interface"
	case "enum_declaration":
		md.SymbolType = "enum"
	case "method_declaration", "constructor_declaration":
		md.SymbolType = "method"
		md.IsStatic = javaHasModifier(node, source, "static")
		md.IsAbstract = javaHasModifier(node, source, "abstract")
		md.ParentScope = nearestAncestorName(node, source, map[string]bool{
			"class_declaration": true, "interface_declaration": true, "enum_declaration": true,
		})
	}

	md.IsExported = javaHasModifier(node, source, "public")
	md.Decorators = javaAnnotations(node, source)
	md.HasDocumentation = precedingComment(node, map[string]bool{"block_comment": true, "line_comment": true})

	return md
}

// javaHasModifier looks for keyword among the node's "modifiers" child,
// since Java modifiers (public, static, abstract, ...) live inside a
// dedicated modifiers node rather than as direct siblings.
func javaHasModifier(node *sitter.Node, source []byte, keyword string) bool {
	modifiers := findChildByType(node, "modifiers")
	if modifiers == nil {
		return false
	}
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		if extractNodeText(modifiers.Child(uint(i)), source) == keyword {
			return true
		}
	}
	return false
}

func hasAnnotation(node *sitter.Node, source []byte, name string) bool {
	for _, a := range javaAnnotations(node, source) {
		if a == name {
			return true
		}
	}
	return false
}

func javaAnnotations(node *sitter.Node, source []byte) []string {
	var out []string
	modifiers := findChildByType(node, "modifiers")
	if modifiers == nil {
		return out
	}
	for i := 0; i < int(modifiers.ChildCount()); i++ {
		child := modifiers.Child(uint(i))
		if child.Kind() == "marker_annotation" || child.Kind() == "annotation" {
			out = append(out, extractNodeText(child, source))
		}
	}
	return out
}
