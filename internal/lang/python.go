package lang

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pyBoundaryKinds = map[string]bool{
	"class_definition":    true,
	"function_definition": true,
}

var pyReserved = buildReservedWords(
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	"self", "cls",
)

type pythonSupport struct {
	grammar *sitter.Language
}

// NewPython returns LanguageSupport for .py files.
func NewPython() LanguageSupport {
	return &pythonSupport{grammar: sitter.NewLanguage(python.Language())}
}

func (p *pythonSupport) ID() string                     { return "python" }
func (p *pythonSupport) Extensions() []string           { return []string{".py", ".pyi"} }
func (p *pythonSupport) ReservedWords() map[string]bool { return pyReserved }
func (p *pythonSupport) Grammar() *sitter.Language       { return p.grammar }

func (p *pythonSupport) IsChunkBoundary(node *sitter.Node) bool {
	return pyBoundaryKinds[node.Kind()]
}

func (p *pythonSupport) CalculateComplexity(node *sitter.Node) int {
	kinds := map[string]bool{
		"if_statement": true, "elif_clause": true, "for_statement": true,
		"while_statement": true, "except_clause": true, "with_statement": true,
		"boolean_operator": true, "conditional_expression": true,
	}
	return countDecisionPoints(node, kinds)
}

func (p *pythonSupport) ExtractImports(root *sitter.Node, source []byte) []string {
	var imports []string
	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			for _, child := range findChildrenByType(n, "dotted_name") {
				imports = append(imports, extractNodeText(child, source))
			}
		case "import_from_statement":
			if mod := n.ChildByFieldName("module_name"); mod != nil {
				imports = append(imports, extractNodeText(mod, source))
			}
		}
		return true
	})
	return imports
}

func (p *pythonSupport) ExtractMetadata(node *sitter.Node, source []byte, imports []string) Metadata {
	md := Metadata{Imports: imports}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		md.SymbolName = extractNodeText(nameNode, source)
	}

	decorators := p.extractDecorators(node, source)
	md.Decorators = decorators

	switch node.Kind() {
	case "class_definition":
		md.SymbolType = "class"
		if hasDecorator(decorators, "@dataclass") {
			md.Variant = "dataclass"
		}
		for _, base := range p.baseClasses(node, source) {
			if strings.Contains(base, "Protocol") {
				md.Variant = "protocol"
			}
			if strings.Contains(base, "BaseModel") || strings.Contains(base, "Schema") {
				md.Variant = "schema"
			}
			if strings.Contains(base, "ABC") {
				md.IsAbstract = true
			}
		}
	case "function_definition":
		md.IsAsync = hasChildText(node, source, "async")
		if p.isMethod(node) {
			md.SymbolType = "method"
			md.ParentScope = nearestAncestorName(node, source, map[string]bool{"class_definition": true})
			switch {
			case hasDecorator(decorators, "@classmethod"):
				md.Variant = "classmethod"
				md.IsStatic = true
			case hasDecorator(decorators, "@staticmethod"):
				md.Variant = "classmethod"
				md.IsStatic = true
			case hasDecorator(decorators, "@property"):
				md.Variant = "property"
			case p.isGenerator(node):
				md.Variant = "generator"
			case hasDecorator(decorators, "@abstractmethod"):
				md.IsAbstract = true
			}
		} else {
			md.SymbolType = "function"
			if p.isGenerator(node) {
				md.Variant = "generator"
			}
		}
	}

	if md.ParentScope == "" {
		md.ParentScope = nearestAncestorName(node, source, map[string]bool{"class_definition": true})
	}

	md.IsExported = p.isExported(md.SymbolName)
	md.HasDocumentation = p.hasDocstring(node)

	return md
}

func (p *pythonSupport) isMethod(node *sitter.Node) bool {
	parent := node.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	if parent != nil && parent.Kind() == "block" {
		parent = parent.Parent()
	}
	return parent != nil && parent.Kind() == "class_definition"
}

func (p *pythonSupport) isGenerator(node *sitter.Node) bool {
	found := false
	walkTree(node, func(n *sitter.Node) bool {
		if n.Kind() == "yield" {
			found = true
			return false
		}
		// don't descend into nested function/class defs
		if n != node && (n.Kind() == "function_definition" || n.Kind() == "class_definition") {
			return false
		}
		return true
	})
	return found
}

func (p *pythonSupport) baseClasses(node *sitter.Node, source []byte) []string {
	var bases []string
	argList := node.ChildByFieldName("superclasses")
	if argList == nil {
		return bases
	}
	for i := 0; i < int(argList.ChildCount()); i++ {
		child := argList.Child(uint(i))
		if child.Kind() == "identifier" || child.Kind() == "attribute" {
			bases = append(bases, extractNodeText(child, source))
		}
	}
	return bases
}

// isExported follows Python convention: leading underscore absent. __all__
// membership is not tracked per-chunk here; the binary underscore
// convention is the practical signal available at chunk level.
func (p *pythonSupport) isExported(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func (p *pythonSupport) hasDocstring(node *sitter.Node) bool {
	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return false
	}
	first := body.Child(0)
	if first.Kind() != "expression_statement" {
		return false
	}
	expr := first.Child(0)
	return expr != nil && expr.Kind() == "string"
}

func (p *pythonSupport) extractDecorators(node *sitter.Node, source []byte) []string {
	var decorators []string
	// Python decorators are "decorated_definition" wrapping the def/class;
	// if node's parent is decorated_definition, collect its decorator children.
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return decorators
	}
	for _, d := range findChildrenByType(parent, "decorator") {
		decorators = append(decorators, "@"+strings.TrimPrefix(extractNodeText(d, source), "@"))
	}
	return decorators
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if strings.HasPrefix(d, name) {
			return true
		}
	}
	return false
}

func hasChildText(node *sitter.Node, source []byte, text string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if extractNodeText(node.Child(uint(i)), source) == text {
			return true
		}
	}
	return false
}
