package search

import "github.com/codelens-dev/codelens/internal/vectorstore"

// buildFilter translates Params' structural filters into the VectorStore
// filter grammar, ANDed together. Returns nil if no structural filter was
// requested.
func buildFilter(p Params) *vectorstore.Filter {
	var leaves []vectorstore.Filter

	if p.SymbolType != "" {
		leaves = append(leaves, vectorstore.Leaf("symbol_type", vectorstore.OpEquals, p.SymbolType))
	}
	if p.Variant != "" {
		leaves = append(leaves, vectorstore.Leaf("variant", vectorstore.OpEquals, p.Variant))
	}
	if p.Decorator != "" {
		leaves = append(leaves, vectorstore.Leaf("decorators", vectorstore.OpEquals, p.Decorator))
	}
	if p.Language != "" {
		leaves = append(leaves, vectorstore.Leaf("language", vectorstore.OpEquals, p.Language))
	}
	if p.IsExported != nil {
		leaves = append(leaves, vectorstore.Leaf("is_exported", vectorstore.OpEquals, boolToInt(*p.IsExported)))
	}
	if p.IsAsync != nil {
		leaves = append(leaves, vectorstore.Leaf("is_async", vectorstore.OpEquals, boolToInt(*p.IsAsync)))
	}
	if p.IsStatic != nil {
		leaves = append(leaves, vectorstore.Leaf("is_static", vectorstore.OpEquals, boolToInt(*p.IsStatic)))
	}
	if p.IsAbstract != nil {
		leaves = append(leaves, vectorstore.Leaf("is_abstract", vectorstore.OpEquals, boolToInt(*p.IsAbstract)))
	}
	if p.MinComplexity != nil {
		leaves = append(leaves, vectorstore.Leaf("complexity", vectorstore.OpGreaterOrEqual, *p.MinComplexity))
	}
	if p.MaxComplexity != nil {
		leaves = append(leaves, vectorstore.Leaf("complexity", vectorstore.OpLessOrEqual, *p.MaxComplexity))
	}
	if p.HasDocumentation != nil {
		leaves = append(leaves, vectorstore.Leaf("has_documentation", vectorstore.OpEquals, boolToInt(*p.HasDocumentation)))
	}
	if p.ParentScope != "" {
		leaves = append(leaves, vectorstore.Leaf("parent_scope", vectorstore.OpEquals, p.ParentScope))
	}
	if p.Imports != "" {
		leaves = append(leaves, vectorstore.Leaf("imports", vectorstore.OpEquals, p.Imports))
	}
	if p.SymbolName != "" {
		leaves = append(leaves, vectorstore.Leaf("symbol_name", vectorstore.OpEquals, p.SymbolName))
	}

	if len(leaves) == 0 {
		return nil
	}
	f := vectorstore.All(leaves...)
	return &f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
