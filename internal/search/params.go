package search

// Params is the search pipeline's input, with its defaults applied by
// Normalize.
type Params struct {
	Query   string
	Limit   int
	Pattern string
	Include string

	SymbolType       string
	Variant          string
	Decorator        string
	Language         string
	IsExported       *bool
	IsAsync          *bool
	IsStatic         *bool
	IsAbstract       *bool
	MinComplexity    *int
	MaxComplexity    *int
	HasDocumentation *bool
	ParentScope      string
	Imports          string
	SymbolName       string

	MinScore     float64
	MaxPerFile   int
	MaxPerSymbol int
	Rerank       bool
}

// Normalize applies the pipeline's documented defaults in place.
func (p *Params) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.MaxPerFile <= 0 {
		p.MaxPerFile = 1
	}
	if p.MaxPerSymbol <= 0 {
		p.MaxPerSymbol = 1
	}
}

// Result is one search pipeline hit.
type Result struct {
	File          string   `json:"file"`
	StartLine     int      `json:"start_line"`
	EndLine       int      `json:"end_line"`
	SymbolName    string   `json:"symbol_name,omitempty"`
	SymbolType    string   `json:"symbol_type"`
	Complexity    int      `json:"complexity"`
	ParentScope   string   `json:"parent_scope,omitempty"`
	IsExported    bool     `json:"is_exported"`
	Content       string   `json:"content"`
	SemanticScore float64  `json:"semantic_score"`
	RerankScore   *float64 `json:"rerank_score,omitempty"`
}

// Summary is the metadata accompanying a search's results.
type Summary struct {
	Matches int `json:"matches"`
	Indexed int `json:"indexed"`
}
