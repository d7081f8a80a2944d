// Package chunk defines the Chunk data model and the chunker that extracts
// chunks from a parsed source file.
package chunk

import "fmt"

// Language is one of the registry's supported languages.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageRuby       Language = "ruby"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
	LanguagePHP        Language = "php"
)

// SymbolType is one of the enumerated kinds a chunk's symbol belongs to.
type SymbolType string

const (
	SymbolFunction SymbolType = "function"
	SymbolClass    SymbolType = "class"
	SymbolMethod   SymbolType = "method"
	SymbolTypeDef  SymbolType = "type"
	SymbolVariable SymbolType = "variable"
	SymbolEnum     SymbolType = "enum"
	SymbolModule   SymbolType = "module"
)

// Chunk is the atomic unit stored and retrieved.
type Chunk struct {
	ID          string     `json:"id"`
	File        string     `json:"file"`
	StartLine   int        `json:"start_line"`
	EndLine     int        `json:"end_line"`
	Content     string     `json:"content"`
	ContentHash string     `json:"content_hash"`
	FileHash    string     `json:"file_hash"`
	Language    Language   `json:"language"`
	SymbolName  string     `json:"symbol_name,omitempty"`
	SymbolType  SymbolType `json:"symbol_type"`
	Variant     string     `json:"variant,omitempty"`

	IsExported bool `json:"is_exported"`
	IsAsync    bool `json:"is_async"`
	IsStatic   bool `json:"is_static"`
	IsAbstract bool `json:"is_abstract"`

	Decorators []string `json:"decorators,omitempty"`

	Complexity       int      `json:"complexity"`
	HasDocumentation bool     `json:"has_documentation"`
	ParentScope      string   `json:"parent_scope,omitempty"`
	Imports          []string `json:"imports,omitempty"`

	Embedding []float32 `json:"embedding,omitempty"`
}

// BuildID computes the stable chunk id:
// <relativeFile>#<startLine>-<endLine>#<symbolName?>
func BuildID(file string, startLine, endLine int, symbolName string) string {
	if symbolName == "" {
		return fmt.Sprintf("%s#%d-%d", file, startLine, endLine)
	}
	return fmt.Sprintf("%s#%d-%d#%s", file, startLine, endLine, symbolName)
}
