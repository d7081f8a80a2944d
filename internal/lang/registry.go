package lang

import (
	"path/filepath"
	"strings"
)

// Registry maps file extensions to their LanguageSupport.
type Registry struct {
	byExt map[string]LanguageSupport
	all   []LanguageSupport
}

// NewRegistry builds a Registry over the given languages. A later language in
// the list wins extension collisions, but the built-in set has none.
func NewRegistry(languages ...LanguageSupport) *Registry {
	r := &Registry{byExt: make(map[string]LanguageSupport), all: languages}
	for _, l := range languages {
		for _, ext := range l.Extensions() {
			r.byExt[ext] = l
		}
	}
	return r
}

// Default returns the registry wired with every language this module ships.
func Default() *Registry {
	return NewRegistry(
		NewTypeScript(),
		NewJavaScript(),
		NewPython(),
		NewRust(),
		NewRuby(),
		NewJava(),
		NewC(),
		NewPHP(),
	)
}

// Lookup resolves the LanguageSupport for a file path by extension. ok is
// false when no registered language owns that extension.
func (r *Registry) Lookup(path string) (LanguageSupport, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.byExt[ext]
	return l, ok
}

// All returns every registered language, in registration order.
func (r *Registry) All() []LanguageSupport {
	return r.all
}

// Capabilities returns one entry per registered language. A language that
// implements a Capabilities() Capabilities method contributes that summary;
// any other language contributes only its ID. None of the built-in languages
// implements that method, so for Default() every entry carries only the
// language ID and no symbol types, variants or decorators.
func (r *Registry) Capabilities() []Capabilities {
	caps := make([]Capabilities, 0, len(r.all))
	for _, l := range r.all {
		if c, ok := l.(interface{ Capabilities() Capabilities }); ok {
			caps = append(caps, c.Capabilities())
			continue
		}
		caps = append(caps, Capabilities{Language: l.ID()})
	}
	return caps
}
