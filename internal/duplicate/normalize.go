package duplicate

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// stringLiteralRe matches single- or double-quoted string literals so their
// contents are never mistaken for identifier tokens.
var stringLiteralRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)

// normalizeIdentifiers replaces every identifier token in content with a
// canonical placeholder ("V1", "V2", ...) assigned per distinct symbol name,
// preserving reserved words and the contents of string literals.
func normalizeIdentifiers(content string, reserved map[string]bool) string {
	var out strings.Builder
	placeholders := make(map[string]string)
	next := 1

	literalSpans := stringLiteralRe.FindAllStringIndex(content, -1)
	inLiteral := func(start int) bool {
		for _, span := range literalSpans {
			if start >= span[0] && start < span[1] {
				return true
			}
		}
		return false
	}

	last := 0
	for _, loc := range identifierRe.FindAllStringIndex(content, -1) {
		start, end := loc[0], loc[1]
		out.WriteString(content[last:start])
		token := content[start:end]

		switch {
		case inLiteral(start):
			out.WriteString(token)
		case reserved[token]:
			out.WriteString(token)
		case isNumericLiteral(token):
			out.WriteString(token)
		default:
			placeholder, ok := placeholders[token]
			if !ok {
				placeholder = fmt.Sprintf("V%d", next)
				next++
				placeholders[token] = placeholder
			}
			out.WriteString(placeholder)
		}
		last = end
	}
	out.WriteString(content[last:])
	return out.String()
}

func isNumericLiteral(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
