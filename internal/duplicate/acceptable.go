package duplicate

import "regexp"

// AcceptablePattern names a shape of duplication that is conventionally not
// worth flagging (trivial guards, boilerplate getters). Exposed as data so
// callers can inspect or override the set rather than patching hardcoded
// logic.
type AcceptablePattern struct {
	Name    string
	Matches func(normalizedContent string) bool
}

var trivialGuardRe = regexp.MustCompile(`^\s*if\s*\(?\s*V\d+\s*==\s*(nil|null|None)\s*\)?\s*\{?\s*(return|raise|throw)`)
var trivialGetterRe = regexp.MustCompile(`^\s*\w*\s*\(?\s*\)?\s*\{?\s*return\s+V\d+\.V\d+\s*;?\s*\}?\s*$`)

// AcceptablePatterns is the default heuristic set evaluated when
// Params.IgnoreAcceptablePatterns is set.
func AcceptablePatterns() []AcceptablePattern {
	return []AcceptablePattern{
		{Name: "nil-check-guard", Matches: trivialGuardRe.MatchString},
		{Name: "trivial-getter", Matches: trivialGetterRe.MatchString},
	}
}

// matchesAcceptablePattern reports whether any of patterns matches
// normalized. A group is treated as acceptable when every instance matches
// some pattern; the instances need not all match the same one.
func matchesAcceptablePattern(normalized string, patterns []AcceptablePattern) bool {
	for _, p := range patterns {
		if p.Matches(normalized) {
			return true
		}
	}
	return false
}
