package segment

import (
	"regexp"
	"strings"
)

// MatchPattern builds a regular expression matching the canonical
// serialization of any key that contains at least key's components,
// whatever other components are interleaved with them.
//
// Canonical order is total, so the components of a superset appear in the
// same relative order as in key and a single left-to-right pattern suffices.
func MatchPattern(key Key) *regexp.Regexp {
	canon := key.Canonical()
	if len(canon) == 0 {
		return regexp.MustCompile(`^.*$`)
	}

	var b strings.Builder
	b.WriteString(`^(?:.*\|)?`)
	for i, c := range canon {
		if i > 0 {
			b.WriteString(`(?:\|.*)?\|`)
		}
		b.WriteString(regexp.QuoteMeta(c.String()))
	}
	b.WriteString(`(?:\|.*)?$`)
	return regexp.MustCompile(b.String())
}
