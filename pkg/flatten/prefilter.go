package flatten

import "github.com/cloudflare/ahocorasick"

// anchorFilter uses Aho-Corasick to cheaply decide whether a text can
// contain an include directive before any regex work happens. No token hit
// means the substitution loop is skipped entirely and the text passes
// through untouched.
type anchorFilter struct {
	matcher *ahocorasick.Matcher
}

func newAnchorFilter(tokens ...string) *anchorFilter {
	return &anchorFilter{
		matcher: ahocorasick.NewStringMatcher(tokens),
	}
}

// hits reports whether any anchor token occurs in the text.
func (f *anchorFilter) hits(text []byte) bool {
	return len(f.matcher.Match(text)) > 0
}
