// Package flatten inlines textual include directives, turning a candidate
// file plus the files it references into one standalone text. It is not a
// preprocessor: directives are matched as line patterns, so an include
// sitting in a comment or behind an ifdef is inlined like any other.
package flatten

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// MaxPasses bounds the substitution loop. Inlined content can carry its own
// directives, so the text is rescanned; five passes cover any realistic
// nesting depth and guarantee termination under include cycles.
const MaxPasses = 5

// Flattener expands include directives for any dialect. Directive patterns
// are compiled once per include token and reused across candidates.
type Flattener struct {
	directives map[string]*directive // include token -> compiled pattern
}

// New creates a flattener.
func New() *Flattener {
	return &Flattener{
		directives: make(map[string]*directive),
	}
}

// Flatten reads the root file and substitutes every include directive with
// the contents of its target, resolved against the root file's directory.
// Missing targets are replaced with nothing. Directives still present after
// MaxPasses are left as-is. Text without any directive token is returned
// byte-identical. The only error is an unreadable root.
func (f *Flattener) Flatten(rootPath string, d *types.Dialect) (string, error) {
	data, err := os.ReadFile(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", rootPath, err)
	}

	text := string(data)
	dir := filepath.Dir(rootPath)
	dve := f.directiveFor(d.IncludeToken)

	for pass := 0; pass < MaxPasses; pass++ {
		if !dve.anchored([]byte(text)) {
			break
		}

		substituted := false
		text = dve.re.ReplaceAllStringFunc(text, func(match string) string {
			substituted = true
			target := dve.targetOf(match)
			content, err := os.ReadFile(filepath.Join(dir, target))
			if err != nil {
				// Target missing: drop the directive.
				return ""
			}
			return string(content)
		})

		if !substituted {
			break
		}
	}

	return text, nil
}

// directiveFor returns the compiled directive for an include token, building
// it on first use. The flattener is driven from a single scanning goroutine,
// so the map needs no locking.
func (f *Flattener) directiveFor(token string) *directive {
	if dve, ok := f.directives[token]; ok {
		return dve
	}
	dve := newDirective(token)
	f.directives[token] = dve
	return dve
}

// directive pairs the include-directive pattern with its literal anchor
// filter. The target path may be double-quoted or angle-bracketed; path
// characters are word characters, dots, and slashes.
type directive struct {
	re     *regexp.Regexp
	filter *anchorFilter
}

func newDirective(token string) *directive {
	return &directive{
		re:     regexp.MustCompile(regexp.QuoteMeta(token) + `\s+(?:"([\w./]+)"|<([\w./]+)>)`),
		filter: newAnchorFilter(token),
	}
}

// anchored reports whether the text can contain a directive at all.
func (d *directive) anchored(text []byte) bool {
	return d.filter.hits(text)
}

// targetOf extracts the include path from a matched directive.
func (d *directive) targetOf(match string) string {
	sub := d.re.FindStringSubmatch(match)
	if sub == nil {
		return ""
	}
	if sub[1] != "" {
		return sub[1]
	}
	return sub[2]
}
