package types

import "strings"

// ScriptPathsPlaceholder marks where the quoted source-path list is inserted
// into a dialect's oracle script template.
const ScriptPathsPlaceholder = "{paths}"

// Dialect describes one recognized source kind: how its candidate files are
// discovered, what its include directive looks like, and how the oracle is
// asked to elaborate it.
type Dialect struct {
	Kind         SourceKind // e.g., KindSystemVerilog
	Name         string     // human-readable name
	Extension    string     // candidate file extension, e.g. ".sv"
	IncludeToken string     // literal include-directive anchor, e.g. "`include"
	Script       string     // oracle script template containing ScriptPathsPlaceholder
}

// RenderScript expands the script template with the given source paths, each
// double-quoted and space-separated.
func (d *Dialect) RenderScript(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = `"` + p + `"`
	}
	return strings.Replace(d.Script, ScriptPathsPlaceholder, strings.Join(quoted, " "), 1)
}

// ArtifactName returns the corpus filename for a module extracted from this
// dialect, e.g. "counter" -> "counter.sv".
func (d *Dialect) ArtifactName(module string) string {
	return module + d.Extension
}

// Recognizes reports whether path carries this dialect's extension.
func (d *Dialect) Recognizes(path string) bool {
	return d.Extension != "" && strings.HasSuffix(path, d.Extension)
}
