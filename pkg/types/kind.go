package types

import "fmt"

// SourceKind tags a candidate file with the HDL dialect it was discovered
// as. Each kind carries its own oracle invocation recipe and include-directive
// syntax, defined by the dialect registry.
type SourceKind string

const (
	// KindSystemVerilog covers .sv sources read through the yosys
	// systemverilog plugin.
	KindSystemVerilog SourceKind = "sv"

	// KindVerilog covers plain .v sources read with read_verilog.
	KindVerilog SourceKind = "v"
)

// ParseSourceKind validates a kind tag.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case KindSystemVerilog, KindVerilog:
		return SourceKind(s), nil
	}
	return "", fmt.Errorf("unknown source kind: %q", s)
}

// Candidate is one file to consider for extraction: an absolute path plus
// the source kind it was enumerated under. Display is the repo-relative
// path used in logs and records (falls back to Path when unset).
type Candidate struct {
	Path    string
	Kind    SourceKind
	Display string
}

// DisplayPath returns the repo-relative path if known, else the absolute one.
func (c Candidate) DisplayPath() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Path
}
