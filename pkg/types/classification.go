package types

// Reason explains why the oracle judged a candidate set not synthesizable.
type Reason string

const (
	// ReasonToolFailure: the oracle process exited non-zero or could not run.
	ReasonToolFailure Reason = "tool_failure"

	// ReasonTimeout: the oracle exceeded its wall-clock bound.
	ReasonTimeout Reason = "timeout"

	// ReasonNoTopModule: the oracle ran but emitted no recognized top-module
	// signal, or the signal line was malformed.
	ReasonNoTopModule Reason = "no_top_module"

	// ReasonUnsupportedKind: no invocation recipe exists for the kind; the
	// oracle is not invoked at all.
	ReasonUnsupportedKind Reason = "unsupported_kind"

	// ReasonValidationFailed: the flattened artifact failed re-validation.
	// Never produced by the oracle itself; attached by the extraction step.
	ReasonValidationFailed Reason = "validation_failed"
)

// Classification is the outcome of a single oracle invocation. Exactly one
// of Module/Reason is meaningful: a non-empty Module means the inputs
// elaborate to that top module; otherwise Reason says why not.
//
// Classifications are computed fresh per call and never cached: the oracle
// is the source of truth and the same path may classify differently as a
// lone candidate versus a flattened artifact.
type Classification struct {
	Module string `json:"module,omitempty"`
	Reason Reason `json:"reason,omitempty"`
}

// SynthesizableAs builds a positive classification naming the top module.
func SynthesizableAs(module string) Classification {
	return Classification{Module: module}
}

// NotSynthesizable builds a negative classification with a reason tag.
func NotSynthesizable(reason Reason) Classification {
	return Classification{Reason: reason}
}

// Synthesizable reports whether a top module was found.
func (c Classification) Synthesizable() bool {
	return c.Module != ""
}
