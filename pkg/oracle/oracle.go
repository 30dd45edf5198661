// Package oracle decides whether a set of HDL source files elaborates to a
// synthesizable top-level module. The decision is delegated to an external
// tool (yosys); the adapter's job is invoking it once per candidate set and
// reducing its output to a Classification.
package oracle

import (
	"context"
	"errors"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// ErrUnavailable is returned at construction when no oracle binary can be
// resolved. It is fatal for the run: without an oracle, nothing can be
// classified.
var ErrUnavailable = errors.New("oracle binary not found")

// Oracle classifies an ordered set of source files under one dialect kind.
// Implementations never retry and never cache: every call is one fresh
// invocation, and every failure is reported as data inside the
// Classification, not as an error.
type Oracle interface {
	Classify(ctx context.Context, paths []string, kind types.SourceKind) types.Classification
}
