package dialect

import (
	"fmt"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// Registry is the immutable set of active dialects for a run, looked up by
// kind during extraction and by extension during enumeration.
type Registry struct {
	dialects []*types.Dialect
	byKind   map[types.SourceKind]*types.Dialect
}

// NewRegistry validates and indexes dialects. Duplicate kinds and duplicate
// extensions are rejected: a candidate file must map to exactly one dialect.
func NewRegistry(dialects []*types.Dialect) (*Registry, error) {
	r := &Registry{
		dialects: dialects,
		byKind:   make(map[types.SourceKind]*types.Dialect, len(dialects)),
	}

	seenExt := make(map[string]types.SourceKind, len(dialects))
	for _, d := range dialects {
		if err := ValidateDialect(d); err != nil {
			return nil, err
		}
		if _, ok := r.byKind[d.Kind]; ok {
			return nil, fmt.Errorf("duplicate dialect kind: %q", d.Kind)
		}
		if prev, ok := seenExt[d.Extension]; ok {
			return nil, fmt.Errorf("dialects %q and %q share extension %q",
				prev, d.Kind, d.Extension)
		}
		r.byKind[d.Kind] = d
		seenExt[d.Extension] = d.Kind
	}

	return r, nil
}

// Default loads the built-in dialects into a registry.
func Default() (*Registry, error) {
	dialects, err := NewLoader().LoadBuiltin()
	if err != nil {
		return nil, err
	}
	return NewRegistry(dialects)
}

// ByKind returns the dialect registered for the given kind.
func (r *Registry) ByKind(k types.SourceKind) (*types.Dialect, bool) {
	d, ok := r.byKind[k]
	return d, ok
}

// ByPath returns the dialect whose extension matches the path.
func (r *Registry) ByPath(path string) (*types.Dialect, bool) {
	for _, d := range r.dialects {
		if d.Recognizes(path) {
			return d, true
		}
	}
	return nil, false
}

// All returns the registered dialects in load order.
func (r *Registry) All() []*types.Dialect {
	return r.dialects
}

// Kinds returns the registered kind tags in load order.
func (r *Registry) Kinds() []types.SourceKind {
	kinds := make([]types.SourceKind, 0, len(r.dialects))
	for _, d := range r.dialects {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}
