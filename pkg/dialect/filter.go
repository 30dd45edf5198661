package dialect

import (
	"fmt"
	"strings"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// ParseKinds splits a comma-separated kind list into individual tags.
// Tags are trimmed of whitespace.
func ParseKinds(kinds string) []types.SourceKind {
	if kinds == "" {
		return []types.SourceKind{}
	}

	parts := strings.Split(kinds, ",")
	result := make([]types.SourceKind, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, types.SourceKind(trimmed))
		}
	}
	return result
}

// Filter restricts dialects to the requested kinds, preserving load order.
// An empty kind list means "keep all". Returns error if a requested kind
// does not name a loaded dialect.
func Filter(dialects []*types.Dialect, kinds []types.SourceKind) ([]*types.Dialect, error) {
	if len(kinds) == 0 {
		return dialects, nil
	}

	byKind := make(map[types.SourceKind]*types.Dialect, len(dialects))
	for _, d := range dialects {
		byKind[d.Kind] = d
	}

	for _, k := range kinds {
		if _, ok := byKind[k]; !ok {
			return nil, fmt.Errorf("unknown source kind: %q", k)
		}
	}

	wanted := make(map[types.SourceKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	result := make([]*types.Dialect, 0, len(kinds))
	for _, d := range dialects {
		if wanted[d.Kind] {
			result = append(result, d)
		}
	}
	return result, nil
}
