package dialect

import (
	"fmt"
	"strings"

	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// ValidateDialect checks dialect consistency and required fields.
// Returns error if the dialect is invalid.
func ValidateDialect(d *types.Dialect) error {
	if d == nil {
		return fmt.Errorf("dialect is nil")
	}

	// Check required fields
	if d.Kind == "" {
		return fmt.Errorf("dialect kind is required")
	}
	if d.Name == "" {
		return fmt.Errorf("dialect name is required")
	}
	if d.Extension == "" {
		return fmt.Errorf("dialect %s: extension is required", d.Kind)
	}
	if !strings.HasPrefix(d.Extension, ".") {
		return fmt.Errorf("dialect %s: extension must start with '.': %q", d.Kind, d.Extension)
	}
	if d.IncludeToken == "" {
		return fmt.Errorf("dialect %s: include token is required", d.Kind)
	}

	// The oracle substitutes the candidate paths into the script, so the
	// placeholder has to be present exactly where they belong.
	if d.Script == "" {
		return fmt.Errorf("dialect %s: script is required", d.Kind)
	}
	if !strings.Contains(d.Script, types.ScriptPathsPlaceholder) {
		return fmt.Errorf("dialect %s: script is missing the %s placeholder",
			d.Kind, types.ScriptPathsPlaceholder)
	}

	return nil
}
