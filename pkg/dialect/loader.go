package dialect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rtlharvest/rtlharvest/pkg/types"
	"gopkg.in/yaml.v3"
)

// Loader handles loading dialects from YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for built-in dialects
}

// NewLoader creates a loader with built-in dialects from the embedded
// filesystem.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// LoadDialects loads all dialects from YAML bytes.
// Returns error if the YAML is invalid or contains no dialects.
func (l *Loader) LoadDialects(data []byte) ([]*types.Dialect, error) {
	var yamlFile yamlDialectsFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(yamlFile.Dialects) == 0 {
		return nil, fmt.Errorf("no dialects found in YAML")
	}

	dialects := make([]*types.Dialect, 0, len(yamlFile.Dialects))
	for _, yd := range yamlFile.Dialects {
		dialects = append(dialects, convertYAMLDialect(yd))
	}
	return dialects, nil
}

// LoadDialectFile loads dialects from a YAML file path.
func (l *Loader) LoadDialectFile(path string) ([]*types.Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return l.LoadDialects(data)
}

// LoadBuiltin loads all built-in dialects from the embedded filesystem.
func (l *Loader) LoadBuiltin() ([]*types.Dialect, error) {
	var dialects []*types.Dialect

	err := fs.WalkDir(l.fs, "builtin", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".yml" {
			return nil
		}

		data, err := fs.ReadFile(l.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var yamlFile yamlDialectsFile
		if err := yaml.Unmarshal(data, &yamlFile); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, yd := range yamlFile.Dialects {
			dialects = append(dialects, convertYAMLDialect(yd))
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return dialects, nil
}

// convertYAMLDialect converts yamlDialect to types.Dialect.
func convertYAMLDialect(yd yamlDialect) *types.Dialect {
	return &types.Dialect{
		Kind:         types.SourceKind(yd.Kind),
		Name:         yd.Name,
		Extension:    yd.Extension,
		IncludeToken: yd.IncludeToken,
		Script:       yd.Script,
	}
}
