package dialect

// yamlDialect is the intermediate struct for parsing dialect YAML documents.
// Maps YAML fields to the types.Dialect structure.
type yamlDialect struct {
	Kind         string `yaml:"kind"`
	Name         string `yaml:"name"`
	Extension    string `yaml:"extension"`
	IncludeToken string `yaml:"include_token"`
	Script       string `yaml:"script"`
}

// yamlDialectsFile represents the top-level structure of a dialects YAML
// file: a "dialects" array.
type yamlDialectsFile struct {
	Dialects []yamlDialect `yaml:"dialects"`
}
