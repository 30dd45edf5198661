package flatten

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rtlharvest/rtlharvest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func svDialect() *types.Dialect {
	return &types.Dialect{
		Kind:         types.KindSystemVerilog,
		Name:         "SystemVerilog",
		Extension:    ".sv",
		IncludeToken: "`include",
		Script:       "read {paths}",
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFlatten_IdentityWithoutDirectives(t *testing.T) {
	dir := t.TempDir()
	content := "module top;\n  // no includes here\n  wire w;\nendmodule\n"
	root := writeFile(t, dir, "top.sv", content)

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, content, out, "directive-free text must come back byte-identical")
}

func TestFlatten_TokenWithoutWellFormedDirective(t *testing.T) {
	dir := t.TempDir()
	content := "// mentions `include but never uses it\nmodule t; endmodule\n"
	root := writeFile(t, dir, "top.sv", content)

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, content, out)
}

func TestFlatten_QuotedInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.svh", "`define WIDTH 8\n")
	root := writeFile(t, dir, "top.sv", "`include \"defs.svh\"\nmodule top; endmodule\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, "`define WIDTH 8\n\nmodule top; endmodule\n", out)
}

func TestFlatten_BracketedInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.svh", "`define DEPTH 4\n")
	root := writeFile(t, dir, "top.sv", "`include <defs.svh>\nmodule top; endmodule\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, "`define DEPTH 4\n\nmodule top; endmodule\n", out)
}

func TestFlatten_MultipleIncludesInOnePass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.svh", "AAA")
	writeFile(t, dir, "b.svh", "BBB")
	root := writeFile(t, dir, "top.sv", "`include \"a.svh\"\n`include \"b.svh\"\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, "AAA\nBBB\n", out)
}

func TestFlatten_NestedIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.svh", "localparam C = 3;\n")
	writeFile(t, dir, "b.svh", "`include \"c.svh\"\nlocalparam B = 2;\n")
	root := writeFile(t, dir, "top.sv", "`include \"b.svh\"\nmodule top; endmodule\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Contains(t, out, "localparam C = 3;")
	assert.Contains(t, out, "localparam B = 2;")
	assert.NotContains(t, out, "`include")
}

func TestFlatten_TargetsResolveAgainstRootDir(t *testing.T) {
	dir := t.TempDir()
	// The nested include names c.svh, which exists next to the ROOT file
	// only. Resolution always happens against the root's directory, not
	// the including file's.
	writeFile(t, dir, "c.svh", "from root dir\n")
	writeFile(t, dir, "sub/b.svh", "`include \"c.svh\"\n")
	root := writeFile(t, dir, "top.sv", "`include \"sub/b.svh\"\nmodule top; endmodule\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Contains(t, out, "from root dir")
	assert.NotContains(t, out, "`include")
}

func TestFlatten_MissingTargetDropsDirective(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "top.sv", "before\n`include \"gone.svh\"\nafter\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, "before\n\nafter\n", out)
}

func TestFlatten_CycleTerminates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.svh", "mid\n`include \"a.sv\"\n")
	root := writeFile(t, dir, "a.sv", "top\n`include \"b.svh\"\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Contains(t, out, "top")
	assert.Contains(t, out, "mid")
	// The cycle can never fully resolve; leftovers stay in the text.
	assert.Contains(t, out, "`include")
}

func TestFlatten_SelfIncludeTerminates(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "a.sv", "x\n`include \"a.sv\"\n")

	out, err := New().Flatten(root, svDialect())
	require.NoError(t, err)
	assert.Equal(t, MaxPasses+1, strings.Count(out, "x"))
	assert.Contains(t, out, "`include")
}

func TestFlatten_UnreadableRoot(t *testing.T) {
	_, err := New().Flatten(filepath.Join(t.TempDir(), "missing.sv"), svDialect())
	require.Error(t, err)
}

func TestFlatten_OutputIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.svh", "`define WIDTH 8\n")
	root := writeFile(t, dir, "top.sv", "`include \"defs.svh\"\nmodule top; endmodule\n")

	f := New()
	first, err := f.Flatten(root, svDialect())
	require.NoError(t, err)

	flattened := writeFile(t, dir, "flat.sv", first)
	second, err := f.Flatten(flattened, svDialect())
	require.NoError(t, err)
	assert.Equal(t, first, second, "flattening a fully flattened file must be the identity")
}
