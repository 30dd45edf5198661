package dialect

import (
	"testing"

	"github.com/rtlharvest/rtlharvest/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKinds(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []types.SourceKind
	}{
		{
			name:     "empty string returns empty slice",
			input:    "",
			expected: []types.SourceKind{},
		},
		{
			name:     "single kind",
			input:    "sv",
			expected: []types.SourceKind{"sv"},
		},
		{
			name:     "multiple kinds comma-separated",
			input:    "sv,v",
			expected: []types.SourceKind{"sv", "v"},
		},
		{
			name:     "kinds with spaces are trimmed",
			input:    " sv , v ",
			expected: []types.SourceKind{"sv", "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseKinds(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestFilter(t *testing.T) {
	dialects := []*types.Dialect{
		{Kind: "sv", Name: "SystemVerilog"},
		{Kind: "v", Name: "Verilog"},
	}

	tests := []struct {
		name     string
		kinds    []types.SourceKind
		expected []types.SourceKind // expected kinds in order
	}{
		{
			name:     "empty kind list keeps all",
			kinds:    nil,
			expected: []types.SourceKind{"sv", "v"},
		},
		{
			name:     "single kind",
			kinds:    []types.SourceKind{"v"},
			expected: []types.SourceKind{"v"},
		},
		{
			name:     "load order preserved regardless of request order",
			kinds:    []types.SourceKind{"v", "sv"},
			expected: []types.SourceKind{"sv", "v"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := Filter(dialects, tt.kinds)
			require.NoError(t, err)

			resultKinds := make([]types.SourceKind, 0)
			for _, d := range filtered {
				resultKinds = append(resultKinds, d.Kind)
			}

			assert.Equal(t, tt.expected, resultKinds)
		})
	}
}

func TestFilter_UnknownKind(t *testing.T) {
	dialects := []*types.Dialect{
		{Kind: "sv", Name: "SystemVerilog"},
	}

	_, err := Filter(dialects, []types.SourceKind{"vhd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vhd")
}
