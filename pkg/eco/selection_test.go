package eco

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionKeys(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		keys []string
	}{
		{"registered without include", Registered(NoInclude), []string{"selectionType", "selectionMatch"}},
		{"registered with device", Registered(IncludeDevice), []string{"selectionType", "selectionMatch", "includeDevice"}},
		{"thermostats with sensors", Thermostats(IncludeSensors, "1", "2"), []string{"selectionType", "selectionMatch", "includeSensors"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.sel.JSON()), &got))
			assert.Len(t, got, len(tt.keys))
			for _, k := range tt.keys {
				assert.Contains(t, got, k)
			}
			if tt.sel.Include != NoInclude {
				assert.Equal(t, true, got[string(tt.sel.Include)])
			}
		})
	}
}

func TestSelectionJSON(t *testing.T) {
	assert.Equal(t,
		`{"selectionType":"registered","selectionMatch":"","includeDevice":true}`,
		Registered(IncludeDevice).JSON())
	assert.Equal(t,
		`{"selectionType":"thermostats","selectionMatch":"1,2"}`,
		Thermostats(NoInclude, "1", "2").JSON())
}

func TestSelectionEscapesMatch(t *testing.T) {
	sel := Selection{Type: SelectManagementSet, Match: `/Toronto/"Main"`}

	var got struct {
		Type  string `json:"selectionType"`
		Match string `json:"selectionMatch"`
	}
	require.NoError(t, json.Unmarshal([]byte(sel.JSON()), &got))
	assert.Equal(t, "managementSet", got.Type)
	assert.Equal(t, `/Toronto/"Main"`, got.Match)
}

func TestIncludesComplete(t *testing.T) {
	assert.Len(t, Includes, 25)
	seen := make(map[Include]bool)
	for _, inc := range Includes {
		assert.False(t, seen[inc], "duplicate %s", inc)
		seen[inc] = true
	}
}
