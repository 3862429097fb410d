package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKnowsEveryKind(t *testing.T) {
	registry := NewRegistry()

	expected := []string{
		"set_parameter",
		"create_pattern",
		"add_automation",
		"suggest_chord_progression",
		"analyze_mix",
		"route_cable",
		"apply_scale",
		"generate_variation",
		"set_tempo",
		"add_marker",
	}

	assert.Equal(t, expected, registry.Kinds())
}

func TestRegistryEveryKindHasHandlerAndDescription(t *testing.T) {
	registry := NewRegistry()

	for _, kind := range registry.Kinds() {
		spec, ok := registry.Lookup(kind)
		require.True(t, ok, "kind %q not found", kind)
		assert.NotNil(t, spec.Handler, "kind %q has no handler", kind)
		assert.NotEmpty(t, spec.Description, "kind %q has no description", kind)
	}
}

func TestValidateUnknownKind(t *testing.T) {
	registry := NewRegistry()

	err := registry.Validate("teleport", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, "unknown action type: teleport", err.Error())
}

func TestValidateMissingParameter(t *testing.T) {
	registry := NewRegistry()

	err := registry.Validate("set_tempo", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required parameter "bpm"`)
}

func TestValidateWrongTypes(t *testing.T) {
	registry := NewRegistry()

	testCases := []struct {
		name    string
		kind    string
		params  map[string]any
		wantErr string
	}{
		{
			name:    "number where string expected",
			kind:    "set_parameter",
			params:  map[string]any{"instrument_id": 7.0, "parameter": "cutoff", "value": 0.5},
			wantErr: "must be a string",
		},
		{
			name:    "string where number expected",
			kind:    "set_tempo",
			params:  map[string]any{"bpm": "fast"},
			wantErr: "must be a number",
		},
		{
			name:    "string where sequence expected",
			kind:    "create_pattern",
			params:  map[string]any{"track_id": "t1", "notes": "C E G", "length": 4.0},
			wantErr: "must be a sequence",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := registry.Validate(tc.kind, tc.params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateAcceptsDecodedJSONShapes(t *testing.T) {
	registry := NewRegistry()

	// Shapes as encoding/json produces them: float64 numbers, []any arrays
	err := registry.Validate("create_pattern", map[string]any{
		"track_id": "drums",
		"notes": []any{
			map[string]any{"pitch": 36.0, "velocity": 100.0, "start": 0.0, "duration": 0.25},
		},
		"length": 4.0,
	})
	assert.NoError(t, err)
}

func TestValidateNoParamsKind(t *testing.T) {
	registry := NewRegistry()

	assert.NoError(t, registry.Validate("analyze_mix", map[string]any{}))
	assert.NoError(t, registry.Validate("analyze_mix", nil))
}

func TestCapabilitiesCoverRegistry(t *testing.T) {
	registry := NewRegistry()
	caps := registry.Capabilities()

	assert.Len(t, caps, len(registry.Kinds()))
	for _, kind := range registry.Kinds() {
		entry, ok := caps[kind].(map[string]any)
		require.True(t, ok, "capabilities missing %q", kind)
		assert.Contains(t, entry, "params")
		assert.Contains(t, entry, "description")
		assert.Contains(t, entry, "requires_confirmation")
	}
}
