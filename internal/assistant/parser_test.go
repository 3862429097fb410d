package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawless-studio/studio-api/internal/models"
)

func TestParseResponseWellFormed(t *testing.T) {
	raw := `{
		"message": "Darkened the bass for you.",
		"actions": [
			{"kind": "set_parameter", "parameters": {"instrument_id": "bass-1", "parameter": "cutoff", "value": 0.3}}
		],
		"suggestions": [
			{"label": "Add movement", "action": "add_automation", "parameters": {"track_id": "bass-1"}}
		],
		"metadata": {"confidence": 0.92, "mode": "sound_designer", "reasoning": "lowered filter cutoff"}
	}`

	resp := ParseResponse(raw)

	assert.Equal(t, "Darkened the bass for you.", resp.Message)
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "set_parameter", resp.Actions[0].Kind)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, 0.92, resp.Metadata.Confidence)
	assert.Equal(t, models.ModeSoundDesigner, resp.Metadata.Mode)
}

func TestParseResponseFallbackOnInvalidJSON(t *testing.T) {
	raw := "Try lowering the cutoff on your bass synth."

	resp := ParseResponse(raw)

	assert.Equal(t, raw, resp.Message)
	assert.Empty(t, resp.Actions)
	assert.Empty(t, resp.Suggestions)
	assert.Equal(t, 0.5, resp.Metadata.Confidence)
	assert.Equal(t, models.ModeSensei, resp.Metadata.Mode)
}

func TestParseResponseFallbackOnTruncatedJSON(t *testing.T) {
	raw := `{"message": "I was about to say`

	resp := ParseResponse(raw)

	assert.Equal(t, raw, resp.Message)
	assert.Empty(t, resp.Actions)
	assert.Equal(t, 0.5, resp.Metadata.Confidence)
}

func TestParseResponseFallbackOnMissingMessage(t *testing.T) {
	raw := `{"actions": [], "metadata": {"confidence": 1.0}}`

	resp := ParseResponse(raw)

	// Conforming shape requires a message; without it the raw text is echoed
	assert.Equal(t, raw, resp.Message)
	assert.Equal(t, 0.5, resp.Metadata.Confidence)
}

func TestParseResponseNormalizesOmittedFields(t *testing.T) {
	raw := `{"message": "Nothing to change here."}`

	resp := ParseResponse(raw)

	assert.Equal(t, "Nothing to change here.", resp.Message)
	assert.NotNil(t, resp.Actions)
	assert.Empty(t, resp.Actions)
	assert.NotNil(t, resp.Suggestions)
	assert.Equal(t, models.ModeSensei, resp.Metadata.Mode)
}

func TestParseResponseFallbackNeverFails(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "[1,2,3]", `"just a string"`, "{}"} {
		resp := ParseResponse(raw)
		require.NotNil(t, resp, "input %q", raw)
		assert.Equal(t, raw, resp.Message, "input %q", raw)
	}
}
