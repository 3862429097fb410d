package llm

const (
	confidenceMin = 0.0
	confidenceMax = 1.0
)

// assistantModes are the personas the model may answer in
var assistantModes = []string{"jam_buddy", "mixing_engineer", "sound_designer", "sensei"}

// GetStudioResponseSchema returns the JSON schema for the assistant's
// structured response. kinds is the closed action-kind set from the
// registry, so the schema and the dispatcher stay in lockstep.
// Note: OpenAI requires additionalProperties: false, which means all
// properties must be listed in 'required'.
func GetStudioResponseSchema(kinds []string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "Natural-language reply shown in the chat panel",
			},
			"actions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"kind": map[string]any{
							"type": "string",
							"enum": kinds,
						},
						"parameters": map[string]any{
							"type":        "object",
							"description": "Parameter mapping for the action kind",
						},
						"requires_confirmation": map[string]any{"type": "boolean"},
						"description": map[string]any{
							"type":        "string",
							"description": "Human-readable label shown in the confirmation prompt",
						},
					},
					"required":             []string{"kind", "parameters", "requires_confirmation", "description"},
					"additionalProperties": false,
				},
			},
			"suggestions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"label":      map[string]any{"type": "string"},
						"action":     map[string]any{"type": "string"},
						"parameters": map[string]any{"type": "object"},
					},
					"required":             []string{"label", "action", "parameters"},
					"additionalProperties": false,
				},
			},
			"metadata": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"confidence": map[string]any{"type": "number", "minimum": confidenceMin, "maximum": confidenceMax},
					"mode": map[string]any{
						"type": "string",
						"enum": assistantModes,
					},
					"reasoning": map[string]any{"type": []any{"string", "null"}},
				},
				"required":             []string{"confidence", "mode", "reasoning"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"message", "actions", "suggestions", "metadata"},
		"additionalProperties": false,
	}
}
