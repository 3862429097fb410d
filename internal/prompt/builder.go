package prompt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/models"
)

// StudioPromptBuilder builds prompts for the studio assistant
type StudioPromptBuilder struct {
	registry *actions.Registry
	loader   *Loader
}

// NewStudioPromptBuilder creates a new studio prompt builder
func NewStudioPromptBuilder(registry *actions.Registry) *StudioPromptBuilder {
	return &StudioPromptBuilder{
		registry: registry,
		loader:   NewPromptLoader(),
	}
}

// BuildPrompt builds the complete system prompt for the assistant
func (b *StudioPromptBuilder) BuildPrompt() (string, error) {
	harmony, err := b.getHarmonyReference()
	if err != nil {
		return "", fmt.Errorf("failed to build harmony reference: %w", err)
	}

	sections := []string{
		b.getSystemInstructions(),
		b.getActionsReference(),
		harmony,
		b.getOutputFormatInstructions(),
	}

	return strings.Join(sections, "\n\n"), nil
}

// getSystemInstructions returns the main system instructions
func (b *StudioPromptBuilder) getSystemInstructions() string {
	return `You are an AI music production assistant built into a browser-based studio (synths, sequencer, timeline, patchbay).

**SCOPE AND VALIDATION**:
- You ONLY handle requests related to music production, the studio's instruments and tools, and musical content
- If a request is completely out of scope (e.g., "bake me a cake", "send an email", "what's the weather"), do NOT emit any actions. Respond with a message explaining that you only help with music production, and leave the actions array empty
- Valid requests include: parameter changes, pattern creation and variation, automation, routing, scales and harmony, tempo, arrangement markers, and mix feedback
- When in doubt about scope, err on the side of attempting to help if it's remotely music-related

**ASSISTANT MODES** - pick the one that fits the request and report it in metadata.mode:
- ` + "`jam_buddy`" + `: playful, generative. Creating patterns, variations, happy accidents
- ` + "`mixing_engineer`" + `: precise, analytical. Levels, routing, automation, mix feedback
- ` + "`sound_designer`" + `: exploratory, timbral. Synth parameters, modulation, patching
- ` + "`sensei`" + `: patient, educational. Theory, scales, explaining what things do

When analyzing user requests:
- **ALWAYS use the current project state** provided in the request. It contains the exact tempo, key, time signature, and every instrument with its parameters
- **Instrument references**: match instruments by the "id" field in the state's "instruments" array. Only reference instruments that exist in the state
- **Selected track fallback**: if the user does not name a track, use "selected_track" from the request context when present
- **Musical values**: pitches are MIDI note numbers (0-127), velocities are 0-127, positions and lengths are in beats, tempo is in BPM
- Break down complex requests into multiple sequential actions
- Apply actions in a logical order (e.g., create a pattern before adding automation to its track)

**CONFIRMATION**: destructive or sweeping changes (overwriting a pattern, rewiring routing, large tempo jumps) should set "requires_confirmation": true on the action so the user approves before anything runs.`
}

// getActionsReference renders the action registry as prompt documentation
func (b *StudioPromptBuilder) getActionsReference() string {
	var sb strings.Builder
	sb.WriteString("**AVAILABLE ACTIONS** - the \"kind\" field must be one of these, with exactly these parameters:\n")

	for _, kind := range b.registry.Kinds() {
		spec, ok := b.registry.Lookup(kind)
		if !ok {
			continue
		}

		params := make([]string, len(spec.Params))
		for i, p := range spec.Params {
			params[i] = fmt.Sprintf("%s (%s)", p.Name, p.Type)
		}
		paramDoc := "no parameters"
		if len(params) > 0 {
			paramDoc = strings.Join(params, ", ")
		}

		sb.WriteString(fmt.Sprintf("- `%s`: %s. Parameters: %s", kind, spec.Description, paramDoc))
		if spec.ConfirmByDefault {
			sb.WriteString(". Requires confirmation by default")
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// getHarmonyReference renders the embedded progression and scale mood
// data as prompt documentation for harmony suggestions.
func (b *StudioPromptBuilder) getHarmonyReference() (string, error) {
	raw, err := b.loader.GetProgressions()
	if err != nil {
		return "", err
	}

	var doc struct {
		Progressions []struct {
			Numerals string   `json:"numerals"`
			Moods    []string `json:"moods"`
			Genres   []string `json:"genres"`
		} `json:"progressions"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("failed to parse progressions: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("**HARMONY REFERENCE** - use for suggest_chord_progression and apply_scale:\n")
	sb.WriteString("Progressions (numerals: moods / genres):\n")
	for _, p := range doc.Progressions {
		sb.WriteString(fmt.Sprintf("- %s: %s / %s\n", p.Numerals, strings.Join(p.Moods, ", "), strings.Join(p.Genres, ", ")))
	}

	moods, err := b.loader.GetScaleMoods()
	if err != nil {
		return "", err
	}
	sb.WriteString("\nScale moods (scale,mood,notes):\n")
	sb.WriteString(moods)

	return sb.String(), nil
}

// getOutputFormatInstructions returns output format requirements
func (b *StudioPromptBuilder) getOutputFormatInstructions() string {
	return `**OUTPUT FORMAT**:
Respond with a single JSON object matching the response schema:
- "message": conversational reply to the user, in the voice of the active mode
- "actions": array of action objects ({"kind", "parameters", "requires_confirmation", "description"}). Empty array when no state change is needed
- "suggestions": up to 3 follow-up ideas the user might try next ({"label", "action", "parameters"})
- "metadata": {"confidence": 0.0-1.0, "mode": active assistant mode, "reasoning": one-line rationale}

Never invent action kinds or parameters that are not in the reference above. Never put prose outside the JSON object.`
}

// BuildUserMessage wraps the raw user text together with the project
// snapshot and UI context into the JSON document sent as the user turn.
func (b *StudioPromptBuilder) BuildUserMessage(message string, state models.ProjectState, chatCtx models.ChatContext) (string, error) {
	payload := map[string]any{
		"user_message":  message,
		"project_state": state,
		"context":       chatCtx,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize user message: %w", err)
	}
	return string(data), nil
}
