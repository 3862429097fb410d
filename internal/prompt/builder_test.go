package prompt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/models"
)

func TestNewStudioPromptBuilder(t *testing.T) {
	builder := NewStudioPromptBuilder(actions.NewRegistry())
	if builder == nil {
		t.Fatal("NewStudioPromptBuilder() returned nil")
		return
	}
	if builder.registry == nil {
		t.Fatal("NewStudioPromptBuilder() created builder with nil registry")
	}
}

func TestBuildPrompt(t *testing.T) {
	builder := NewStudioPromptBuilder(actions.NewRegistry())
	prompt, err := builder.BuildPrompt()

	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	if prompt == "" {
		t.Fatal("BuildPrompt() returned empty string")
	}

	// Combined sections should be substantial
	if len(prompt) < 1000 {
		t.Errorf("BuildPrompt() returned suspiciously short prompt: %d characters", len(prompt))
	}
}

func TestBuildPromptContainsSystemInstructions(t *testing.T) {
	builder := NewStudioPromptBuilder(actions.NewRegistry())
	prompt, err := builder.BuildPrompt()

	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	if !strings.Contains(prompt, "music production assistant") {
		t.Error("BuildPrompt() does not contain system instructions")
	}
	if !strings.Contains(prompt, "SCOPE AND VALIDATION") {
		t.Error("BuildPrompt() does not contain scope validation rules")
	}
}

func TestBuildPromptListsEveryRegisteredAction(t *testing.T) {
	registry := actions.NewRegistry()
	builder := NewStudioPromptBuilder(registry)
	prompt, err := builder.BuildPrompt()

	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	for _, kind := range registry.Kinds() {
		if !strings.Contains(prompt, "`"+kind+"`") {
			t.Errorf("BuildPrompt() missing action kind %q", kind)
		}
	}
}

func TestBuildPromptContainsAllModes(t *testing.T) {
	builder := NewStudioPromptBuilder(actions.NewRegistry())
	prompt, err := builder.BuildPrompt()

	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	modes := []string{
		models.ModeJamBuddy,
		models.ModeMixingEngineer,
		models.ModeSoundDesigner,
		models.ModeSensei,
	}
	for _, mode := range modes {
		if !strings.Contains(prompt, mode) {
			t.Errorf("BuildPrompt() missing assistant mode %q", mode)
		}
	}
}

func TestBuildPromptContainsHarmonyReference(t *testing.T) {
	builder := NewStudioPromptBuilder(actions.NewRegistry())
	prompt, err := builder.BuildPrompt()

	if err != nil {
		t.Fatalf("BuildPrompt() returned error: %v", err)
	}

	if !strings.Contains(prompt, "HARMONY REFERENCE") {
		t.Error("BuildPrompt() does not contain the harmony reference section")
	}
	if !strings.Contains(prompt, "I-V-vi-IV") {
		t.Error("BuildPrompt() does not list chord progressions")
	}
	if !strings.Contains(prompt, "harmonic_minor") {
		t.Error("BuildPrompt() does not list scale moods")
	}
}

func TestBuildUserMessage(t *testing.T) {
	builder := NewStudioPromptBuilder(actions.NewRegistry())

	state := models.ProjectState{
		Tempo:         128,
		TimeSignature: "4/4",
		Key:           "C minor",
		Instruments: []models.Instrument{
			{ID: "bass-1", Type: "synth", Role: "bass", Parameters: map[string]float64{"cutoff": 0.4}},
		},
	}
	chatCtx := models.ChatContext{SelectedTrack: "bass-1", IsPlaying: true}

	raw, err := builder.BuildUserMessage("make the bass darker", state, chatCtx)
	if err != nil {
		t.Fatalf("BuildUserMessage() returned error: %v", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("BuildUserMessage() produced invalid JSON: %v", err)
	}

	for _, key := range []string{"user_message", "project_state", "context", "timestamp"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("BuildUserMessage() payload missing %q", key)
		}
	}

	var echoed string
	if err := json.Unmarshal(payload["user_message"], &echoed); err != nil {
		t.Fatalf("user_message is not a string: %v", err)
	}
	if echoed != "make the bass darker" {
		t.Errorf("user_message = %q, want original text", echoed)
	}
}
