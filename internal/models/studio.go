package models

import "encoding/json"

// Assistant modes returned in response metadata
const (
	ModeJamBuddy       = "jam_buddy"
	ModeMixingEngineer = "mixing_engineer"
	ModeSoundDesigner  = "sound_designer"
	ModeSensei         = "sensei"
)

// Instrument is one entry in the project's instrument rack
type Instrument struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Parameters map[string]float64 `json:"parameters"`
}

// ProjectState is the studio snapshot sent by the dashboard with every turn.
// The assistant core treats it as read-only input; mutation happens only
// through executed actions applied by the studio engines.
type ProjectState struct {
	Tempo         float64           `json:"tempo"`
	TimeSignature string            `json:"time_signature"`
	Key           string            `json:"key"`
	Instruments   []Instrument      `json:"instruments"`
	Patterns      []json.RawMessage `json:"patterns"`
	Timeline      []json.RawMessage `json:"timeline"`
	Routing       []json.RawMessage `json:"routing"`
}

// ChatContext carries the contextual hints the dashboard attaches to a turn
type ChatContext struct {
	CurrentInstrument string  `json:"current_instrument,omitempty"`
	SelectedTrack     string  `json:"selected_track,omitempty"`
	PlaybackPosition  float64 `json:"playback_position,omitempty"`
	IsPlaying         bool    `json:"is_playing,omitempty"`
}

// Suggestion is a quick-pick follow-up offered alongside a response.
// Informational only - never executed automatically.
type Suggestion struct {
	Label      string         `json:"label"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// ResponseMetadata describes how the assistant interpreted the turn
type ResponseMetadata struct {
	Confidence float64 `json:"confidence"`
	Mode       string  `json:"mode"`
	Reasoning  string  `json:"reasoning,omitempty"`
}
