package models

// Action is a structured command derived from assistant output, targeting
// one studio subsystem. Constructed transiently from a parsed response and
// consumed exactly once by the dispatcher; never persisted.
type Action struct {
	Kind                 string         `json:"kind"`
	Parameters           map[string]any `json:"parameters"`
	RequiresConfirmation bool           `json:"requires_confirmation"`
	Description          string         `json:"description"`
}

// StructuredResponse is the parsed result of one inference turn
type StructuredResponse struct {
	Message     string           `json:"message"`
	Actions     []Action         `json:"actions"`
	Suggestions []Suggestion     `json:"suggestions"`
	Metadata    ResponseMetadata `json:"metadata"`
}
