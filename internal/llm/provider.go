package llm

import (
	"context"
)

// Provider defines the interface for LLM providers.
// All providers MUST support structured output (JSON Schema) so the
// response parser sees well-formed JSON in the normal case; the parser
// still owns the fallback when output does not conform.
type Provider interface {
	// Generate runs one completed inference turn
	Generate(ctx context.Context, request *ChatRequest) (*ChatResponse, error)

	// GenerateStream runs one inference turn with incremental delivery
	GenerateStream(ctx context.Context, request *ChatRequest, callback StreamCallback) (*ChatResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini", "offline")
	Name() string
}

// ChatRequest contains all parameters needed for one turn
type ChatRequest struct {
	Model         string
	SystemPrompt  string
	InputArray    []map[string]any // ordered {role, content} turns, newest last
	ReasoningMode string
	// Structured output schema - enforced by the provider where supported
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// ChatResponse contains the raw result from the LLM
type ChatResponse struct {
	RawOutput string `json:"raw_output"`
	Usage     any    `json:"usage"`
}

// StreamCallback is called for each streaming event
type StreamCallback func(event StreamEvent) error

// StreamEvent represents a server-sent event during streaming
type StreamEvent struct {
	Type    string         `json:"type"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
