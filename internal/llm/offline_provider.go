package llm

import (
	"context"
	"encoding/json"
	"log"
)

const providerNameOffline = "offline"

// DemoMessage is the fixed notice returned in demo mode
const DemoMessage = "Demo mode active: no network request was made. This is a simulated response."

// OfflineProvider is the demo-mode provider. It never touches the network
// and always returns the same placeholder payload.
type OfflineProvider struct{}

// NewOfflineProvider creates a new offline provider
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

// Name returns the provider name
func (p *OfflineProvider) Name() string {
	return providerNameOffline
}

// Generate returns the fixed demo payload
func (p *OfflineProvider) Generate(_ context.Context, request *ChatRequest) (*ChatResponse, error) {
	log.Printf("🎛️  DEMO MODE: skipping network call (model: %s)", request.Model)
	return &ChatResponse{
		RawOutput: demoPayload(),
	}, nil
}

// GenerateStream emits the demo payload as a single delta
func (p *OfflineProvider) GenerateStream(
	_ context.Context, request *ChatRequest, callback StreamCallback,
) (*ChatResponse, error) {
	log.Printf("🎛️  DEMO MODE: skipping network call (model: %s, streaming)", request.Model)

	payload := demoPayload()
	if callback != nil {
		_ = callback(StreamEvent{Type: "started", Message: "Starting generation..."})
		_ = callback(StreamEvent{Type: "text_delta", Message: payload})
		_ = callback(StreamEvent{Type: "completed", Message: "Generation complete"})
	}

	return &ChatResponse{
		RawOutput: payload,
	}, nil
}

func demoPayload() string {
	raw, _ := json.Marshal(map[string]any{
		"message":     DemoMessage,
		"actions":     []any{},
		"suggestions": []any{},
		"metadata": map[string]any{
			"confidence": 0,
			"mode":       "jam_buddy",
		},
	})
	return string(raw)
}
