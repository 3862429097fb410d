package assistant

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/llm"
	"github.com/dawless-studio/studio-api/internal/metrics"
	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/dawless-studio/studio-api/internal/prompt"
)

const responseSchemaName = "studio_response"

// ChatInput is one user turn plus the studio snapshot it was typed against
type ChatInput struct {
	SessionID string
	Message   string
	State     models.ProjectState
	Context   models.ChatContext
	Model     string
	Provider  string
}

// ChatResult is the parsed outcome of one assistant turn
type ChatResult struct {
	Response *models.StructuredResponse
	Raw      string
	Usage    any
	Provider string
	Model    string
}

// Service runs assistant turns: prompt assembly, provider call,
// response parsing, and session bookkeeping
type Service struct {
	factory      *llm.ProviderFactory
	builder      *prompt.StudioPromptBuilder
	registry     *actions.Registry
	sessions     *SessionStore
	metrics      *metrics.SentryMetrics
	defaultModel string
}

// NewService creates the assistant service
func NewService(factory *llm.ProviderFactory, registry *actions.Registry, defaultModel string) *Service {
	svc := &Service{
		factory:      factory,
		builder:      prompt.NewStudioPromptBuilder(registry),
		registry:     registry,
		sessions:     NewSessionStore(),
		metrics:      metrics.NewSentryMetrics(),
		defaultModel: defaultModel,
	}

	log.Printf("🎛️ ASSISTANT SERVICE INITIALIZED:")
	log.Printf("   Default model: %s", defaultModel)
	log.Printf("   Action kinds: %d", len(registry.Kinds()))

	return svc
}

// Sessions exposes the session store for lifecycle endpoints
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// SendMessage runs one complete assistant turn
func (s *Service) SendMessage(ctx context.Context, input ChatInput) (*ChatResult, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "assistant.send_message")
	defer transaction.Finish()

	provider, model, request, err := s.prepare(ctx, input, transaction)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 ASSISTANT REQUEST: %s model=%s, input_messages=%d",
		provider.Name(), model, len(request.InputArray))

	resp, err := provider.Generate(ctx, request)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		s.metrics.RecordGenerationDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("provider request failed: %w", err)
	}

	result := s.finishTurn(input, provider.Name(), model, resp.RawOutput, resp.Usage)

	transaction.SetTag("success", "true")
	transaction.SetTag("action_count", fmt.Sprintf("%d", len(result.Response.Actions)))
	s.metrics.RecordGenerationDuration(ctx, time.Since(startTime), true)

	log.Printf("✅ ASSISTANT COMPLETE: %d actions, mode=%s",
		len(result.Response.Actions), result.Response.Metadata.Mode)

	return result, nil
}

// StreamMessage runs one assistant turn with incremental delivery. The
// callback receives raw stream events; the returned result carries the
// parsed final response. A turn that never completes leaves the session
// history untouched.
func (s *Service) StreamMessage(ctx context.Context, input ChatInput, callback llm.StreamCallback) (*ChatResult, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "assistant.stream_message")
	defer transaction.Finish()

	provider, model, request, err := s.prepare(ctx, input, transaction)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 ASSISTANT STREAM: %s model=%s, input_messages=%d",
		provider.Name(), model, len(request.InputArray))

	resp, err := provider.GenerateStream(ctx, request, callback)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		s.metrics.RecordGenerationDuration(ctx, time.Since(startTime), false)
		return nil, fmt.Errorf("provider stream failed: %w", err)
	}

	result := s.finishTurn(input, provider.Name(), model, resp.RawOutput, resp.Usage)

	transaction.SetTag("success", "true")
	s.metrics.RecordGenerationDuration(ctx, time.Since(startTime), true)

	log.Printf("✅ ASSISTANT STREAM COMPLETE: %d actions", len(result.Response.Actions))

	return result, nil
}

// ClearSession drops the conversation history for a session ID
func (s *Service) ClearSession(sessionID string) {
	s.sessions.Delete(sessionID)
	log.Printf("🧹 SESSION CLEARED: %s", sessionID)
}

// prepare resolves the provider and assembles the full request for one turn
func (s *Service) prepare(ctx context.Context, input ChatInput, transaction *sentry.Span) (llm.Provider, string, *llm.ChatRequest, error) {
	model := input.Model
	if model == "" {
		model = s.defaultModel
	}
	transaction.SetTag("model", model)

	provider, err := s.factory.GetProvider(ctx, model, input.Provider)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, "", nil, fmt.Errorf("failed to resolve provider: %w", err)
	}
	transaction.SetTag("provider", provider.Name())

	systemPrompt, err := s.builder.BuildPrompt()
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	userMessage, err := s.builder.BuildUserMessage(input.Message, input.State, input.Context)
	if err != nil {
		return nil, "", nil, err
	}

	inputArray := s.buildInputArray(input.SessionID, userMessage)

	request := &llm.ChatRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		InputArray:   inputArray,
		OutputSchema: &llm.OutputSchema{
			Name:        responseSchemaName,
			Description: "Structured assistant reply with studio actions",
			Schema:      llm.GetStudioResponseSchema(s.registry.Kinds()),
		},
	}

	return provider, model, request, nil
}

// buildInputArray prepends retained session history to the new user turn
func (s *Service) buildInputArray(sessionID, userMessage string) []map[string]any {
	history := s.sessions.Get(sessionID).Snapshot()

	inputArray := make([]map[string]any, 0, len(history)+1)
	for _, turn := range history {
		inputArray = append(inputArray, map[string]any{
			"role":    turn.Role,
			"content": turn.Content,
		})
	}
	inputArray = append(inputArray, map[string]any{
		"role":    roleUser,
		"content": userMessage,
	})
	return inputArray
}

// finishTurn parses the raw output and records the completed exchange
func (s *Service) finishTurn(input ChatInput, providerName, model, raw string, usage any) *ChatResult {
	parsed := ParseResponse(raw)

	sess := s.sessions.Get(input.SessionID)
	sess.Append(roleUser, input.Message)
	sess.Append(roleAssistant, parsed.Message)

	return &ChatResult{
		Response: parsed,
		Raw:      raw,
		Usage:    usage,
		Provider: providerName,
		Model:    model,
	}
}
