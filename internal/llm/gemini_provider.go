package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	maxLogEventCount   = 5
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate implements non-streaming generation using Gemini's API
func (p *GeminiProvider) Generate(ctx context.Context, request *ChatRequest) (*ChatResponse, error) {
	startTime := time.Now()
	log.Printf("🎹 GEMINI CHAT REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	contents := p.buildGeminiContents(request.InputArray)
	config := p.buildGeminiConfig(request)

	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini response did not include any candidates")
	}

	textOutput := result.Candidates[0].Content.Parts[0].Text
	if textOutput == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	if result.UsageMetadata != nil {
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			result.UsageMetadata.PromptTokenCount,
			result.UsageMetadata.CandidatesTokenCount,
			result.UsageMetadata.TotalTokenCount)
	}

	log.Printf("✅ GEMINI CHAT COMPLETED in %v (%d chars)", time.Since(startTime), len(textOutput))

	transaction.SetTag("success", "true")
	return &ChatResponse{
		RawOutput: textOutput,
		Usage:     result.UsageMetadata,
	}, nil
}

// GenerateStream implements streaming generation for Gemini
func (p *GeminiProvider) GenerateStream(
	ctx context.Context, request *ChatRequest, callback StreamCallback,
) (*ChatResponse, error) {
	startTime := time.Now()
	log.Printf("🎹 GEMINI STREAMING CHAT REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate_stream")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)
	transaction.SetTag("streaming", "true")

	contents := p.buildGeminiContents(request.InputArray)
	config := p.buildGeminiConfig(request)

	if callback != nil {
		_ = callback(StreamEvent{Type: "started", Message: "Starting generation..."})
	}

	iter := p.client.Models.GenerateContentStream(ctx, request.Model, contents, config)

	var accumulatedText string
	var finalUsage *genai.GenerateContentResponseUsageMetadata
	eventCount := 0

	for chunk, err := range iter {
		if err != nil {
			log.Printf("❌ GEMINI STREAMING ERROR: %v", err)
			transaction.SetTag("success", "false")
			sentry.CaptureException(err)
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}

		eventCount++

		if len(chunk.Candidates) > 0 && len(chunk.Candidates[0].Content.Parts) > 0 {
			text := chunk.Candidates[0].Content.Parts[0].Text
			if text != "" {
				accumulatedText += text
				if callback != nil {
					_ = callback(StreamEvent{
						Type:    "text_delta",
						Message: text,
						Data: map[string]any{
							"accumulated_length": len(accumulatedText),
						},
					})
				}
			}
			if eventCount <= maxLogEventCount {
				log.Printf("✅ Gemini chunk #%d: +%d chars (total: %d)", eventCount, len(text), len(accumulatedText))
			}
		}

		if chunk.UsageMetadata != nil {
			finalUsage = chunk.UsageMetadata
		}
	}

	log.Printf("📦 Gemini stream complete - accumulated text: %d chars", len(accumulatedText))

	if callback != nil {
		_ = callback(StreamEvent{
			Type:    "completed",
			Message: "Generation complete",
			Data: map[string]any{
				"total_length": len(accumulatedText),
				"event_count":  eventCount,
			},
		})
	}

	log.Printf("⏱️  GEMINI STREAMING TIME: %v", time.Since(startTime))

	transaction.SetTag("success", "true")
	return &ChatResponse{
		RawOutput: accumulatedText,
		Usage:     finalUsage,
	}, nil
}

// buildGeminiContents converts our input array to Gemini Content format
func (p *GeminiProvider) buildGeminiContents(inputArray []map[string]any) []*genai.Content {
	var contents []*genai.Content

	for _, item := range inputArray {
		role, hasRole := item["role"].(string)
		content, hasContent := item["content"].(string)

		if !hasRole || !hasContent {
			log.Printf("⚠️  Skipping invalid input item (missing role or content): %v", item)
			continue
		}

		// Gemini uses "user" and "model"
		geminiRole := geminiUserRole
		if role == "assistant" {
			geminiRole = "model"
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{{Text: content}},
		})
	}

	return contents
}

// buildGeminiConfig builds the generation config with structured output
func (p *GeminiProvider) buildGeminiConfig(request *ChatRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
	}

	if request.OutputSchema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = p.convertSchemaToGemini()
	}

	return config
}

// convertSchemaToGemini returns the assistant response schema in Gemini's
// native Schema type. Gemini does not accept raw JSON Schema maps, so the
// structure is mirrored by hand.
func (p *GeminiProvider) convertSchemaToGemini() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"message": {Type: genai.TypeString},
			"actions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"kind":                  {Type: genai.TypeString},
						"parameters":            {Type: genai.TypeObject},
						"requires_confirmation": {Type: genai.TypeBoolean},
						"description":           {Type: genai.TypeString},
					},
					Required: []string{"kind", "parameters", "requires_confirmation", "description"},
				},
			},
			"suggestions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"label":      {Type: genai.TypeString},
						"action":     {Type: genai.TypeString},
						"parameters": {Type: genai.TypeObject},
					},
					Required: []string{"label", "action"},
				},
			},
			"metadata": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"confidence": {Type: genai.TypeNumber},
					"mode":       {Type: genai.TypeString},
					"reasoning":  {Type: genai.TypeString},
				},
				Required: []string{"confidence", "mode"},
			},
		},
		Required: []string{"message", "actions", "suggestions", "metadata"},
	}
}
