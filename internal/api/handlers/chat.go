package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openai/openai-go/responses"
	"google.golang.org/genai"

	"github.com/dawless-studio/studio-api/internal/assistant"
	"github.com/dawless-studio/studio-api/internal/config"
	"github.com/dawless-studio/studio-api/internal/llm"
	"github.com/dawless-studio/studio-api/internal/metrics"
	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/dawless-studio/studio-api/internal/observability"
	"github.com/dawless-studio/studio-api/internal/services"
)

const (
	// maxMessagePreviewLength is the maximum length for message preview in logs
	maxMessagePreviewLength = 200

	defaultSessionID = "default"
)

type ChatHandler struct {
	service       *assistant.Service
	lfClient      *observability.LangfuseClient
	usage         *services.UsageService
	sentryMetrics *metrics.SentryMetrics
	cwMetrics     *metrics.Client
	cfg           *config.Config
}

func NewChatHandler(
	service *assistant.Service,
	lfClient *observability.LangfuseClient,
	usage *services.UsageService,
	sentryMetrics *metrics.SentryMetrics,
	cwMetrics *metrics.Client,
	cfg *config.Config,
) *ChatHandler {
	return &ChatHandler{
		service:       service,
		lfClient:      lfClient,
		usage:         usage,
		sentryMetrics: sentryMetrics,
		cwMetrics:     cwMetrics,
		cfg:           cfg,
	}
}

type ChatRequest struct {
	Message   string              `json:"message" binding:"required"`
	SessionID string              `json:"session_id"`
	State     models.ProjectState `json:"state"`
	Context   models.ChatContext  `json:"context"`
	Model     string              `json:"model"`
	Provider  string              `json:"provider"`
}

func (r *ChatRequest) sessionID() string {
	if r.SessionID == "" {
		return defaultSessionID
	}
	return r.SessionID
}

// Chat handles one complete assistant turn
func (h *ChatHandler) Chat(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Chat: PANIC recovered: %v", r)
			log.Printf("   Stack trace:\n%s", string(debug.Stack()))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      fmt.Sprintf("Internal server error: %v", r),
				"request_id": c.GetString("request_id"),
			})
		}
	}()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ Chat: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("📨 Chat: Received request")
	log.Printf("   Message preview: %s", truncateString(req.Message, maxMessagePreviewLength))
	log.Printf("   Session: %s, instruments: %d", req.sessionID(), len(req.State.Instruments))

	trace := h.lfClient.StartTrace(c.Request.Context(), "studio-chat", map[string]interface{}{
		"message":    req.Message,
		"session_id": req.sessionID(),
	})
	defer trace.Finish()

	gen := trace.Generation("assistant", map[string]interface{}{
		"session_id": req.sessionID(),
	})
	gen.Input(req.Message)

	startTime := time.Now()
	result, err := h.service.SendMessage(c.Request.Context(), assistant.ChatInput{
		SessionID: req.sessionID(),
		Message:   req.Message,
		State:     req.State,
		Context:   req.Context,
		Model:     req.Model,
		Provider:  req.Provider,
	})
	if err != nil {
		log.Printf("❌ Chat: SendMessage error: %v", err)
		gen.SetLevel("ERROR")
		gen.Output(err.Error())
		gen.Finish()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	gen.Output(result.Response)
	inputTokens, outputTokens, _, totalTokens := extractTokenCounts(result.Usage)
	gen.Usage(map[string]interface{}{
		"input_tokens":  inputTokens,
		"output_tokens": outputTokens,
		"total_tokens":  totalTokens,
	})
	gen.Metadata(map[string]interface{}{
		"actions_count": len(result.Response.Actions),
		"mode":          result.Response.Metadata.Mode,
		"provider":      result.Provider,
	})
	gen.Finish()

	h.recordUsage(c, &req, result, time.Since(startTime), false)

	log.Printf("✅ Chat: %d actions, %d suggestions, mode=%s",
		len(result.Response.Actions), len(result.Response.Suggestions), result.Response.Metadata.Mode)

	c.JSON(http.StatusOK, gin.H{
		"request_id":  c.GetString("request_id"),
		"session_id":  req.sessionID(),
		"message":     result.Response.Message,
		"actions":     result.Response.Actions,
		"suggestions": result.Response.Suggestions,
		"metadata":    result.Response.Metadata,
		"usage":       result.Usage,
	})
}

// ChatStream handles one assistant turn over SSE
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ ChatStream: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("📨 ChatStream: message preview: %s", truncateString(req.Message, maxMessagePreviewLength))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Header("X-Request-ID", c.GetString("request_id"))
	c.Writer.Flush()

	streamCallback := func(event llm.StreamEvent) error {
		eventJSON, err := json.Marshal(event)
		if err != nil {
			log.Printf("❌ ChatStream: Failed to marshal stream event: %v", err)
			return err
		}

		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON); err != nil {
			log.Printf("❌ ChatStream: Failed to write SSE event: %v", err)
			return err
		}

		c.Writer.Flush()
		return nil
	}

	startTime := time.Now()
	result, err := h.service.StreamMessage(c.Request.Context(), assistant.ChatInput{
		SessionID: req.sessionID(),
		Message:   req.Message,
		State:     req.State,
		Context:   req.Context,
		Model:     req.Model,
		Provider:  req.Provider,
	}, streamCallback)
	if err != nil {
		log.Printf("❌ ChatStream: StreamMessage error: %v", err)
		errorEvent := gin.H{
			"type":    "error",
			"message": err.Error(),
		}
		eventJSON, _ := json.Marshal(errorEvent)
		_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON)
		c.Writer.Flush()
		return
	}

	h.recordUsage(c, &req, result, time.Since(startTime), true)

	log.Printf("✅ ChatStream: completed, %d actions", len(result.Response.Actions))

	finalEvent := gin.H{
		"type":        "done",
		"request_id":  c.GetString("request_id"),
		"session_id":  req.sessionID(),
		"message":     result.Response.Message,
		"actions":     result.Response.Actions,
		"suggestions": result.Response.Suggestions,
		"metadata":    result.Response.Metadata,
		"usage":       result.Usage,
	}
	eventJSON, _ := json.Marshal(finalEvent)
	_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", eventJSON)
	c.Writer.Flush()
}

// ClearSession drops the conversation history for one session
func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}

	h.service.ClearSession(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"cleared":    true,
	})
}

// recordUsage publishes token metrics for one turn and persists the
// usage record when a database is configured
func (h *ChatHandler) recordUsage(c *gin.Context, req *ChatRequest, result *assistant.ChatResult, duration time.Duration, streamed bool) {
	input, output, reasoning, total := extractTokenCounts(result.Usage)

	h.sentryMetrics.RecordTokenUsage(c.Request.Context(), result.Model, total, input, output, reasoning)
	h.cwMetrics.RecordTokenUsage(result.Model, total, input, output, reasoning)
	h.cwMetrics.RecordGenerationDuration(duration, true)

	if !h.usage.Enabled() {
		return
	}

	record := &models.UsageRecord{
		SessionID:       req.sessionID(),
		RequestID:       c.GetString("request_id"),
		Provider:        result.Provider,
		Model:           result.Model,
		InputTokens:     input,
		OutputTokens:    output,
		ReasoningTokens: reasoning,
		TotalTokens:     total,
		DurationMs:      duration.Milliseconds(),
		Streamed:        streamed,
	}
	if u, ok := result.Usage.(responses.ResponseUsage); ok {
		record.CostUSD = observability.CalculateOpenAICost(result.Model, u)
	}

	h.usage.RecordUsage(record)
}

// extractTokenCounts pulls token counts out of the provider-specific usage struct
func extractTokenCounts(usage any) (input, output, reasoning, total int) {
	switch u := usage.(type) {
	case responses.ResponseUsage:
		return int(u.InputTokens), int(u.OutputTokens),
			int(u.OutputTokensDetails.ReasoningTokens), int(u.TotalTokens)
	case *genai.GenerateContentResponseUsageMetadata:
		if u == nil {
			return 0, 0, 0, 0
		}
		return int(u.PromptTokenCount), int(u.CandidatesTokenCount),
			int(u.ThoughtsTokenCount), int(u.TotalTokenCount)
	}
	return 0, 0, 0, 0
}

// truncateString truncates a string to a maximum length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
