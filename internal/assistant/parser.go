package assistant

import (
	"encoding/json"
	"strings"

	"github.com/dawless-studio/studio-api/internal/logger"
	"github.com/dawless-studio/studio-api/internal/models"
)

const (
	fallbackConfidence = 0.5
	fallbackMode       = models.ModeSensei
)

// ParseResponse converts raw model output into a structured response.
// Malformed output never fails the turn: anything that does not decode
// into the expected shape comes back as a plain conversational reply
// with no actions attached.
func ParseResponse(raw string) *models.StructuredResponse {
	trimmed := strings.TrimSpace(raw)

	var resp models.StructuredResponse
	if err := json.Unmarshal([]byte(trimmed), &resp); err != nil || resp.Message == "" {
		if err != nil {
			logger.Warn("Structured response parse failed, falling back to plain text", logger.Fields{
				"error":       err.Error(),
				"output_size": len(raw),
			})
		}
		return fallbackResponse(raw)
	}

	normalize(&resp)
	return &resp
}

// fallbackResponse wraps unparseable output as a conversational turn
func fallbackResponse(raw string) *models.StructuredResponse {
	return &models.StructuredResponse{
		Message:     raw,
		Actions:     []models.Action{},
		Suggestions: []models.Suggestion{},
		Metadata: models.ResponseMetadata{
			Confidence: fallbackConfidence,
			Mode:       fallbackMode,
		},
	}
}

// normalize fills in fields the model is allowed to omit so callers
// never see nil slices or an empty mode
func normalize(resp *models.StructuredResponse) {
	if resp.Actions == nil {
		resp.Actions = []models.Action{}
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []models.Suggestion{}
	}
	if resp.Metadata.Mode == "" {
		resp.Metadata.Mode = fallbackMode
	}
}
