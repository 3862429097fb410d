package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/metrics"
	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/dawless-studio/studio-api/internal/services"
	"github.com/dawless-studio/studio-api/internal/studio"
)

type ActionsHandler struct {
	registry      *actions.Registry
	usage         *services.UsageService
	sentryMetrics *metrics.SentryMetrics
	cwMetrics     *metrics.Client
}

func NewActionsHandler(registry *actions.Registry, usage *services.UsageService, sentryMetrics *metrics.SentryMetrics, cwMetrics *metrics.Client) *ActionsHandler {
	return &ActionsHandler{
		registry:      registry,
		usage:         usage,
		sentryMetrics: sentryMetrics,
		cwMetrics:     cwMetrics,
	}
}

type ExecuteRequest struct {
	SessionID string              `json:"session_id"`
	Actions   []models.Action     `json:"actions" binding:"required"`
	State     models.ProjectState `json:"state"`
	// Approved holds indices into Actions the user confirmed in the UI.
	// Actions flagged requires_confirmation and not listed here are declined.
	Approved []int `json:"approved"`
}

// Execute runs a batch of actions against a studio built from the
// submitted snapshot and returns the results plus the updated snapshot
func (h *ActionsHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("❌ Execute: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("📨 Execute: %d actions, %d approved, instruments: %d",
		len(req.Actions), len(req.Approved), len(req.State.Instruments))

	memory := studio.NewMemory(req.State)
	confirm := indexApproval(req.Actions, req.Approved)
	dispatcher := actions.NewDispatcher(h.registry, memory.Engines(), confirm)

	result := dispatcher.ExecuteBatch(c.Request.Context(), req.Actions)

	h.recordResults(c, req.SessionID, result)

	log.Printf("✅ Execute: %d/%d actions succeeded", succeededCount(result), len(req.Actions))

	c.JSON(http.StatusOK, gin.H{
		"request_id":    c.GetString("request_id"),
		"results":       result.Results,
		"all_succeeded": result.AllSucceeded,
		"state":         memory.Snapshot(),
	})
}

// indexApproval builds the confirmation gate for one batch. The dispatcher
// asks for confirmation in batch order, so the queue of confirmable
// indices lines up one to one with the calls it makes.
func indexApproval(batch []models.Action, approved []int) actions.ConfirmFunc {
	approvedSet := make(map[int]bool, len(approved))
	for _, idx := range approved {
		approvedSet[idx] = true
	}

	var queue []int
	for i, action := range batch {
		if action.RequiresConfirmation {
			queue = append(queue, i)
		}
	}

	pos := 0
	return func(_ context.Context, action models.Action) (bool, error) {
		if pos >= len(queue) {
			return false, fmt.Errorf("unexpected confirmation request for %s", action.Kind)
		}
		idx := queue[pos]
		pos++
		return approvedSet[idx], nil
	}
}

// recordResults writes audit rows and metrics for one executed batch
func (h *ActionsHandler) recordResults(c *gin.Context, sessionID string, result actions.BatchResult) {
	requestID := c.GetString("request_id")
	failed := 0

	for _, r := range result.Results {
		if !r.Success {
			failed++
		}
		h.usage.RecordAction(sessionID, requestID, r.Action, r.Action.RequiresConfirmation, r.Success, r.Error)
		h.cwMetrics.RecordActionExecution(r.Action.Kind, r.Success)
	}

	h.sentryMetrics.RecordActionBatch(c.Request.Context(), len(result.Results), failed, result.AllSucceeded)
}

func succeededCount(result actions.BatchResult) int {
	n := 0
	for _, r := range result.Results {
		if r.Success {
			n++
		}
	}
	return n
}
