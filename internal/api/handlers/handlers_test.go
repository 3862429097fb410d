package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/assistant"
	"github.com/dawless-studio/studio-api/internal/config"
	"github.com/dawless-studio/studio-api/internal/llm"
	"github.com/dawless-studio/studio-api/internal/metrics"
	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/dawless-studio/studio-api/internal/observability"
	"github.com/dawless-studio/studio-api/internal/services"
	"github.com/dawless-studio/studio-api/internal/settings"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Environment: "test", DemoMode: true, DefaultModel: "gpt-4o-mini"}
	registry := actions.NewRegistry()
	factory := llm.NewProviderFactory("", "", true)
	svc := assistant.NewService(factory, registry, cfg.DefaultModel)
	lfClient := observability.NewLangfuseClient(context.Background(), cfg)
	usage := services.NewUsageService(nil)
	sentryMetrics := metrics.NewSentryMetrics()
	cwMetrics, err := metrics.NewClient(context.Background(), "test")
	require.NoError(t, err)

	store, err := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	router := gin.New()
	router.GET("/health", NewHealthHandler(nil, cfg).HealthCheck)
	router.GET("/api/metrics", NewMetricsHandler("test").GetMetrics)

	chatHandler := NewChatHandler(svc, lfClient, usage, sentryMetrics, cwMetrics, cfg)
	router.POST("/api/v1/chat", chatHandler.Chat)
	router.POST("/api/v1/chat/stream", chatHandler.ChatStream)
	router.DELETE("/api/v1/session/:id", chatHandler.ClearSession)

	actionsHandler := NewActionsHandler(registry, usage, sentryMetrics, cwMetrics)
	router.POST("/api/v1/actions/execute", actionsHandler.Execute)

	settingsHandler := NewSettingsHandler(store)
	router.GET("/api/v1/settings", settingsHandler.GetSettings)
	router.PUT("/api/v1/settings", settingsHandler.UpdateSettings)

	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["demo_mode"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, resp.System.GoVersion)
}

func TestChatEndpointDemoMode(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/chat", gin.H{
		"message":    "make the bass darker",
		"session_id": "s1",
		"state": gin.H{
			"tempo": 120,
			"instruments": []gin.H{
				{"id": "bass-1", "type": "synth", "role": "bass"},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, llm.DemoMessage, resp["message"])
	assert.Empty(t, resp["actions"])
	assert.Equal(t, "s1", resp["session_id"])

	metadata, ok := resp["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.0, metadata["confidence"])
	assert.Equal(t, "jam_buddy", metadata["mode"])
}

func TestChatEndpointRequiresMessage(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/chat", gin.H{"session_id": "s1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearSessionEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session/s1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp["session_id"])
	assert.Equal(t, true, resp["cleared"])
}

func TestExecuteEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/actions/execute", gin.H{
		"actions": []gin.H{
			{"kind": "set_tempo", "parameters": gin.H{"bpm": 140}},
			{"kind": "set_parameter", "parameters": gin.H{
				"instrument_id": "bass-1", "parameter": "cutoff", "value": 0.3,
			}},
		},
		"state": gin.H{
			"tempo": 120,
			"instruments": []gin.H{
				{"id": "bass-1", "type": "synth", "role": "bass"},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results      []actions.ExecutionResult `json:"results"`
		AllSucceeded bool                      `json:"all_succeeded"`
		State        models.ProjectState       `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 2)
	assert.True(t, resp.AllSucceeded)
	assert.Equal(t, 140.0, resp.State.Tempo)
	assert.Equal(t, 0.3, resp.State.Instruments[0].Parameters["cutoff"])
}

func TestExecuteEndpointFailFast(t *testing.T) {
	router := setupTestRouter(t)

	w := postJSON(t, router, "/api/v1/actions/execute", gin.H{
		"actions": []gin.H{
			{"kind": "set_tempo", "parameters": gin.H{"bpm": 140}},
			{"kind": "teleport", "parameters": gin.H{}},
			{"kind": "add_marker", "parameters": gin.H{"position": 0, "label": "x", "type": "cue"}},
		},
		"state": gin.H{"tempo": 120},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results      []actions.ExecutionResult `json:"results"`
		AllSucceeded bool                      `json:"all_succeeded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Results, 2) // third never attempted
	assert.False(t, resp.AllSucceeded)
	assert.Equal(t, "unknown action type: teleport", resp.Results[1].Error)
}

func TestExecuteEndpointConfirmationByIndex(t *testing.T) {
	router := setupTestRouter(t)

	body := gin.H{
		"actions": []gin.H{
			{"kind": "set_tempo", "parameters": gin.H{"bpm": 150}, "requires_confirmation": true},
		},
		"state":    gin.H{"tempo": 120},
		"approved": []int{0},
	}

	w := postJSON(t, router, "/api/v1/actions/execute", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results      []actions.ExecutionResult `json:"results"`
		AllSucceeded bool                      `json:"all_succeeded"`
		State        models.ProjectState       `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.AllSucceeded)
	assert.Equal(t, 150.0, resp.State.Tempo)

	// Without approval the same action is declined
	delete(body, "approved")
	w = postJSON(t, router, "/api/v1/actions/execute", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.AllSucceeded)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "action declined by user", resp.Results[0].Error)
	assert.Equal(t, 120.0, resp.State.Tempo)
}

func TestSettingsEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	// Defaults
	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var doc settings.Settings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "dark", doc.Theme)

	// Partial update
	data, err := json.Marshal(gin.H{"theme": "light", "api_key": "sk-test"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPut, "/api/v1/settings", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "light", doc.Theme)
	assert.Equal(t, "sk-test", doc.APIKey)
	assert.False(t, doc.APIKeyValid)
	assert.True(t, doc.GridSnap) // untouched fields keep their values
}
