package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dawless-studio/studio-api/internal/actions"
	"github.com/dawless-studio/studio-api/internal/api/handlers"
	apimiddleware "github.com/dawless-studio/studio-api/internal/api/middleware"
	"github.com/dawless-studio/studio-api/internal/assistant"
	"github.com/dawless-studio/studio-api/internal/config"
	"github.com/dawless-studio/studio-api/internal/metrics"
	"github.com/dawless-studio/studio-api/internal/observability"
	"github.com/dawless-studio/studio-api/internal/services"
	"github.com/dawless-studio/studio-api/internal/settings"
)

// Deps bundles the shared components the router wires into handlers
type Deps struct {
	DB            *gorm.DB
	Config        *config.Config
	Registry      *actions.Registry
	Assistant     *assistant.Service
	Settings      *settings.Store
	Langfuse      *observability.LangfuseClient
	SentryMetrics *metrics.SentryMetrics
	CloudWatch    *metrics.Client
	Version       string
}

func SetupRouter(deps Deps) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.SentryMetrics, deps.CloudWatch))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Config)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(deps.Version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	usageService := services.NewUsageService(deps.DB)

	// API routes v1
	v1 := router.Group("/api/v1")
	if deps.Config.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}
	{
		// Chat endpoints - assistant turns with structured actions
		chatHandler := handlers.NewChatHandler(deps.Assistant, deps.Langfuse, usageService, deps.SentryMetrics, deps.CloudWatch, deps.Config)
		v1.POST("/chat", chatHandler.Chat)
		v1.POST("/chat/stream", chatHandler.ChatStream)
		v1.DELETE("/session/:id", chatHandler.ClearSession)

		// Action execution - runs approved actions against a snapshot
		actionsHandler := handlers.NewActionsHandler(deps.Registry, usageService, deps.SentryMetrics, deps.CloudWatch)
		v1.POST("/actions/execute", actionsHandler.Execute)

		// Settings document
		settingsHandler := handlers.NewSettingsHandler(deps.Settings)
		v1.GET("/settings", settingsHandler.GetSettings)
		v1.PUT("/settings", settingsHandler.UpdateSettings)
	}

	return router
}
