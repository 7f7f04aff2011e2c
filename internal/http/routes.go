package http

import (
	"ai_todo/internal/chat"
	"ai_todo/internal/config"
	"ai_todo/internal/http/handlers"
	"ai_todo/internal/http/middleware"
	"ai_todo/internal/interpreter"
	"ai_todo/internal/repository"
	"ai_todo/internal/service"
	"ai_todo/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the task API, the chat relay and the refresh feed.
// The returned hub must be closed on shutdown.
func RegisterRoutes(r *gin.Engine, store repository.TaskStore, cfg *config.Config) *ws.Hub {
	hub := ws.NewHub()

	webhook := interpreter.NewWebhookClient(cfg.ChatWebhookURL, cfg.ChatEnhanceURL, cfg.ChatWebhookTimeout)
	tasks := service.NewTaskService(store).WithNotifier(hub)
	if cfg.ChatEnhanceURL != "" {
		tasks.WithEnhancer(webhook)
	}

	h := handlers.NewHandler(tasks, chat.NewRelay(webhook), hub, cfg.AllowedOrigin)
	healthHandler := handlers.NewHealthHandler(store, cfg.AppVersion)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Refresh feed
	r.GET("/ws", h.WS)

	root := r.Group("")
	root.Use(middleware.APIRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(root, h, cfg)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.APIRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	v1.GET("/health", healthHandler.Health)
	registerAPIRoutes(v1, h, cfg)

	return hub
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, cfg *config.Config) {
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/:id", h.GetTask)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	chatGroup := api.Group("/chat", middleware.ChatCORS())
	{
		chatGroup.OPTIONS("", h.ChatPreflight)
		chatGroup.POST("", middleware.ChatRateLimit(cfg.ChatRateLimit, cfg.ChatRateWindow), h.Chat)
	}
}
