package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai_todo/internal/config"
	httpServer "ai_todo/internal/http"
	"ai_todo/internal/http/middleware"
	"ai_todo/internal/logger"
	"ai_todo/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	store, closeStore, err := repository.OpenStore(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open task store", "error", err)
	}
	defer closeStore()

	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.Use(middleware.Metrics())

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer middleware.CloseRedisRateLimiter()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	hub := httpServer.RegisterRoutes(r, store, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// close feeds first, hijacked sockets are not tracked by Shutdown
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
