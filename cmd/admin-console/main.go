package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"bluecarbon/admin-console/internal/admin"
	"bluecarbon/admin-console/internal/config"
	"bluecarbon/admin-console/internal/dashboard"
	"bluecarbon/admin-console/internal/gateway"
	"bluecarbon/admin-console/internal/notifications"
	"bluecarbon/admin-console/internal/remarks"
	"bluecarbon/admin-console/internal/session"
	"bluecarbon/admin-console/internal/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load environment and configuration
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on environment", zap.Error(err))
	}
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Open the durable session slot store
	slots, err := storage.Open(cfg.Session.StoragePath)
	if err != nil {
		logger.Fatal("Failed to open session storage", zap.Error(err))
	}
	defer slots.Close()

	// Wire services
	gw := gateway.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, gateway.DemoLogin{
		Enabled:     cfg.Session.DemoLoginEnabled,
		Email:       cfg.Session.DemoEmail,
		Password:    cfg.Session.DemoPassword,
		TokenSecret: cfg.Session.DemoTokenSecret,
	}, logger)

	hub := notifications.NewHub(logger)
	defer hub.Close()

	sessions := session.NewManager(gw, slots, hub, logger)
	generator := remarks.NewGenerator(cfg.Gemini.Endpoint, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Backend.Timeout, logger)
	stats := dashboard.NewAggregator(gw, 5*time.Minute, logger)

	// Re-establish any prior session
	sessions.Restore(context.Background())

	// Keep the dashboard cache warm
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
		defer cancel()
		stats.Refresh(ctx)
	}); err != nil {
		logger.Fatal("Failed to schedule stats refresh", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	handler := admin.NewHandler(sessions, gw, generator, stats, hub, logger)
	api := router.Group("/api/v1")
	{
		admin.RegisterRoutes(api, handler)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Admin console started",
		zap.Int("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
