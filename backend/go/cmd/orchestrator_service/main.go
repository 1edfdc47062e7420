package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speech_to_act/backend/go/internal/config"
	"speech_to_act/backend/go/internal/mapping"
	"speech_to_act/backend/go/internal/models"
	"speech_to_act/backend/go/internal/orchestrator/api"
	"speech_to_act/backend/go/internal/orchestrator/gatewayclient"
	"speech_to_act/backend/go/internal/orchestrator/service"
	httpserver "speech_to_act/backend/go/pkg/http"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logger.InitFromString(cfg.Logger.Level); err != nil {
		log.Fatalf("Invalid logger level: %v", err)
	}
	serviceLogger := logger.New("Orchestrator", "", "")

	// Gateway client
	httpClient, err := httpserver.NewClient(cfg.Middleware.CircuitBreaker, serviceLogger)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create gateway HTTP client")
	}
	gateway := gatewayclient.New(cfg.Orchestrator.GatewayURL, httpClient)
	pipeline := service.NewPipeline(mapping.NewMapper(), gateway, serviceLogger, cfg.Orchestrator.GatewayURL)

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewAPI(pipeline, serviceLogger))

	srv, err := httpserver.NewServer(cfg, router,
		httpserver.WithAddress(cfg.Orchestrator.ServerAddress),
		httpserver.WithLogger(serviceLogger),
	)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create HTTP server")
	}

	go func() {
		serviceLogger.Info("Gateway URL: " + cfg.Orchestrator.GatewayURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("HTTP server failed to start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	serviceLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Server forced to shutdown")
	}
	serviceLogger.Info("Server gracefully stopped")
}
