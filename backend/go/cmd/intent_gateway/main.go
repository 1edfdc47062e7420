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
	"speech_to_act/backend/go/internal/database/kafka"
	"speech_to_act/backend/go/internal/database/redis"
	"speech_to_act/backend/go/internal/gateway/api"
	"speech_to_act/backend/go/internal/gateway/backend"
	"speech_to_act/backend/go/internal/gateway/publisher"
	"speech_to_act/backend/go/internal/gateway/service"
	"speech_to_act/backend/go/internal/gateway/store"
	"speech_to_act/backend/go/internal/models"
	httpserver "speech_to_act/backend/go/pkg/http"
	"speech_to_act/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// eventPublisher 是 main 需要关闭的发布器。
type eventPublisher interface {
	service.EventPublisher
	Close() error
}

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
	serviceLogger := logger.New("IntentGateway", "", "")

	ttl, err := cfg.Gateway.TTL()
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Invalid pending TTL")
	}

	// Pending store
	var pendingStore store.PendingStore
	switch cfg.Gateway.PendingStore {
	case "redis":
		rdb, err := redis.GetClient(&cfg.Databases.Redis)
		if err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to connect to Redis")
		}
		pendingStore = store.NewRedisStore(rdb, cfg.Gateway.RedisPrefix, ttl)
		serviceLogger.Info("Using Redis pending store at " + cfg.Databases.Redis.Address)
	default:
		pendingStore = store.NewMemoryStore(ttl)
		serviceLogger.Info("Using in-memory pending store")
	}

	// Event publisher
	var events eventPublisher = publisher.NopPublisher{}
	if kafka.Enabled(&cfg.Databases.Kafka) {
		if created, err := kafka.EnsureTopics(&cfg.Databases.Kafka, cfg.Gateway.EventsTopic); err != nil {
			serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Warn("Could not ensure Kafka topics")
		} else if len(created) > 0 {
			serviceLogger.WithPayload(map[string]interface{}{"topics": created}).Info("Created Kafka topics")
		}
		events = publisher.NewKafkaPublisher(cfg.Databases.Kafka.Brokers, cfg.Gateway.EventsTopic, serviceLogger)
		serviceLogger.Info("Publishing intent events to Kafka topic " + cfg.Gateway.EventsTopic)
	}

	// Backend client
	httpClient, err := httpserver.NewClient(cfg.Middleware.CircuitBreaker, serviceLogger)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create backend HTTP client")
	}
	backendClient := backend.NewClient(cfg.Gateway.BackendURL, httpClient)

	coordinator := service.NewCoordinator(pendingStore, backendClient, serviceLogger,
		service.WithPublisher(events),
		service.WithBackendURL(cfg.Gateway.BackendURL),
	)

	// Setup HTTP server
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewAPI(coordinator, serviceLogger))

	srv, err := httpserver.NewServer(cfg, router,
		httpserver.WithAddress(cfg.Gateway.ServerAddress),
		httpserver.WithLogger(serviceLogger),
	)
	if err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Fatal("Failed to create HTTP server")
	}

	go func() {
		serviceLogger.Info("Backend URL: " + cfg.Gateway.BackendURL)
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

	if err := events.Close(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Kafka publisher")
	}
	if err := redis.Close(); err != nil {
		serviceLogger.WithError(models.ErrorInfo{Message: err.Error()}).Error("Error closing Redis client")
	}

	serviceLogger.Info("Server gracefully stopped")
}
