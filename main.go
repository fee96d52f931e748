package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/course-service/internal/catalog"
	"github.com/SAP-F-2025/course-service/internal/config"
	"github.com/SAP-F-2025/course-service/internal/events"
	"github.com/SAP-F-2025/course-service/internal/handlers"
	"github.com/SAP-F-2025/course-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/course-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-service/internal/scheduler"
	"github.com/SAP-F-2025/course-service/internal/services"
	"github.com/SAP-F-2025/course-service/internal/utils"
	"github.com/SAP-F-2025/course-service/internal/validator"
	"github.com/SAP-F-2025/course-service/pkg"
)

const seedTimeout = 2 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Redis is optional; without it users are read straight from Casdoor
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
		CasdoorConfig: casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		},
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	var publisher events.EventPublisher = events.NewLoggingEventPublisher(slogLogger)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.KafkaBrokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to create Kafka publisher: %v", err)
		}
		publisher = kafkaPublisher
	}

	serviceManager := services.NewServiceManager(db, repo, slogLogger, validator.New(), publisher, services.DefaultServiceManagerConfig())
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	if cfg.CatalogDir != "" {
		seedCatalog(cfg.CatalogDir, serviceManager.Catalog(), slogLogger)
	}

	statsScheduler, err := scheduler.NewStatisticsScheduler(cfg.StatsCron, serviceManager.Statistics(), slogLogger, scheduler.DefaultSweepTimeout)
	if err != nil {
		log.Fatalf("Failed to create statistics scheduler: %v", err)
	}
	statsScheduler.Start()

	authMiddleware := handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, repo.User(), logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, repo.User(), authMiddleware, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	if err := statsScheduler.Stop(ctx); err != nil {
		logger.Error("Statistics scheduler did not stop cleanly", "error", err)
	}
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close event publisher", "error", err)
	}
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close repositories", "error", err)
	}

	logger.Info("Server exited")
}

// seedCatalog loads course documents from disk; a bad catalog is logged and skipped
func seedCatalog(dir string, catalogService services.CatalogService, logger *slog.Logger) {
	loader, err := catalog.NewLoader(dir, logger)
	if err != nil {
		logger.Error("Failed to open catalog", "dir", dir, "error", err)
		return
	}

	docs, err := loader.Load()
	if err != nil {
		logger.Error("Failed to load catalog", "dir", dir, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	summary, err := catalogService.Seed(ctx, docs)
	if err != nil {
		logger.Error("Failed to seed catalog", "dir", dir, "error", err)
		return
	}

	logger.Info("Catalog seeded",
		"universities", summary.Universities,
		"courses", summary.Courses,
		"topics", summary.Topics,
		"quizzes", summary.Quizzes,
	)
}
