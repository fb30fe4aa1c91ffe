// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/templestreet/forecast-app/internal/api"
	"github.com/templestreet/forecast-app/internal/cache"
	"github.com/templestreet/forecast-app/internal/config"
	"github.com/templestreet/forecast-app/internal/pipeline"
	"github.com/templestreet/forecast-app/internal/repository/postgres"
	"github.com/templestreet/forecast-app/internal/service"
	"github.com/templestreet/forecast-app/internal/storage"
	"github.com/templestreet/forecast-app/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runRepo := pipeline.NewRepository(db.DB.DB)
	reportRepo := postgres.NewReportRepository(db)

	summaryCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, running without it")
		summaryCache = cache.NewNoopReportCache()
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("object storage unavailable, artifacts stay local")
		} else {
			store = minioClient
		}
	}

	// Initialize services
	planService := service.NewPlanService(cfg.Planning, runRepo, reportRepo, summaryCache, store)
	accuracyService := service.NewAccuracyService(cfg.Planning, runRepo, reportRepo, summaryCache, store, planService)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		PlanService:     planService,
		AccuracyService: accuracyService,
	}, cfg.Planning.UploadDir, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
