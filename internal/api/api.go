// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/templestreet/forecast-app/internal/api/handlers"
	"github.com/templestreet/forecast-app/internal/api/middleware"
	"github.com/templestreet/forecast-app/internal/service"
)

type Services struct {
	PlanService     *service.PlanService
	AccuracyService *service.AccuracyService
}

func NewRouter(services *Services, uploadDir string, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.PlanService != nil {
			planHandler := handlers.NewPlanHandler(services.PlanService, uploadDir)
			planGroup := apiGroup.Group("/plan")
			{
				planGroup.POST("/upload", planHandler.UploadPlan)
				planGroup.GET("/latest", planHandler.GetLatestSummary)
			}
		}

		if services.AccuracyService != nil {
			accuracyHandler := handlers.NewAccuracyHandler(services.AccuracyService, uploadDir)
			accuracyGroup := apiGroup.Group("/accuracy")
			{
				accuracyGroup.POST("/upload", accuracyHandler.UploadAccuracy)
				accuracyGroup.GET("/latest", accuracyHandler.GetLatestSummary)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
