package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/bjorkit/backupwatch/api/handlers"
	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, cfg *config.AppConfig) {
	if s == nil {
		panic("Services cannot be nil")
	}

	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(s.Aggregator, cfg.DefaultDaysBack))
	r.GET("/status/latest", handlers.LatestStatus(s.Aggregator))
}
