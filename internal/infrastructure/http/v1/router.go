// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockalloc/internal/domain/allocation"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/domain/catalogs/warehouse"
	"stockalloc/internal/infrastructure/http/v1/handlers"
	"stockalloc/internal/infrastructure/http/v1/middleware"
	"stockalloc/internal/infrastructure/storage/postgres"
	"stockalloc/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	AllocationService *allocation.Service
	BatchCatalog      *batches.Service
	WarehouseCatalog  *warehouse.Service
	AuditService      *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1, JWT-protected
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		base := handlers.NewBaseHandler()

		allocationHandler := handlers.NewAllocationHandler(base, cfg.AllocationService, cfg.WarehouseCatalog, cfg.AuditService)
		alloc := api.Group("/allocation")
		{
			alloc.POST("/select-batch", allocationHandler.SelectBatch)
			alloc.POST("/allocate", allocationHandler.Allocate)
		}

		batchHandler := handlers.NewBatchHandler(base, cfg.BatchCatalog)
		batchGroup := api.Group("/batches")
		{
			batchGroup.GET("", batchHandler.List)
			batchGroup.GET("/oldest", batchHandler.Oldest)
		}
	}

	return router
}
