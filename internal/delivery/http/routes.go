package http

import (
	"github.com/gin-gonic/gin"

	"github.com/preciolens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("/resolve", handler.ResolveProduct)
			products.GET("/:ean", handler.GetProduct)
			products.GET("/:ean/export", handler.ExportProduct)
		}

		servers := v1.Group("/servers")
		{
			servers.GET("", handler.ListServers)
			servers.POST("", handler.SaveServer)
			servers.POST("/bulk-delete", handler.BulkDeleteServers)
			servers.GET("/:alias", handler.GetServer)
			servers.PUT("/:alias", handler.UpdateServer)
			servers.DELETE("/:alias", handler.DeleteServer)
		}
	}

	return router
}
