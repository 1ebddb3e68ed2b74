package api_server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/customs-docflow/internal/api_server/handler"
	"github.com/customs-docflow/internal/api_server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	exportHandler *handler.ExportHandler,
	documentHandler *handler.DocumentHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Host transmission operations
		export := v1.Group("/export")
		{
			export.POST("/send-to-host/:id", exportHandler.SendToHost)
		}

		// Document reads and audit history
		documents := v1.Group("/documents")
		{
			documents.GET("/:id", documentHandler.GetByID)
			documents.GET("/:id/transmissions", documentHandler.GetTransmissions)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
