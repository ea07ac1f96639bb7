package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crisis-service/internal/config"
	"crisis-service/internal/logging"
)

// NewRouter builds the HTTP surface of the crisis engine.
func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		api.POST("/evaluate", h.Evaluate)

		api.GET("/alerts/:id", h.GetAlert)
		api.POST("/alerts/:id/resolve", h.ResolveAlert)
		api.GET("/alerts/:id/audit", h.GetAlertAudit)
		api.GET("/alerts/subject/:subject_id", h.GetAlertsBySubject)

		api.GET("/resources", h.GetResources)
		api.GET("/history/:subject_id", h.GetHistory)

		// Contact points for handler roles
		api.POST("/contact-points", h.CreateContactPoint)
		api.GET("/contact-points/:id", h.GetContactPoint)
		api.DELETE("/contact-points/:id", h.DeleteContactPoint)

		api.GET("/ws", h.HandlerSocket)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
