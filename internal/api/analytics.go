package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/lectern/internal/analytics"
	"github.com/stwalsh4118/lectern/internal/logger"
)

// AnalyticsHandler handles analytics API requests
type AnalyticsHandler struct {
	service *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler instance
func NewAnalyticsHandler(service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetAnalytics handles GET /api/analytics
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	report, err := h.service.Report(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to compute analytics")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// SetupAnalyticsRoutes registers analytics routes
func SetupAnalyticsRoutes(apiGroup *gin.RouterGroup, service *analytics.Service) {
	handler := NewAnalyticsHandler(service)
	apiGroup.GET("/analytics", handler.GetAnalytics)
}
