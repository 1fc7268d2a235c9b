package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/logger"
)

// StatusResponse is the minimal success acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// SettingsHandler handles user-settings API requests
type SettingsHandler struct {
	repos *db.Repositories
}

// NewSettingsHandler creates a new settings handler instance
func NewSettingsHandler(repos *db.Repositories) *SettingsHandler {
	return &SettingsHandler{repos: repos}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	settings, err := h.repos.Settings.GetAll(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to load settings")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles POST /api/settings. The body is a flat key-value
// object; every pair is upserted independently. Non-string values are stored
// as their string representation ("true", "2.5"); callers parse on read.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	pairs := make(map[string]string, len(body))
	for key, value := range body {
		pairs[key] = settingString(value)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.repos.Settings.SetMany(ctx, pairs); err != nil {
		logger.Log.Error().
			Err(err).
			Int("keys", len(pairs)).
			Msg("Failed to update settings")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	logger.Log.Info().
		Int("keys", len(pairs)).
		Msg("Settings updated")

	c.JSON(http.StatusOK, StatusResponse{Status: "success"})
}

// settingString renders a JSON value as the stored string form.
func settingString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SetupSettingsRoutes registers settings routes
func SetupSettingsRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories) {
	handler := NewSettingsHandler(repos)

	apiGroup.GET("/settings", handler.GetSettings)
	apiGroup.POST("/settings", handler.UpdateSettings)
}
