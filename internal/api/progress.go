// Package api contains the HTTP handlers for pages and the JSON API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/logger"
	"github.com/stwalsh4118/lectern/internal/models"
)

const dbTimeout = 5 * time.Second

// Request/Response DTOs

// SaveProgressRequest is the payload posted by the player while a video plays.
type SaveProgressRequest struct {
	VideoPath     string  `json:"video_path" binding:"required"`
	Chapter       string  `json:"chapter"`
	VideoName     string  `json:"video_name"`
	CurrentTime   float64 `json:"current_time"`
	Duration      float64 `json:"duration"`
	PlaybackSpeed float64 `json:"playback_speed"`
}

// SaveProgressResponse echoes the derived fields of the saved row.
type SaveProgressResponse struct {
	Status          string  `json:"status"`
	WatchPercentage float64 `json:"watch_percentage"`
	Timestamp       string  `json:"timestamp"`
	Completed       bool    `json:"completed"`
}

// ProgressResponse is the stored state for one video. A video that has never
// been watched yields the zero-value record with a null last_watched, never
// an error.
type ProgressResponse struct {
	CurrentTime     float64 `json:"current_time"`
	PlaybackSpeed   float64 `json:"playback_speed"`
	WatchPercentage float64 `json:"watch_percentage"`
	Completed       bool    `json:"completed"`
	LastWatched     *string `json:"last_watched"`
}

// ProgressWithDuration extends ProgressResponse for the get-all listing.
type ProgressWithDuration struct {
	ProgressResponse
	Duration float64 `json:"duration"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ProgressHandler handles watch-progress API requests
type ProgressHandler struct {
	repos *db.Repositories
}

// NewProgressHandler creates a new progress handler instance
func NewProgressHandler(repos *db.Repositories) *ProgressHandler {
	return &ProgressHandler{repos: repos}
}

// SaveProgress handles POST /api/save-progress
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	if req.PlaybackSpeed <= 0 {
		req.PlaybackSpeed = 1.0
	}

	progress := models.NewVideoProgress(
		req.VideoPath,
		req.Chapter,
		req.VideoName,
		req.CurrentTime,
		req.Duration,
		req.PlaybackSpeed,
	)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.repos.Progress.Save(ctx, progress); err != nil {
		logger.Log.Error().
			Err(err).
			Str("video_path", req.VideoPath).
			Msg("Failed to save progress")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	logger.Log.Debug().
		Str("video_path", progress.VideoPath).
		Float64("current_time", progress.CurrentTime).
		Float64("watch_percentage", progress.WatchPercentage).
		Bool("completed", progress.Completed).
		Msg("Progress saved")

	c.JSON(http.StatusOK, SaveProgressResponse{
		Status:          "success",
		WatchPercentage: progress.WatchPercentage,
		Timestamp:       progress.LastWatchedString(),
		Completed:       progress.Completed,
	})
}

// GetProgress handles GET /api/get-progress/*videoPath
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	videoPath := strings.TrimPrefix(c.Param("videoPath"), "/")

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	progress, err := h.repos.Progress.Get(ctx, videoPath)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// Never-watched is not an error: return the zero-value record.
			c.JSON(http.StatusOK, ProgressResponse{
				PlaybackSpeed: 1.0,
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("video_path", videoPath).
			Msg("Failed to get progress")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toProgressResponse(progress))
}

// GetAllProgress handles GET /api/get-all-progress
func (h *ProgressHandler) GetAllProgress(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	rows, err := h.repos.Progress.All(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list progress")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	response := make(map[string]ProgressWithDuration, len(rows))
	for i := range rows {
		row := &rows[i]
		response[row.VideoPath] = ProgressWithDuration{
			ProgressResponse: toProgressResponse(row),
			Duration:         row.Duration,
		}
	}

	c.JSON(http.StatusOK, response)
}

func toProgressResponse(p *models.VideoProgress) ProgressResponse {
	resp := ProgressResponse{
		CurrentTime:     p.CurrentTime,
		PlaybackSpeed:   p.PlaybackSpeed,
		WatchPercentage: p.WatchPercentage,
		Completed:       p.Completed,
	}
	if s := p.LastWatchedString(); s != "" {
		resp.LastWatched = &s
	}
	return resp
}

// SetupProgressRoutes registers progress-related routes
func SetupProgressRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories) {
	handler := NewProgressHandler(repos)

	apiGroup.POST("/save-progress", handler.SaveProgress)
	apiGroup.GET("/get-progress/*videoPath", handler.GetProgress)
	apiGroup.GET("/get-all-progress", handler.GetAllProgress)
}
