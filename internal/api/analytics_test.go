package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/lectern/internal/analytics"
	"github.com/stwalsh4118/lectern/internal/course"
	"github.com/stwalsh4118/lectern/internal/db"
)

func setupAnalyticsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, db.RunEmbeddedMigrations(sqlDB))
	repos := db.NewRepositories(database)

	root := t.TempDir()
	dir := filepath.Join(root, "chapter_1")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp4"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.mp4"), nil, 0o644))

	service := analytics.NewService(repos, course.NewScanner(root))

	router := gin.New()
	apiGroup := router.Group("/api")
	SetupProgressRoutes(apiGroup, repos)
	SetupAnalyticsRoutes(apiGroup, service)
	return router
}

func TestGetAnalytics(t *testing.T) {
	router := setupAnalyticsRouter(t)

	w := postJSON(router, "/api/save-progress", `{
		"video_path": "chapter_1/a.mp4",
		"chapter": "chapter_1",
		"video_name": "a.mp4",
		"current_time": 95,
		"duration": 100
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = getJSON(router, "/api/analytics")
	require.Equal(t, http.StatusOK, w.Code)

	var report analytics.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	assert.Equal(t, 1, report.TotalVideosWatched)
	assert.Equal(t, 1, report.CompletedVideos)
	assert.Equal(t, int64(95), report.TotalWatchTimeSeconds)

	require.Contains(t, report.ChapterStats, "chapter_1")
	stats := report.ChapterStats["chapter_1"]
	assert.Equal(t, 2, stats.TotalVideos)
	assert.Equal(t, 1, stats.CompletedVideos)
	assert.InDelta(t, 47.5, stats.AvgProgress, 1e-9)
}

func TestGetAnalytics_EmptyLibrary(t *testing.T) {
	router := setupAnalyticsRouter(t)

	w := getJSON(router, "/api/analytics")
	require.Equal(t, http.StatusOK, w.Code)

	var report analytics.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Zero(t, report.TotalVideosWatched)
	assert.Contains(t, report.ChapterStats, "chapter_1")
}
