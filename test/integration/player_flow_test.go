//go:build integration
// +build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/lectern/internal/analytics"
	"github.com/stwalsh4118/lectern/internal/api"
	"github.com/stwalsh4118/lectern/internal/course"
	"github.com/stwalsh4118/lectern/internal/models"
)

// TestWatchFlow drives the API the way the player page does: poll settings,
// save progress while playing, resume, and check analytics.
func TestWatchFlow(t *testing.T) {
	database, repos, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repos.Settings.EnsureDefaults(context.Background()))

	root := setupContentRoot(t, map[string][]string{
		"chapter_1": {"intro.mp4", "setup.mp4", "notes.pdf"},
		"chapter_2": {"advanced.mp4"},
	})
	router := setupAPIRouter(database, repos, course.NewScanner(root))

	// The player loads settings first.
	w := doGet(router, "/api/settings")
	require.Equal(t, http.StatusOK, w.Code)
	var settings map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, "true", settings[models.SettingAutoResume])

	// Periodic saves while the first video plays.
	for _, currentTime := range []float64{10, 30, 95} {
		w = doPost(router, "/api/save-progress", fmt.Sprintf(`{
			"video_path": "chapter_1/intro.mp4",
			"chapter": "chapter_1",
			"video_name": "intro.mp4",
			"current_time": %g,
			"duration": 100,
			"playback_speed": 1.5
		}`, currentTime))
		require.Equal(t, http.StatusOK, w.Code)
	}

	var saved api.SaveProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.True(t, saved.Completed)
	assert.InDelta(t, 95.0, saved.WatchPercentage, 1e-9)

	// Resuming reads back the final position.
	w = doGet(router, "/api/get-progress/chapter_1/intro.mp4")
	require.Equal(t, http.StatusOK, w.Code)
	var progress api.ProgressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &progress))
	assert.InDelta(t, 95.0, progress.CurrentTime, 1e-9)
	assert.InDelta(t, 1.5, progress.PlaybackSpeed, 1e-9)

	// The sidebar marks completed videos from the full listing.
	w = doGet(router, "/api/get-all-progress")
	require.Equal(t, http.StatusOK, w.Code)
	var all map[string]api.ProgressWithDuration
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	require.Len(t, all, 1)
	assert.True(t, all["chapter_1/intro.mp4"].Completed)

	// Speed changes persist through the settings endpoint.
	w = doPost(router, "/api/settings", `{"current_playback_speed": 1.5}`)
	require.Equal(t, http.StatusOK, w.Code)

	// The dashboard fetches analytics for the progress bars.
	w = doGet(router, "/api/analytics")
	require.Equal(t, http.StatusOK, w.Code)
	var report analytics.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	assert.Equal(t, 1, report.TotalVideosWatched)
	assert.Equal(t, 1, report.CompletedVideos)
	assert.Equal(t, int64(95), report.TotalWatchTimeSeconds)
	require.Len(t, report.ChapterStats, 2)
	assert.Equal(t, 2, report.ChapterStats["chapter_1"].TotalVideos)
	assert.InDelta(t, 47.5, report.ChapterStats["chapter_1"].AvgProgress, 1e-9)
	assert.Equal(t, analytics.ChapterStats{TotalVideos: 1}, report.ChapterStats["chapter_2"])
}

// TestLibraryChanges exercises the analytics behavior when folders are
// renamed or removed after progress was recorded.
func TestLibraryChanges(t *testing.T) {
	database, repos, cleanup := setupTestDB(t)
	defer cleanup()

	root := setupContentRoot(t, map[string][]string{
		"chapter_1": {"a.mp4"},
	})
	router := setupAPIRouter(database, repos, course.NewScanner(root))

	// Record progress under a chapter name that no longer matches a folder.
	w := doPost(router, "/api/save-progress", `{
		"video_path": "old_chapter/gone.mp4",
		"chapter": "old_chapter",
		"video_name": "gone.mp4",
		"current_time": 100,
		"duration": 100
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(router, "/api/analytics")
	require.Equal(t, http.StatusOK, w.Code)
	var report analytics.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	// Orphaned rows stay in the global totals but get no chapter entry.
	assert.Equal(t, 1, report.TotalVideosWatched)
	assert.Equal(t, 1, report.CompletedVideos)
	assert.NotContains(t, report.ChapterStats, "old_chapter")
	assert.Contains(t, report.ChapterStats, "chapter_1")
}
