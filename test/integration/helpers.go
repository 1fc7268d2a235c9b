//go:build integration
// +build integration

package integration

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/lectern/internal/analytics"
	"github.com/stwalsh4118/lectern/internal/api"
	"github.com/stwalsh4118/lectern/internal/course"
	"github.com/stwalsh4118/lectern/internal/db"
)

// setupTestDB creates a migrated test database with default settings seeded.
func setupTestDB(t *testing.T) (*db.DB, *db.Repositories, func()) {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err, "Failed to get SQL DB")
	require.NoError(t, db.RunEmbeddedMigrations(sqlDB), "Failed to run migrations")

	repos := db.NewRepositories(database)

	cleanup := func() {
		_ = database.Close()
	}
	return database, repos, cleanup
}

// setupContentRoot builds a content library on disk from a chapter layout.
func setupContentRoot(t *testing.T, layout map[string][]string) string {
	t.Helper()

	root := t.TempDir()
	for chapter, files := range layout {
		dir := filepath.Join(root, chapter)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		for _, file := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, file), nil, 0o644))
		}
	}
	return root
}

// setupAPIRouter creates a Gin router with the full JSON API registered.
func setupAPIRouter(database *db.DB, repos *db.Repositories, scanner *course.Scanner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	apiGroup := router.Group("/api")
	api.SetupHealthRoutes(apiGroup, database)
	api.SetupProgressRoutes(apiGroup, repos)
	api.SetupSettingsRoutes(apiGroup, repos)
	api.SetupAnalyticsRoutes(apiGroup, analytics.NewService(repos, scanner))

	return router
}

func doGet(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func doPost(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}
