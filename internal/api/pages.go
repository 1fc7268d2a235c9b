package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/lectern/internal/course"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/logger"
	"github.com/stwalsh4118/lectern/internal/models"
)

// ChapterView is one chapter row rendered on the dashboard and player pages.
type ChapterView struct {
	Name   string
	Videos []string
	PDFs   []string
}

// PageHandler renders the HTML page views.
type PageHandler struct {
	scanner *course.Scanner
	repos   *db.Repositories
}

// NewPageHandler creates a new page handler instance
func NewPageHandler(scanner *course.Scanner, repos *db.Repositories) *PageHandler {
	return &PageHandler{scanner: scanner, repos: repos}
}

// Dashboard handles GET /
func (h *PageHandler) Dashboard(c *gin.Context) {
	chapters, err := h.scanner.Chapters()
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("root", h.scanner.Root()).
			Msg("Failed to scan content root")
		chapters = map[string]course.Content{}
	}

	c.HTML(http.StatusOK, "chapters.html", gin.H{
		"Chapters": sortedChapterViews(chapters),
	})
}

// Player handles GET /player/*chapter. Unknown chapters redirect to the
// dashboard instead of erroring.
func (h *PageHandler) Player(c *gin.Context) {
	chapter := strings.TrimPrefix(c.Param("chapter"), "/")

	content, err := h.scanner.Chapter(chapter)
	if err != nil {
		if !errors.Is(err, course.ErrChapterNotFound) {
			logger.Log.Error().
				Err(err).
				Str("chapter", chapter).
				Msg("Failed to read chapter")
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	// Remember the chapter for auto-resume. A failure here should not break
	// the page render.
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()
	if err := h.repos.Settings.Set(ctx, models.SettingLastChapter, chapter); err != nil {
		logger.Log.Error().
			Err(err).
			Str("chapter", chapter).
			Msg("Failed to save last chapter")
	}

	c.HTML(http.StatusOK, "player.html", gin.H{
		"Chapter": ChapterView{Name: chapter, Videos: content.Videos, PDFs: content.PDFs},
	})
}

func sortedChapterViews(chapters map[string]course.Content) []ChapterView {
	names := make([]string, 0, len(chapters))
	for name := range chapters {
		names = append(names, name)
	}
	sort.Strings(names)

	views := make([]ChapterView, 0, len(names))
	for _, name := range names {
		content := chapters[name]
		views = append(views, ChapterView{
			Name:   name,
			Videos: content.Videos,
			PDFs:   content.PDFs,
		})
	}
	return views
}

// SetupPageRoutes registers the HTML page routes on the root router.
func SetupPageRoutes(router *gin.Engine, scanner *course.Scanner, repos *db.Repositories) {
	handler := NewPageHandler(scanner, repos)

	router.GET("/", handler.Dashboard)
	router.GET("/player/*chapter", handler.Player)
}
