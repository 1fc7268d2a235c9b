// Package analytics aggregates watch-progress rows into per-chapter and
// global statistics.
package analytics

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/lectern/internal/course"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/logger"
)

// ChapterStats summarizes one chapter that currently exists on disk.
type ChapterStats struct {
	TotalVideos     int     `json:"total_videos"`
	CompletedVideos int     `json:"completed_videos"`
	AvgProgress     float64 `json:"avg_progress"`
	WatchTime       float64 `json:"watch_time"`
}

// Report is the full analytics payload.
type Report struct {
	TotalVideosWatched    int                     `json:"total_videos_watched"`
	CompletedVideos       int                     `json:"completed_videos"`
	TotalWatchTimeSeconds int64                   `json:"total_watch_time_seconds"`
	ChapterStats          map[string]ChapterStats `json:"chapter_stats"`
}

// Service joins stored progress rows with a fresh filesystem scan.
type Service struct {
	repos   *db.Repositories
	scanner *course.Scanner
}

// NewService creates an analytics service.
func NewService(repos *db.Repositories, scanner *course.Scanner) *Service {
	return &Service{repos: repos, scanner: scanner}
}

// chapterAccumulator collects per-chapter sums over the watched rows.
type chapterAccumulator struct {
	watchedCount int
	completed    int
	progressSum  float64
	watchTime    float64
}

// Report computes the analytics payload.
//
// Global totals run over every stored row. Per-chapter stats are keyed by the
// chapters currently on disk, with the on-disk video count as the average's
// denominator so never-watched videos drag the average down as 0%. A chapter
// whose folder was deleted keeps contributing to the global totals but is
// dropped from chapter_stats; that asymmetry is long-standing behavior and is
// kept as-is.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	rows, err := s.repos.Progress.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress rows: %w", err)
	}

	report := &Report{
		TotalVideosWatched: len(rows),
		ChapterStats:       make(map[string]ChapterStats),
	}

	var totalWatchTime float64
	byChapter := make(map[string]*chapterAccumulator)
	for i := range rows {
		row := &rows[i]

		if row.Completed {
			report.CompletedVideos++
		}
		totalWatchTime += row.WatchTimeSeconds()

		acc := byChapter[row.Chapter]
		if acc == nil {
			acc = &chapterAccumulator{}
			byChapter[row.Chapter] = acc
		}
		acc.watchedCount++
		if row.Completed {
			acc.completed++
		}
		acc.progressSum += row.WatchPercentage
		acc.watchTime += row.WatchTimeSeconds()
	}
	report.TotalWatchTimeSeconds = int64(totalWatchTime)

	counts, err := s.scanner.VideoCounts()
	if err != nil {
		return nil, fmt.Errorf("failed to scan content root: %w", err)
	}

	for chapter, total := range counts {
		stats := ChapterStats{TotalVideos: total}
		if acc := byChapter[chapter]; acc != nil {
			stats.CompletedVideos = acc.completed
			stats.WatchTime = acc.watchTime
			if total > 0 {
				stats.AvgProgress = acc.progressSum / float64(total)
			}
		}
		report.ChapterStats[chapter] = stats
	}

	logger.Log.Debug().
		Int("videos_watched", report.TotalVideosWatched).
		Int("completed", report.CompletedVideos).
		Int("chapters_on_disk", len(counts)).
		Msg("Analytics computed")

	return report, nil
}
