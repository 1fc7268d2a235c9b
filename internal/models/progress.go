// Package models defines the persisted entities for watch progress and user settings.
package models

import (
	"time"
)

// TimestampLayout is the wire format for last_watched timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// completionThreshold is the watch percentage at which a video counts as completed.
const completionThreshold = 90.0

// VideoProgress represents the watch state of a single video, keyed by its
// path relative to the content root. Saves replace the row wholesale
// (last-writer-wins); there is no partial merge.
type VideoProgress struct {
	VideoPath       string    `json:"video_path" gorm:"type:text;primaryKey;column:video_path"`
	Chapter         string    `json:"chapter" gorm:"type:text;not null;column:chapter"`
	VideoName       string    `json:"video_name" gorm:"type:text;not null;column:video_name"`
	CurrentTime     float64   `json:"current_time" gorm:"type:real;not null;default:0;column:current_time"`
	Duration        float64   `json:"duration" gorm:"type:real;not null;default:0;column:duration"`
	PlaybackSpeed   float64   `json:"playback_speed" gorm:"type:real;not null;default:1.0;column:playback_speed"`
	WatchPercentage float64   `json:"watch_percentage" gorm:"type:real;not null;default:0;column:watch_percentage"`
	Completed       bool      `json:"completed" gorm:"type:integer;not null;default:0;column:completed"`
	LastWatched     time.Time `json:"last_watched" gorm:"type:datetime;column:last_watched"`
}

// TableName overrides the GORM table name
func (VideoProgress) TableName() string {
	return "video_progress"
}

// NewVideoProgress builds a progress row from a save request, deriving the
// watch percentage and completion flag and stamping the current time.
// The percentage is deliberately uncapped: current_time beyond duration
// reports more than 100%.
func NewVideoProgress(videoPath, chapter, videoName string, currentTime, duration, playbackSpeed float64) *VideoProgress {
	return &VideoProgress{
		VideoPath:       videoPath,
		Chapter:         chapter,
		VideoName:       videoName,
		CurrentTime:     currentTime,
		Duration:        duration,
		PlaybackSpeed:   playbackSpeed,
		WatchPercentage: WatchPercentage(currentTime, duration),
		Completed:       WatchPercentage(currentTime, duration) >= completionThreshold,
		LastWatched:     time.Now().UTC(),
	}
}

// WatchPercentage computes current_time/duration*100, or 0 when the duration
// is unknown.
func WatchPercentage(currentTime, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return currentTime / duration * 100
}

// WatchTimeSeconds returns the effective seconds watched
// (duration * percentage / 100), or 0 when the duration is unknown.
func (p *VideoProgress) WatchTimeSeconds() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return p.Duration * p.WatchPercentage / 100
}

// LastWatchedString renders the timestamp in the wire format, or "" when the
// video has never been watched.
func (p *VideoProgress) LastWatchedString() string {
	if p.LastWatched.IsZero() {
		return ""
	}
	return p.LastWatched.UTC().Format(TimestampLayout)
}
