package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/lectern/internal/models"
	"gorm.io/gorm/clause"
)

// ProgressRepository handles database operations for video watch progress
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Save upserts a progress row. The row replaces any prior row for the same
// video_path wholesale; concurrent saves to the same key are last-writer-wins
// with no ordering protection.
func (r *ProgressRepository) Save(ctx context.Context, progress *models.VideoProgress) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_path"}},
			UpdateAll: true,
		}).
		Create(progress)
	if result.Error != nil {
		return fmt.Errorf("failed to save progress: %w", MapGormError(result.Error))
	}
	return nil
}

// Get retrieves the progress row for a video path, or ErrNotFound when the
// video has never been saved.
func (r *ProgressRepository) Get(ctx context.Context, videoPath string) (*models.VideoProgress, error) {
	var progress models.VideoProgress
	result := r.db.WithContext(ctx).Where("video_path = ?", videoPath).First(&progress)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &progress, nil
}

// All retrieves every progress row ever saved.
func (r *ProgressRepository) All(ctx context.Context) ([]models.VideoProgress, error) {
	var rows []models.VideoProgress
	result := r.db.WithContext(ctx).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list progress: %w", MapGormError(result.Error))
	}
	return rows, nil
}
