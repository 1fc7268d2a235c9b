package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/lectern/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository handles database operations for user settings,
// a key-value table of string preferences.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// EnsureDefaults seeds the default settings with insert-if-absent semantics.
// Re-running it never clobbers values the user has already modified.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context) error {
	defaults := models.DefaultSettings()
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults)
	if result.Error != nil {
		return fmt.Errorf("failed to seed default settings: %w", MapGormError(result.Error))
	}
	return nil
}

// GetAll returns the full key-to-value settings mapping.
func (r *SettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	result := r.db.WithContext(ctx).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list settings: %w", MapGormError(result.Error))
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}
	return settings, nil
}

// SetMany upserts each pair. Keys are independent; the surrounding
// transaction only batches the writes.
func (r *SettingsRepository) SetMany(ctx context.Context, pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}

	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		for key, value := range pairs {
			setting := models.Setting{Key: key, Value: value}
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				UpdateAll: true,
			}).Create(&setting)
			if result.Error != nil {
				return MapGormError(result.Error)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// Set upserts a single setting.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}
