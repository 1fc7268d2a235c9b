package models

// Setting is a single user preference. Values are stored as strings
// regardless of logical type ("true", "2.0"); callers parse as needed.
type Setting struct {
	Key   string `json:"key" gorm:"type:text;primaryKey;column:setting_key"`
	Value string `json:"value" gorm:"type:text;not null;default:'';column:setting_value"`
}

// TableName overrides the GORM table name
func (Setting) TableName() string {
	return "user_settings"
}

// Well-known setting keys.
const (
	SettingMaxPlaybackSpeed     = "max_playback_speed"
	SettingAutoResume           = "auto_resume"
	SettingSaveLastChapter      = "save_last_chapter"
	SettingLastChapter          = "last_chapter"
	SettingTheme                = "theme"
	SettingCurrentPlaybackSpeed = "current_playback_speed"
)

// DefaultSettings returns the settings seeded at first initialization.
// Seeding uses insert-if-absent semantics, so values a user has already
// changed are never overwritten.
func DefaultSettings() []Setting {
	return []Setting{
		{Key: SettingMaxPlaybackSpeed, Value: "2.0"},
		{Key: SettingAutoResume, Value: "true"},
		{Key: SettingSaveLastChapter, Value: "true"},
		{Key: SettingLastChapter, Value: ""},
		{Key: SettingTheme, Value: "dark"},
		{Key: SettingCurrentPlaybackSpeed, Value: "1"},
	}
}
