package db

// Repositories provides access to all database repositories
type Repositories struct {
	Progress *ProgressRepository
	Settings *SettingsRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Progress: NewProgressRepository(db),
		Settings: NewSettingsRepository(db),
	}
}
