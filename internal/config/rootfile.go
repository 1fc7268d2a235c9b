package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appDirName     = "lectern"
	rootFileName   = "config.json"
	desktopDBName  = "lectern.db"
	defaultDirName = "static"
)

// ErrInvalidContentRoot indicates a selected content folder that does not
// exist, is not a directory, or cannot be read.
var ErrInvalidContentRoot = errors.New("invalid content root")

// rootFile is the on-disk shape of the desktop configuration file.
type rootFile struct {
	ContentRoot string `json:"content_root"`
}

// AppConfigDir returns the per-user configuration directory for the
// application, creating it if needed. It follows the platform convention
// (APPDATA on Windows, ~/Library/Application Support on macOS, XDG config on
// Linux) and falls back to the executable's directory when no user config
// directory is available.
func AppConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		exe, exeErr := os.Executable()
		if exeErr != nil {
			return "", fmt.Errorf("no usable config directory: %w", err)
		}
		base = filepath.Dir(exe)
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// DesktopDatabasePath returns the SQLite database location used by the
// desktop shell (inside the per-user config directory).
func DesktopDatabasePath() (string, error) {
	dir, err := AppConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, desktopDBName), nil
}

// ContentRoot returns the persisted content root, or "" when none is
// configured or the persisted folder no longer exists.
func ContentRoot() (string, error) {
	dir, err := AppConfigDir()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, rootFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}

	var rf rootFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return "", fmt.Errorf("failed to parse config file: %w", err)
	}

	if rf.ContentRoot == "" || ValidateContentRoot(rf.ContentRoot) != nil {
		return "", nil
	}
	return rf.ContentRoot, nil
}

// SetContentRoot validates and persists the content root selection.
// Invalid paths are rejected without touching the config file.
func SetContentRoot(path string) error {
	if err := ValidateContentRoot(path); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContentRoot, err)
	}

	dir, err := AppConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rootFile{ContentRoot: abs}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, rootFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateContentRoot checks that path is an existing, readable directory.
func ValidateContentRoot(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidContentRoot)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContentRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory", ErrInvalidContentRoot)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContentRoot, err)
	}
	_ = f.Close()

	return nil
}

// EffectiveContentRoot resolves the content root to use: the explicit
// configuration value wins, then the persisted desktop selection, then a
// ./static directory next to the executable. Returns "" when nothing usable
// is found.
func EffectiveContentRoot(cfg *Config) string {
	if cfg != nil && cfg.Library.Root != "" {
		return cfg.Library.Root
	}

	if root, err := ContentRoot(); err == nil && root != "" {
		return root
	}

	if exe, err := os.Executable(); err == nil {
		fallback := filepath.Join(filepath.Dir(exe), defaultDirName)
		if ValidateContentRoot(fallback) == nil {
			return fallback
		}
	}

	return ""
}
