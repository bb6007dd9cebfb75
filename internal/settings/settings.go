// Package settings manages user preferences persisted to
// ~/.taskpilot/settings.yaml. Preferences survive restarts and the file
// can be watched for external edits.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Keys for well-known settings.
const (
	KeyRemoteURL   = "remote_url"
	KeyActorID     = "actor_id"
	KeyTheme       = "theme"
	KeyDarkMode    = "dark_mode"
	KeyDataDir     = "data_dir"
	KeyServerPort  = "server_port"
	KeyDashboard   = "dashboard_enabled"
	KeyLoadTimeout = "load_timeout_seconds"
)

// Store wraps a viper instance bound to the settings file.
type Store struct {
	v    *viper.Viper
	path string
}

// DefaultDir returns the taskpilot config directory, ~/.taskpilot.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".taskpilot"), nil
}

// Open loads settings from dir/settings.yaml, creating the file with
// defaults if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	v := viper.New()
	path := filepath.Join(dir, "settings.yaml")
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault(KeyRemoteURL, "http://localhost:8090")
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyDarkMode, false)
	v.SetDefault(KeyDataDir, filepath.Join(dir, "data"))
	v.SetDefault(KeyServerPort, 8090)
	v.SetDefault(KeyDashboard, false)
	v.SetDefault(KeyLoadTimeout, 8)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
		if err := v.WriteConfigAs(path); err != nil {
			return nil, fmt.Errorf("failed to write default settings: %w", err)
		}
	}

	return &Store{v: v, path: path}, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Set updates a key and persists the file.
func (s *Store) Set(key string, value any) error {
	s.v.Set(key, value)
	if err := s.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetString returns a string setting.
func (s *Store) GetString(key string) string {
	return s.v.GetString(key)
}

// GetBool returns a boolean setting.
func (s *Store) GetBool(key string) bool {
	return s.v.GetBool(key)
}

// GetInt returns an integer setting.
func (s *Store) GetInt(key string) int {
	return s.v.GetInt(key)
}

// RemoteURL returns the configured remote server base URL.
func (s *Store) RemoteURL() string {
	return s.v.GetString(KeyRemoteURL)
}

// ActorID returns the logged-in user's record id, or "" when logged out.
func (s *Store) ActorID() string {
	return s.v.GetString(KeyActorID)
}

// DataDir returns the directory for local snapshots and databases.
func (s *Store) DataDir() string {
	return s.v.GetString(KeyDataDir)
}

// Watch reloads the file on external changes and invokes fn after each
// reload. Call from long-running commands only.
func (s *Store) Watch(fn func()) {
	s.v.OnConfigChange(func(_ fsnotify.Event) {
		if fn != nil {
			fn()
		}
	})
	s.v.WatchConfig()
}
