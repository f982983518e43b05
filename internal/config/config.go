// Package config handles the XDG configuration directory, file paths, and
// backend selection.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "taskflow"

	// RemoteConfigFile is the remote provider configuration filename
	// (without extension; json and yaml are both accepted).
	RemoteConfigFile = "remote"

	// TokenFile is the stored remote session token filename.
	TokenFile = "token.json"

	// StoreFile is the local backend's database filename.
	StoreFile = "taskflow.db"

	// DebugLogFile is the rotating debug log filename.
	DebugLogFile = "debug.log"
)

// Config holds configuration paths, settings, and the remote provider
// identifiers used for backend selection.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Remote holds the remote provider identifiers, zero-valued when no
	// remote config file exists.
	Remote RemoteConfig

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config with the default or specified config directory and
// loads the remote provider configuration if present.
// If configDir is empty, uses XDG_CONFIG_HOME/taskflow or $HOME/.config/taskflow.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	remote, err := LoadRemoteConfig(dir)
	if err != nil {
		return nil, err
	}
	cfg.Remote = remote
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored remote session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// StorePath returns the path to the local backend's database file.
func (c *Config) StorePath() string {
	return filepath.Join(c.Dir, StoreFile)
}

// DebugLogPath returns the path to the rotating debug log.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.Dir, DebugLogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the remote session token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the remote session token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
