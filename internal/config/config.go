package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppName is used for the configuration directory.
const AppName = "toolview"

// Setting keys.
const (
	KeyLogLevel          = "log.level"
	KeyLogFile           = "log.file"
	KeyHistoryMaxEntries = "history.max_entries"
	KeyPrefsPath         = "prefs.path"
	KeyScriptsDir        = "scripts.dir"
)

// Keys lists every setting key.
var Keys = []string{KeyLogLevel, KeyLogFile, KeyHistoryMaxEntries, KeyPrefsPath, KeyScriptsDir}

// LogLevels lists the accepted values of log.level.
var LogLevels = []string{"debug", "info", "warn", "error", "disabled"}

// Config is the application configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
	Prefs   PrefsConfig   `toml:"prefs"`
	Scripts ScriptsConfig `toml:"scripts"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of LogLevels.
	Level string `toml:"level"`
	// File receives log output. Empty discards logs, since the terminal
	// belongs to the UI.
	File string `toml:"file"`
}

// HistoryConfig controls per-session undo history.
type HistoryConfig struct {
	// MaxEntries bounds the undo depth. Zero means unlimited.
	MaxEntries int `toml:"max_entries"`
}

// PrefsConfig locates the preferences file.
type PrefsConfig struct {
	Path string `toml:"path"`
}

// ScriptsConfig locates Lua script tools.
type ScriptsConfig struct {
	Dir string `toml:"dir"`
}

// Dir returns the user configuration directory for ToolView.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "." + AppName
	}
	return filepath.Join(base, AppName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Default returns the built-in configuration.
func Default() Config {
	dir := Dir()
	return Config{
		Log:     LogConfig{Level: "info"},
		History: HistoryConfig{MaxEntries: 0},
		Prefs:   PrefsConfig{Path: filepath.Join(dir, "prefs.toml")},
		Scripts: ScriptsConfig{Dir: filepath.Join(dir, "scripts")},
	}
}

// Get returns the value of key formatted as a string.
func (c Config) Get(key string) (string, error) {
	switch key {
	case KeyLogLevel:
		return c.Log.Level, nil
	case KeyLogFile:
		return c.Log.File, nil
	case KeyHistoryMaxEntries:
		return strconv.Itoa(c.History.MaxEntries), nil
	case KeyPrefsPath:
		return c.Prefs.Path, nil
	case KeyScriptsDir:
		return c.Scripts.Dir, nil
	}
	return "", fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// Set parses value and stores it under key.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyLogLevel:
		c.Log.Level = strings.ToLower(strings.TrimSpace(value))
	case KeyLogFile:
		c.Log.File = ExpandHome(value)
	case KeyHistoryMaxEntries:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return &ValidationError{Key: key, Value: value, Message: "not an integer"}
		}
		c.History.MaxEntries = n
	case KeyPrefsPath:
		c.Prefs.Path = ExpandHome(value)
	case KeyScriptsDir:
		c.Scripts.Dir = ExpandHome(value)
	default:
		return fmt.Errorf("%q: %w", key, ErrUnknownKey)
	}
	return nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if !ValidLevel(c.Log.Level) {
		return &ValidationError{
			Key:     KeyLogLevel,
			Value:   c.Log.Level,
			Message: "must be one of " + strings.Join(LogLevels, ", "),
		}
	}
	if c.History.MaxEntries < 0 {
		return &ValidationError{Key: KeyHistoryMaxEntries, Value: c.History.MaxEntries, Message: "must not be negative"}
	}
	if c.Prefs.Path == "" {
		return &ValidationError{Key: KeyPrefsPath, Value: c.Prefs.Path, Message: "must not be empty"}
	}
	return nil
}

// ValidLevel reports whether level is one of LogLevels.
func ValidLevel(level string) bool {
	for _, l := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading ~ with the user's home directory and
// expands environment variables.
func ExpandHome(path string) string {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
