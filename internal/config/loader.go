package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOOLVIEW_"

// FileSystem abstracts file reads so tests can use an in-memory tree.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader builds a Config from defaults, a TOML file and the environment.
type Loader struct {
	fs     FileSystem
	lookup func(string) (string, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the file system used to read the config file.
func WithFS(fsys FileSystem) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithEnv sets the environment lookup. Pass a func that always reports
// false to ignore the environment.
func WithEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookup = lookup
	}
}

// NewLoader creates a loader reading from the OS.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:     OSFS{},
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the config at path on top of Default, applies environment
// overrides and validates the result. A missing file is not an error.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := l.loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: path, Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}

	cfg.Log.File = ExpandHome(cfg.Log.File)
	cfg.Prefs.Path = ExpandHome(cfg.Prefs.Path)
	cfg.Scripts.Dir = ExpandHome(cfg.Scripts.Dir)
	return nil
}

// EnvVar returns the environment variable that overrides key,
// e.g. "history.max_entries" becomes TOOLVIEW_HISTORY_MAX_ENTRIES.
func EnvVar(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// applyEnv overrides settings from TOOLVIEW_* variables. Empty values are
// treated as set.
func (l *Loader) applyEnv(cfg *Config) error {
	keys := append([]string(nil), Keys...)
	sort.Strings(keys)
	for _, key := range keys {
		val, ok := l.lookup(EnvVar(key))
		if !ok {
			continue
		}
		if err := cfg.Set(key, val); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Source = "env"
			}
			return err
		}
	}
	return nil
}
