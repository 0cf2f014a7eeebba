package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/pralaynaskar/ToolView-sub001/internal/notify"
)

// EnvPrefix is prepended to upper-cased keys to form override variables,
// e.g. TOOLVIEW_THEME or TOOLVIEW_TIME_FORMAT.
const EnvPrefix = "TOOLVIEW_"

// Change sources.
const (
	SourceUser = "user"
	SourceFile = "file"
)

// Store holds the current preferences and persists every change.
type Store struct {
	mu sync.RWMutex

	path string

	// saved mirrors the file; current is saved plus environment overrides.
	saved      Preferences
	current    Preferences
	overridden map[string]bool
	// userSet holds keys set through Set; the environment no longer
	// overrides them.
	userSet map[string]bool

	notifier     *notify.Notifier
	ownsNotifier bool
	logger       zerolog.Logger
	env      func(string) (string, bool)

	watching bool
	done     chan struct{}
	wg       sync.WaitGroup
	closed   bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithNotifier sets the notifier used to broadcast changes.
// The store does not close a notifier it did not create.
func WithNotifier(n *notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithEnv replaces os.LookupEnv for environment overrides.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(s *Store) {
		s.env = lookup
	}
}

// Open loads preferences from path. A missing file yields defaults and is
// created on the first change.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:       path,
		overridden: make(map[string]bool),
		userSet:    make(map[string]bool),
		logger:     zerolog.Nop(),
		env:        os.LookupEnv,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.New()
		s.ownsNotifier = true
	}

	saved, err := readFile(path)
	if err != nil {
		if s.ownsNotifier {
			s.notifier.Close()
		}
		return nil, err
	}
	s.saved = saved
	s.current = s.applyEnv(saved)

	s.logger.Debug().
		Str("path", path).
		Str("theme", string(s.current.Theme)).
		Str("currency", string(s.current.Currency)).
		Msg("preferences loaded")

	return s, nil
}

// Path returns the preferences file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current preferences.
func (s *Store) Get() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers an observer for every preference change.
func (s *Store) Subscribe(fn notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(fn)
}

// SetTheme changes the theme.
func (s *Store) SetTheme(t Theme) error {
	return s.Set(KeyTheme, string(t))
}

// SetCurrency changes the display currency.
func (s *Store) SetCurrency(c Currency) error {
	return s.Set(KeyCurrency, string(c))
}

// SetClockStyle changes the clock style.
func (s *Store) SetClockStyle(c ClockStyle) error {
	return s.Set(KeyClockStyle, string(c))
}

// SetTimeFormat changes the time format.
func (s *Store) SetTimeFormat(f TimeFormat) error {
	return s.Set(KeyTimeFormat, string(f))
}

// Set validates and stores a preference by key, writes the file and
// broadcasts the change. Setting the current value again does nothing.
// An explicit set replaces any environment override for that key, also
// across later reloads.
func (s *Store) Set(key, value string) error {
	if err := validateField(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	old := s.current.Get(key)
	if old == value && s.saved.Get(key) == value {
		s.mu.Unlock()
		return nil
	}

	saved := s.saved.with(key, value)
	if saved != s.saved {
		if err := writeFile(s.path, saved); err != nil {
			s.mu.Unlock()
			return err
		}
		s.saved = saved
	}
	delete(s.overridden, key)
	s.userSet[key] = true
	s.current = s.current.with(key, value)
	s.mu.Unlock()

	s.logger.Info().Str("key", key).Str("old", old).Str("new", value).Msg("preference changed")

	if old != value {
		s.notifier.NotifySet(key, old, value, SourceUser)
	}
	return nil
}

// Overridden reports whether key is currently set from the environment.
func (s *Store) Overridden(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overridden[key]
}

// Reload rereads the file. Observers get a reload event only if the
// effective preferences changed.
func (s *Store) Reload() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	// Set writes the file under the same lock.
	saved, err := readFile(s.path)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if saved == s.saved {
		s.mu.Unlock()
		return nil
	}
	s.saved = saved
	before := s.current
	s.current = s.applyEnv(saved)
	changed := before != s.current
	s.mu.Unlock()

	if changed {
		s.logger.Info().Str("path", s.path).Msg("preferences reloaded")
		s.notifier.NotifyReload(SourceFile)
	}
	return nil
}

// Close stops the watcher, and the notifier if the store created it. It is
// safe to call Close multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	if s.ownsNotifier {
		s.notifier.Close()
	}
	return nil
}

// applyEnv overlays valid environment overrides on keys the user has not
// set. Invalid values are logged and ignored. Caller must hold s.mu or own
// s exclusively.
func (s *Store) applyEnv(p Preferences) Preferences {
	for _, key := range Keys {
		if s.userSet[key] {
			delete(s.overridden, key)
			continue
		}
		name := EnvPrefix + strings.ToUpper(key)
		value, ok := s.env(name)
		if !ok || value == "" {
			delete(s.overridden, key)
			continue
		}
		if err := validateField(key, value); err != nil {
			s.logger.Warn().Err(err).Str("env", name).Msg("ignoring preference override")
			delete(s.overridden, key)
			continue
		}
		p = p.with(key, value)
		s.overridden[key] = true
	}
	return p
}

// readFile loads and validates the preferences file. Missing fields take
// their defaults; a missing file yields Default.
func readFile(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Preferences{}, &LoadError{Path: path, Err: err}
	}

	var p Preferences
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preferences{}, &LoadError{Path: path, Err: err}
	}
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return Preferences{}, &LoadError{Path: path, Err: err}
	}
	return p, nil
}

// writeFile saves p atomically through a temporary file in the same
// directory.
func writeFile(path string, p Preferences) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
