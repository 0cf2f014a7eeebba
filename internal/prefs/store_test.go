package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pralaynaskar/ToolView-sub001/internal/notify"
)

func noEnv(string) (string, bool) { return "", false }

func openTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	opts = append([]Option{WithEnv(noEnv)}, opts...)
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, path := openTestStore(t)

	if diff := cmp.Diff(Default(), s.Get()); diff != "" {
		t.Errorf("preferences (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should not be created until a change, stat err = %v", err)
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestOpenExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	content := "theme = 'dark'\ncurrency = 'INR'\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path, WithEnv(noEnv))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	want := Default()
	want.Theme = ThemeDark
	want.Currency = "INR"
	if diff := cmp.Diff(want, s.Get()); diff != "" {
		t.Errorf("preferences (-want +got):\n%s", diff)
	}
}

func TestOpenInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not toml", "theme = = dark"},
		{"bad value", "theme = 'purple'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := Open(path, WithEnv(noEnv))
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("Open() error = %v, want *LoadError", err)
			}
			if loadErr.Path != path {
				t.Errorf("LoadError.Path = %q, want %q", loadErr.Path, path)
			}
		})
	}
}

func TestSetPersistsAndNotifies(t *testing.T) {
	s, path := openTestStore(t)

	var changes []notify.Change
	s.Subscribe(func(c notify.Change) { changes = append(changes, c) })

	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatalf("SetTheme() failed: %v", err)
	}
	if err := s.SetCurrency("EUR"); err != nil {
		t.Fatalf("SetCurrency() failed: %v", err)
	}
	if err := s.SetClockStyle(ClockAnalog); err != nil {
		t.Fatalf("SetClockStyle() failed: %v", err)
	}
	if err := s.SetTimeFormat(TimeFormat12h); err != nil {
		t.Fatalf("SetTimeFormat() failed: %v", err)
	}

	want := []notify.Change{
		{Key: KeyTheme, Type: notify.ChangeSet, OldValue: "system", NewValue: "dark", Source: SourceUser},
		{Key: KeyCurrency, Type: notify.ChangeSet, OldValue: "USD", NewValue: "EUR", Source: SourceUser},
		{Key: KeyClockStyle, Type: notify.ChangeSet, OldValue: "digital", NewValue: "analog", Source: SourceUser},
		{Key: KeyTimeFormat, Type: notify.ChangeSet, OldValue: "24h", NewValue: "12h", Source: SourceUser},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}

	reopened, err := Open(path, WithEnv(noEnv))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	wantPrefs := Preferences{Theme: ThemeDark, Currency: "EUR", ClockStyle: ClockAnalog, TimeFormat: TimeFormat12h}
	if diff := cmp.Diff(wantPrefs, reopened.Get()); diff != "" {
		t.Errorf("reloaded preferences (-want +got):\n%s", diff)
	}
}

func TestSetSameValueIsNoop(t *testing.T) {
	s, path := openTestStore(t)

	calls := 0
	s.Subscribe(func(notify.Change) { calls++ })

	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, time.Unix(0, 0), time.Unix(0, 0)); err != nil {
		t.Fatal(err)
	}

	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("observer calls = %d, want 1", calls)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(time.Unix(0, 0)) {
		t.Errorf("file rewritten on no-op set (size %d)", info.Size())
	}
}

func TestSetInvalid(t *testing.T) {
	s, path := openTestStore(t)

	if err := s.SetTheme("neon"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetTheme(neon) = %v, want ErrInvalidValue", err)
	}
	if err := s.Set("font", "mono"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Set(font) = %v, want ErrInvalidValue", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid set should not write the file")
	}
}

func TestSetAfterClose(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTheme(ThemeDark); !errors.Is(err, ErrClosed) {
		t.Errorf("SetTheme after Close = %v, want ErrClosed", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"TOOLVIEW_THEME":       "dark",
		"TOOLVIEW_TIME_FORMAT": "12h",
		"TOOLVIEW_CURRENCY":    "bogus",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	path := filepath.Join(t.TempDir(), "prefs.toml")
	s, err := Open(path, WithEnv(lookup))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := s.Get()
	if got.Theme != ThemeDark || got.TimeFormat != TimeFormat12h {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.Currency != "USD" {
		t.Errorf("invalid override applied: currency = %q", got.Currency)
	}
	if !s.Overridden(KeyTheme) || s.Overridden(KeyCurrency) {
		t.Errorf("Overridden theme=%v currency=%v", s.Overridden(KeyTheme), s.Overridden(KeyCurrency))
	}

	// Overrides are not written back.
	if err := s.SetCurrency("GBP"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "dark") {
		t.Errorf("environment override persisted:\n%s", data)
	}

	// An explicit set replaces the override.
	if err := s.SetTheme(ThemeLight); err != nil {
		t.Fatal(err)
	}
	if s.Overridden(KeyTheme) || s.Get().Theme != ThemeLight {
		t.Errorf("explicit set did not replace override: %+v", s.Get())
	}
}

func TestExplicitSetSurvivesReload(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "TOOLVIEW_THEME" {
			return "dark", true
		}
		return "", false
	}
	path := filepath.Join(t.TempDir(), "prefs.toml")
	s, err := Open(path, WithEnv(lookup))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.SetTheme(ThemeLight); err != nil {
		t.Fatal(err)
	}
	// Another process changes only the currency.
	if err := os.WriteFile(path, []byte("theme = 'light'\ncurrency = 'GBP'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	got := s.Get()
	if got.Theme != ThemeLight {
		t.Errorf("after reload theme = %q, want light", got.Theme)
	}
	if got.Currency != "GBP" {
		t.Errorf("after reload currency = %q, want GBP", got.Currency)
	}
	if s.Overridden(KeyTheme) {
		t.Error("theme still reported as overridden")
	}
}

func TestReloadRacesWithSet(t *testing.T) {
	s, path := openTestStore(t)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c := Currency("EUR")
			if i%2 == 1 {
				c = "GBP"
			}
			if err := s.SetCurrency(c); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if err := s.Reload(); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	onDisk, err := readFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s.mu.RLock()
	saved := s.saved
	s.mu.RUnlock()
	if diff := cmp.Diff(onDisk, saved); diff != "" {
		t.Errorf("store out of sync with file (-disk +store):\n%s", diff)
	}
	if s.Get().Currency != "GBP" {
		t.Errorf("Currency = %q, want the last value set", s.Get().Currency)
	}
}

func TestReload(t *testing.T) {
	s, path := openTestStore(t)

	var changes []notify.Change
	s.Subscribe(func(c notify.Change) { changes = append(changes, c) })

	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() of missing file failed: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("unchanged reload notified: %v", changes)
	}

	if err := os.WriteFile(path, []byte("theme = 'light'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}

	if s.Get().Theme != ThemeLight {
		t.Errorf("Theme = %q, want light", s.Get().Theme)
	}
	if len(changes) != 1 || changes[0].Type != notify.ChangeReload || changes[0].Source != SourceFile {
		t.Errorf("changes = %+v, want one reload from file", changes)
	}
}

func TestWatchReloadsExternalWrites(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.SetCurrency("JPY"); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 1)
	s.Subscribe(func(c notify.Change) {
		if c.Type == notify.ChangeReload {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Watch(ctx); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	if err := s.Watch(ctx); err != nil {
		t.Fatalf("second Watch() failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("currency = 'CAD'\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for s.Get().Currency != "CAD" {
		select {
		case <-reloaded:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for reload, Currency = %q", s.Get().Currency)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Watch(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch after Close = %v, want ErrClosed", err)
	}
}

func TestCloseLeavesSharedNotifierOpen(t *testing.T) {
	n := notify.New()
	defer n.Close()

	var changes []notify.Change
	n.Subscribe(func(c notify.Change) { changes = append(changes, c) })

	s, _ := openTestStore(t, WithNotifier(n))
	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	n.NotifySet("other", "a", "b", "test")
	if len(changes) != 2 {
		t.Errorf("shared notifier delivered %d changes, want 2", len(changes))
	}
}
