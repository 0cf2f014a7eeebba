package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pralaynaskar/ToolView-sub001/internal/config"
	"github.com/pralaynaskar/ToolView-sub001/internal/notify"
	"github.com/pralaynaskar/ToolView-sub001/internal/prefs"
	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
	"github.com/pralaynaskar/ToolView-sub001/internal/ui"
)

func noEnv(string) (string, bool) { return "", false }

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		ConfigPath: filepath.Join(dir, "config.toml"),
		PrefsPath:  filepath.Join(dir, "prefs.toml"),
		ScriptsDir: filepath.Join(dir, "scripts"),
		Env:        noEnv,
	}
}

func newApp(t *testing.T, opts Options) *Application {
	t.Helper()
	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewDefaults(t *testing.T) {
	opts := testOptions(t)
	app := newApp(t, opts)

	if got, want := app.Registry().Len(), len(tool.All()); got != want {
		t.Errorf("Registry().Len() = %d, want %d", got, want)
	}
	cfg := app.Config()
	if cfg.Prefs.Path != opts.PrefsPath || cfg.Scripts.Dir != opts.ScriptsDir {
		t.Errorf("Config() = %+v", cfg)
	}
	if cfg.History.MaxEntries != 0 {
		t.Errorf("History.MaxEntries = %d, want unlimited", cfg.History.MaxEntries)
	}
	if len(app.Scripts()) != 0 {
		t.Errorf("loaded %d scripts from a missing dir", len(app.Scripts()))
	}
}

func TestOptionsOverrideConfig(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.ConfigPath, "[log]\nlevel = \"debug\"\n[history]\nmax_entries = 5\n")
	opts.LogLevel = "warn"
	opts.MaxHistory = 3

	cfg := newApp(t, opts).Config()
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.History.MaxEntries != 3 {
		t.Errorf("History.MaxEntries = %d, want 3", cfg.History.MaxEntries)
	}
}

func TestEnvOverridesConfig(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, opts.ConfigPath, "[history]\nmax_entries = 5\n")
	opts.Env = func(key string) (string, bool) {
		switch key {
		case config.EnvVar(config.KeyHistoryMaxEntries):
			return "9", true
		case "TOOLVIEW_THEME":
			return "dark", true
		}
		return "", false
	}

	app := newApp(t, opts)
	if got := app.Config().History.MaxEntries; got != 9 {
		t.Errorf("History.MaxEntries = %d, want 9", got)
	}
	if got := app.Prefs().Get().Theme; got != "dark" {
		t.Errorf("theme = %s, want dark from env", got)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, opts *Options)
		component string
	}{
		{
			name: "bad config",
			setup: func(t *testing.T, opts *Options) {
				writeFile(t, opts.ConfigPath, "[log\n")
			},
			component: "config",
		},
		{
			name: "bad log level",
			setup: func(t *testing.T, opts *Options) {
				opts.LogLevel = "loud"
			},
			component: "config",
		},
		{
			name: "bad prefs",
			setup: func(t *testing.T, opts *Options) {
				writeFile(t, opts.PrefsPath, "theme = \"neon\"\n")
			},
			component: "prefs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.setup(t, &opts)

			_, err := New(opts)
			var ie *InitError
			if !errors.As(err, &ie) {
				t.Fatalf("New() error = %v, want *InitError", err)
			}
			if ie.Component != tt.component {
				t.Errorf("InitError.Component = %q, want %q", ie.Component, tt.component)
			}
		})
	}
}

func TestApply(t *testing.T) {
	app := newApp(t, testOptions(t))

	got, err := app.Apply("upper-case", "hello")
	if err != nil || got != "HELLO" {
		t.Errorf("Apply(upper-case) = %q, %v", got, err)
	}

	_, err = app.Apply("nope", "x")
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Target != "nope" {
		t.Errorf("Apply(unknown) error = %v, want OperationError", err)
	}
	if !errors.Is(err, tool.ErrNotFound) {
		t.Errorf("Apply(unknown) error = %v, want ErrNotFound", err)
	}

	if app.Sessions().Len() != 0 {
		t.Errorf("Apply left %d sessions open", app.Sessions().Len())
	}
}

func TestScriptsAreRegistered(t *testing.T) {
	opts := testOptions(t)
	writeFile(t, filepath.Join(opts.ScriptsDir, "shout.lua"),
		`name = "Shout" function transform(t) return t:upper() .. "!" end`)
	writeFile(t, filepath.Join(opts.ScriptsDir, "broken.lua"), `x = `)

	app := newApp(t, opts)
	if len(app.Scripts()) != 1 {
		t.Fatalf("loaded %d scripts, want 1", len(app.Scripts()))
	}
	got, err := app.Apply("shout", "hey")
	if err != nil || got != "HEY!" {
		t.Errorf("Apply(shout) = %q, %v", got, err)
	}
}

func TestLogFile(t *testing.T) {
	opts := testOptions(t)
	opts.LogFile = filepath.Join(t.TempDir(), "logs", "toolview.log")
	opts.LogLevel = "debug"

	app, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	app.Shutdown()

	data, err := os.ReadFile(opts.LogFile)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	for _, want := range []string{"application started", "shutdown complete", `"app":"toolview"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q:\n%s", want, data)
		}
	}
}

func TestPrefsChangesDeliveredAsync(t *testing.T) {
	app := newApp(t, testOptions(t))

	release := make(chan struct{})
	got := make(chan notify.Change, 1)
	app.Prefs().Subscribe(func(c notify.Change) {
		<-release
		got <- c
	})

	set := make(chan error, 1)
	go func() { set <- app.Prefs().SetTheme(prefs.ThemeDark) }()

	select {
	case err := <-set:
		if err != nil {
			t.Fatalf("SetTheme() failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("SetTheme() waited on a blocked observer")
	}

	close(release)
	select {
	case c := <-got:
		if c.Key != prefs.KeyTheme || c.NewValue != "dark" {
			t.Errorf("change = %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change was never delivered")
	}
}

func TestShutdownIdempotent(t *testing.T) {
	app, err := New(testOptions(t))
	if err != nil {
		t.Fatal(err)
	}
	app.Shutdown()
	app.Shutdown()

	if _, err := app.Apply("upper-case", "x"); !errors.Is(err, ErrShutdown) {
		t.Errorf("Apply after Shutdown error = %v", err)
	}
	if err := app.Run(context.Background(), newQueueScreen(), ""); !errors.Is(err, ErrShutdown) {
		t.Errorf("Run after Shutdown error = %v", err)
	}
}

// queueScreen is a headless ui.Screen fed from a channel.
type queueScreen struct {
	events chan ui.Event
}

func newQueueScreen(evs ...ui.Event) *queueScreen {
	s := &queueScreen{events: make(chan ui.Event, 64)}
	for _, ev := range evs {
		s.events <- ev
	}
	return s
}

func (s *queueScreen) Init() error { return nil }

func (s *queueScreen) Fini() {}

func (s *queueScreen) Size() (int, int) { return 80, 24 }

func (s *queueScreen) SetContent(int, int, rune, []rune, tcell.Style) {}

func (s *queueScreen) Clear() {}

func (s *queueScreen) Show() {}

func (s *queueScreen) ShowCursor(int, int) {}

func (s *queueScreen) HideCursor() {}

func (s *queueScreen) PollEvent() ui.Event { return <-s.events }

func (s *queueScreen) PostEvent(ev ui.Event) {
	select {
	case s.events <- ev:
	default:
	}
}

func TestRun(t *testing.T) {
	app := newApp(t, testOptions(t))

	screen := newQueueScreen(
		ui.RuneEvent('h'), ui.RuneEvent('i'),
		ui.KeyEvent(ui.KeyEnter),
		ui.KeyEvent(ui.KeyEscape),
	)
	if err := app.Run(context.Background(), screen, "upper-case"); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if app.Sessions().Len() != 0 {
		t.Errorf("%d sessions left after Run", app.Sessions().Len())
	}

	if err := app.Run(context.Background(), newQueueScreen(), "nope"); !errors.Is(err, tool.ErrNotFound) {
		t.Errorf("Run(unknown tool) error = %v", err)
	}
}

func TestShutdownStopsRun(t *testing.T) {
	opts := testOptions(t)
	opts.WatchPrefs = true
	app, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background(), newQueueScreen(), "") }()

	deadline := time.Now().Add(5 * time.Second)
	for !app.isRunning() {
		if time.Now().After(deadline) {
			t.Fatal("Run never started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := app.Run(context.Background(), newQueueScreen(), ""); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run error = %v, want ErrAlreadyRunning", err)
	}

	app.Shutdown()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after Shutdown")
	}
}

func TestNewLogger(t *testing.T) {
	if _, _, err := NewLogger("loud", ""); err == nil {
		t.Error("NewLogger(loud) should fail")
	}
	logger, closer, err := NewLogger("info", "")
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	logger.Info().Msg("discarded")
}
