// Package app wires ToolView together: configuration, logging, user
// preferences, the tool registry with its Lua scripts, the session manager
// and the terminal UI.
package app

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pralaynaskar/ToolView-sub001/internal/config"
	"github.com/pralaynaskar/ToolView-sub001/internal/notify"
	"github.com/pralaynaskar/ToolView-sub001/internal/prefs"
	"github.com/pralaynaskar/ToolView-sub001/internal/script"
	"github.com/pralaynaskar/ToolView-sub001/internal/session"
	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
	"github.com/pralaynaskar/ToolView-sub001/internal/ui"
)

// shutdownTimeout bounds how long Shutdown waits for the UI to stop.
const shutdownTimeout = 5 * time.Second

// prefsQueueSize is the number of preference changes queued for observers.
const prefsQueueSize = 16

// Application owns every long-lived component.
type Application struct {
	opts Options

	config    config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	notifier  *notify.Notifier
	prefs     *prefs.Store
	registry  *tool.Registry
	scripts   []*script.Script
	sessions  *session.Manager

	mu        sync.Mutex
	cancelRun context.CancelFunc
	runWG     sync.WaitGroup
	running   bool
	closed    bool
	once      sync.Once
}

// Options configures the application. Non-empty fields override the
// config file and environment.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// PrefsPath is the preferences file.
	PrefsPath string

	// ScriptsDir holds Lua script tools.
	ScriptsDir string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFile receives logs; "-" means standard error.
	LogFile string

	// MaxHistory bounds undo depth per session when positive.
	MaxHistory int

	// WatchPrefs reloads preferences when the file changes on disk.
	WatchPrefs bool

	// Env replaces os.LookupEnv for configuration and preference overrides.
	Env func(string) (string, bool)
}

// New creates an Application and starts every component except the UI.
func New(opts Options) (*Application, error) {
	if opts.Env == nil {
		opts.Env = os.LookupEnv
	}
	app := &Application{
		opts:      opts,
		logger:    zerolog.Nop(),
		logCloser: nopCloser{},
	}

	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() config.Config {
	return app.config
}

// Logger returns the root logger.
func (app *Application) Logger() zerolog.Logger {
	return app.logger
}

// Prefs returns the preference store.
func (app *Application) Prefs() *prefs.Store {
	return app.prefs
}

// Registry returns the tool registry.
func (app *Application) Registry() *tool.Registry {
	return app.registry
}

// Sessions returns the session manager.
func (app *Application) Sessions() *session.Manager {
	return app.sessions
}

// Scripts returns the Lua tools that loaded successfully.
func (app *Application) Scripts() []*script.Script {
	return app.scripts
}

// Apply runs one tool over input without the UI. The session used is
// discarded afterwards.
func (app *Application) Apply(slug, input string) (string, error) {
	if app.isClosed() {
		return "", ErrShutdown
	}
	s, err := app.sessions.Open(slug)
	if err != nil {
		return "", &OperationError{Op: "apply", Target: slug, Err: err}
	}
	defer app.sessions.Close(s.ID())

	s.Input(input)
	if err := s.Apply(); err != nil {
		return "", &OperationError{Op: "apply", Target: slug, Err: err}
	}
	return s.Text(), nil
}

// Run shows the UI on screen until the user quits, ctx is cancelled or
// Shutdown is called. initialTool selects the first tool by slug; empty
// starts with the first tool in the catalog.
func (app *Application) Run(ctx context.Context, screen ui.Screen, initialTool string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := app.startRun(cancel); err != nil {
		return err
	}
	defer app.endRun()

	if app.opts.WatchPrefs {
		if err := app.prefs.Watch(ctx); err != nil {
			app.logger.Warn().Err(err).Msg("preferences will not reload from disk")
		}
	}

	ctrl := ui.NewController(screen, app.sessions, app.prefs, ui.WithLogger(app.logger))
	if initialTool != "" {
		if err := ctrl.Select(initialTool); err != nil {
			return &OperationError{Op: "select", Target: initialTool, Err: err}
		}
	}
	return ctrl.Run(ctx)
}

func (app *Application) startRun(cancel context.CancelFunc) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.closed {
		return ErrShutdown
	}
	if app.running {
		return ErrAlreadyRunning
	}
	app.running = true
	app.cancelRun = cancel
	app.runWG.Add(1)
	return nil
}

func (app *Application) endRun() {
	app.mu.Lock()
	app.running = false
	app.cancelRun = nil
	app.mu.Unlock()
	app.runWG.Done()
}

func (app *Application) isRunning() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.running
}

func (app *Application) isClosed() bool {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.closed
}

// Shutdown stops the UI and releases every component. Safe to call more
// than once and from any goroutine.
func (app *Application) Shutdown() {
	app.once.Do(func() {
		app.mu.Lock()
		app.closed = true
		cancel := app.cancelRun
		app.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		done := make(chan struct{})
		go func() {
			app.runWG.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			app.logger.Warn().Msg("timed out waiting for ui to stop")
		}

		app.sessions.CloseAll()
		for _, s := range app.scripts {
			s.Close()
		}
		if err := app.prefs.Close(); err != nil {
			app.logger.Warn().Err(err).Msg("closing preferences")
		}
		app.notifier.Close()
		app.logger.Info().Msg("shutdown complete")
		_ = app.logCloser.Close()
	})
}
