package app

import (
	"github.com/pralaynaskar/ToolView-sub001/internal/config"
	"github.com/pralaynaskar/ToolView-sub001/internal/notify"
	"github.com/pralaynaskar/ToolView-sub001/internal/prefs"
	"github.com/pralaynaskar/ToolView-sub001/internal/script"
	"github.com/pralaynaskar/ToolView-sub001/internal/session"
	"github.com/pralaynaskar/ToolView-sub001/internal/texttool"
	"github.com/pralaynaskar/ToolView-sub001/internal/tool"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogger,
		b.initPrefs,
		b.initRegistry,
		b.initScripts,
		b.initSessions,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}

	b.app.logger.Info().
		Int("tools", b.app.registry.Len()).
		Int("scripts", len(b.app.scripts)).
		Int("max_history", b.app.config.History.MaxEntries).
		Msg("application started")
	return nil
}

// initConfig loads the config file and environment, then applies options.
func (b *bootstrapper) initConfig() error {
	path := b.opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.NewLoader(config.WithEnv(b.opts.Env)).Load(path)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	overrides := map[string]string{
		config.KeyLogLevel:   b.opts.LogLevel,
		config.KeyLogFile:    b.opts.LogFile,
		config.KeyPrefsPath:  b.opts.PrefsPath,
		config.KeyScriptsDir: b.opts.ScriptsDir,
	}
	for _, key := range config.Keys {
		if v := overrides[key]; v != "" {
			if err := cfg.Set(key, v); err != nil {
				return &InitError{Component: "config", Err: err}
			}
		}
	}
	if b.opts.MaxHistory > 0 {
		cfg.History.MaxEntries = b.opts.MaxHistory
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	b.app.config = cfg
	b.initOrder = append(b.initOrder, "config")
	return nil
}

func (b *bootstrapper) initLogger() error {
	cfg := b.app.config.Log
	logger, closer, err := NewLogger(cfg.Level, cfg.File)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.logger = logger
	b.app.logCloser = closer
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

func (b *bootstrapper) initPrefs() error {
	notifier := notify.New(notify.WithAsync(prefsQueueSize))
	store, err := prefs.Open(b.app.config.Prefs.Path,
		prefs.WithLogger(b.app.logger.With().Str("component", "prefs").Logger()),
		prefs.WithEnv(b.opts.Env),
		prefs.WithNotifier(notifier),
	)
	if err != nil {
		notifier.Close()
		return &InitError{Component: "prefs", Err: err}
	}
	b.app.notifier = notifier
	b.app.prefs = store
	b.initOrder = append(b.initOrder, "prefs")
	return nil
}

func (b *bootstrapper) initRegistry() error {
	b.app.registry = tool.NewRegistry(texttool.Builtins())
	b.initOrder = append(b.initOrder, "registry")
	return nil
}

// initScripts loads Lua tools. Broken scripts are logged and skipped; they
// never stop startup.
func (b *bootstrapper) initScripts() error {
	logger := b.app.logger.With().Str("component", "script").Logger()
	scripts, err := script.LoadDir(b.app.config.Scripts.Dir, b.app.registry, logger)
	if err != nil {
		logger.Warn().Err(err).Str("dir", b.app.config.Scripts.Dir).Msg("some scripts failed to load")
	}
	b.app.scripts = scripts
	b.initOrder = append(b.initOrder, "scripts")
	return nil
}

func (b *bootstrapper) initSessions() error {
	b.app.sessions = session.NewManager(b.app.registry,
		session.WithMaxHistory(b.app.config.History.MaxEntries),
		session.WithLogger(b.app.logger),
	)
	b.initOrder = append(b.initOrder, "sessions")
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "sessions":
			b.app.sessions.CloseAll()
		case "scripts":
			for _, s := range b.app.scripts {
				s.Close()
			}
		case "prefs":
			_ = b.app.prefs.Close()
			b.app.notifier.Close()
		case "logger":
			_ = b.app.logCloser.Close()
		}
	}
}
