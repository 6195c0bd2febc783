package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"shorty/internal/config"
	"shorty/internal/hook"
	"shorty/internal/input"
	"shorty/internal/launch"
	"shorty/internal/notify"
	"shorty/internal/relay"
	"shorty/internal/shortcut"
	"shorty/internal/singleinstance"
)

// Test seams for the OS-facing pieces.
var (
	runHookFn     = hook.Run
	tryLockFn     = singleinstance.TryLock
	newLauncherFn = func() shortcut.Launcher { return launch.NewOpener() }
)

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	// LogLevel overrides log_level from the config when non-empty.
	LogLevel string
	// Watch enables live reload even when the config leaves it off.
	Watch    bool
	NoNotify bool
}

// StartupError is a failure that prevents the interceptor from running.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StartupError) Unwrap() error { return e.Err }

// App wires the config, the event worker and the OS hook together.
type App struct {
	opts   Options
	stdout io.Writer
	logOut io.Writer

	level    slog.LevelVar
	notifier *notify.Notifier

	configPath string
	cfg        config.Config

	// handler is owned by the relay worker once Run has started it; only
	// touch it through relay.Do.
	handler *input.Handler
	relay   *relay.Relay

	// bgWG tracks the notifier and config watcher workers.
	bgWG sync.WaitGroup
	// workerRestarts counts background worker panics that were recovered.
	workerRestarts atomic.Int64
}

// NewApp returns an App that prints the shortcut summary to stdout and logs
// to logOut.
func NewApp(opts Options, stdout, logOut io.Writer) *App {
	return &App{
		opts:     opts,
		stdout:   stdout,
		logOut:   logOut,
		notifier: notify.New(!opts.NoNotify, notify.DefaultQueueSize),
	}
}

// loadConfig resolves, loads and validates the config and builds its table.
func (a *App) loadConfig() (shortcut.Table, error) {
	a.configPath = config.ResolvePath(a.opts.ConfigPath)
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return shortcut.Table{}, &StartupError{Stage: "load config", Err: err}
	}
	table, err := shortcut.NewTable(cfg.ShortcutMap())
	if err != nil {
		return shortcut.Table{}, &StartupError{Stage: "load config", Err: err}
	}
	a.cfg = cfg
	a.applySettings(cfg)
	slog.Debug("[DEBUG-CONFIG] config loaded", "path", a.configPath, "shortcuts", table.Len())
	return table, nil
}

// applySettings applies the non-shortcut settings of cfg, respecting the
// command-line overrides.
func (a *App) applySettings(cfg config.Config) {
	level := cfg.Level()
	if a.opts.LogLevel != "" {
		if override, err := config.ParseLevel(a.opts.LogLevel); err == nil {
			level = override
		}
	}
	a.level.Set(level)
	a.notifier.SetEnabled(cfg.Notifications && !a.opts.NoNotify)
}

func (a *App) watchEnabled() bool {
	return a.opts.Watch || a.cfg.Watch
}

// printSummary writes the active mapping in the format shorty has always used.
func (a *App) printSummary(table shortcut.Table) {
	fmt.Fprintln(a.stdout, "Mapping the following shortcuts:")
	entries := table.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "  (none)")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(a.stdout, "  Num %d => %s\n", e.Digit, e.Path)
	}
}

// applyReload swaps in a reloaded config. It runs on the watcher goroutine and
// hands the new table to the event worker.
func (a *App) applyReload(cfg config.Config) {
	table, err := shortcut.NewTable(cfg.ShortcutMap())
	if err != nil {
		slog.Warn("[WARN-CONFIG] reloaded shortcuts rejected, keeping current shortcuts", "error", err)
		return
	}
	handler := a.handler
	if err := a.relay.Do(func() { handler.SetTable(table) }); err != nil {
		if errors.Is(err, relay.ErrWorkerStopped) {
			slog.Warn("[WARN-CONFIG] event worker stopped, reloaded shortcuts not applied")
			return
		}
		slog.Error("[app] failed to apply reloaded shortcuts", "error", err)
		return
	}
	a.applySettings(cfg)
	a.printSummary(table)
}

// Check validates the config and prints the mapping without hooking the
// keyboard.
func (a *App) Check() error {
	table, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.printSummary(table)
	fmt.Fprintf(a.stdout, "Config OK: %s\n", a.configPath)
	return nil
}
