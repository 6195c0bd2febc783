package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shorty/internal/config"
	"shorty/internal/input"
	"shorty/internal/oplog"
	"shorty/internal/relay"
	"shorty/internal/shortcut"
	"shorty/internal/singleinstance"
	"shorty/internal/workerutil"
)

const shutdownWaitTimeout = 2 * time.Second

// Run starts the interceptor and blocks until ctx is cancelled or the hook
// fails. Every returned error is a *StartupError.
func (a *App) Run(ctx context.Context) error {
	setConsoleUTF8()
	oplog.Setup(a.logOut, &a.level, a.notifier.Enqueue)

	table, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.printSummary(table)

	lock, err := tryLockFn(singleinstance.DefaultLockName())
	if err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			return &StartupError{Stage: "single instance", Err: err}
		}
		// The lock guards against double launches; run without it rather
		// than not at all.
		slog.Warn("[WARN-SINGLE] instance lock unavailable, continuing without it", "error", err)
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			slog.Warn("[WARN-SINGLE] instance lock release failed", "error", releaseErr)
		}
	}()

	a.handler = input.NewHandler(table, shortcut.NewDispatcher(newLauncherFn()), input.DefaultFamilies())
	a.relay = relay.New(a.handler)
	defer a.relay.Close()

	bgCtx, cancelBG := context.WithCancel(ctx)
	defer func() {
		cancelBG()
		if !waitWithTimeout(a.bgWG.Wait, shutdownWaitTimeout) {
			slog.Warn("[app] timed out waiting for background workers during shutdown")
		}
	}()
	a.startBackgroundWorkers(bgCtx)

	slog.Info("[app] shorty started", "version", version, "config", a.configPath, "shortcuts", table.Len())
	if err := runHookFn(ctx, a.relay.Handle); err != nil {
		return &StartupError{Stage: "keyboard hook", Err: err}
	}
	slog.Info("[app] shutting down", "workerRestarts", a.workerRestarts.Load())
	return nil
}

func (a *App) startBackgroundWorkers(ctx context.Context) {
	workerutil.RunWithPanicRecovery(ctx, "notifier", &a.bgWG, a.notifier.Run, a.workerRecoveryOptions(
		"[app] notifier gave up, desktop notifications disabled"))

	if !a.watchEnabled() {
		return
	}
	watcher := config.NewWatcher(a.configPath, config.DefaultDebounce, a.applyReload)
	workerutil.RunWithPanicRecovery(ctx, "config-watcher", &a.bgWG, func(ctx context.Context) {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("[app] config watcher stopped, live reload disabled", "error", err)
		}
	}, a.workerRecoveryOptions("[app] config watcher gave up, live reload disabled"))
}

// workerRecoveryOptions counts every recovered panic and logs fatalMsg once
// the worker has exhausted its restarts.
func (a *App) workerRecoveryOptions(fatalMsg string) workerutil.RecoveryOptions {
	return workerutil.RecoveryOptions{
		OnPanic: func(worker string, attempt int) {
			restarts := a.workerRestarts.Add(1)
			slog.Warn("[app] background worker restarting after panic", "worker", worker, "attempt", attempt, "restarts", restarts)
		},
		OnFatal: func(worker string, maxRetries int) {
			slog.Error(fatalMsg, "worker", worker, "maxRetries", maxRetries)
		},
	}
}

// waitWithTimeout reports whether waitFn returned within timeout. The waiting
// goroutine outlives a timeout; it is only used on shutdown.
func waitWithTimeout(waitFn func(), timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		waitFn()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
