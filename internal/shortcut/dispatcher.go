package shortcut

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Launcher opens an application by path. Launch returns once the OS launch
// call has returned; it does not wait for the application to become ready.
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, path string) error

func (f LauncherFunc) Launch(ctx context.Context, path string) error { return f(ctx, path) }

var newLaunchIDFn = func() string { return uuid.NewString() }

// Dispatcher executes the action mapped to a shortcut digit.
type Dispatcher struct {
	launcher Launcher
}

// NewDispatcher creates a dispatcher that launches through l.
func NewDispatcher(l Launcher) *Dispatcher {
	if l == nil {
		panic("shortcut: nil launcher")
	}
	return &Dispatcher{launcher: l}
}

// Dispatch launches the application mapped to digit and reports whether the
// shortcut consumed the key press. An unmapped digit is not consumed so the
// digit still types normally. A failed launch is logged and still counts as
// consumed.
func (d *Dispatcher) Dispatch(digit int, table Table) bool {
	path, ok := table.Lookup(digit)
	if !ok {
		slog.Debug("[shortcut] digit has no mapping, passing through", "digit", digit)
		return false
	}

	launchID := newLaunchIDFn()
	started := time.Now()
	err := d.launcher.Launch(context.Background(), path)
	elapsed := time.Since(started)
	if err != nil {
		attrs := []any{"digit", digit, "path", path, "launchID", launchID, "elapsed", elapsed, "error", err}
		if code, ok := exitCode(err); ok {
			attrs = append(attrs, "exitCode", code)
		}
		slog.Error("[shortcut] failed to open application", attrs...)
		return true
	}
	slog.Info("[shortcut] opened application",
		"digit", digit, "path", path, "launchID", launchID, "elapsed", elapsed)
	return true
}

type exitCoder interface {
	ExitCode() int
}

func exitCode(err error) (int, bool) {
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() >= 0 {
		return ec.ExitCode(), true
	}
	return 0, false
}
