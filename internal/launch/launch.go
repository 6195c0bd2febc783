// Package launch opens applications with the platform opener command.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Error reports an application that could not be opened. ExitCode is -1 when
// the opener command did not start at all.
type Error struct {
	Path     string
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("open %q: opener exited with status %d", e.Path, e.ExitCode)
	}
	return fmt.Sprintf("open %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Opener launches applications by path. The zero value is ready to use.
type Opener struct{}

// NewOpener returns an Opener for the current platform.
func NewOpener() *Opener { return &Opener{} }

// test seams
var (
	commandContextFn = exec.CommandContext
	// openerStderr must stay an *os.File so exec does not copy through a pipe.
	openerStderr = os.Stderr
)

// Launch asks the OS to open path and waits only for the opener command to
// return, never for the application itself.
func (o *Opener) Launch(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return &Error{Path: path, ExitCode: -1, Err: errors.New("empty application path")}
	}

	name, args, direct := openerCommand(path)
	if direct {
		return start(path, name, args)
	}
	cmd := commandContextFn(ctx, name, args...)
	detach(cmd)
	// The opener's diagnostics go straight to shorty's stderr. A pipe would be
	// inherited by the application the opener starts, and Wait would block
	// until that application exits.
	cmd.Stdout = nil
	cmd.Stderr = openerStderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &Error{Path: path, ExitCode: exitErr.ExitCode(), Err: err}
	}
	return &Error{Path: path, ExitCode: -1, Err: err}
}

// start execs an application binary without waiting for it. The process is
// reaped in the background; its exit status is only logged.
func start(path, name string, args []string) error {
	cmd := exec.Command(name, args...)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return &Error{Path: path, ExitCode: -1, Err: err}
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Warn("[launch] application exited with error", "path", path, "pid", cmd.Process.Pid, "error", err)
		}
	}()
	return nil
}
