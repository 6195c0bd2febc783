// Package hook installs the OS-wide keyboard hook that feeds the relay.
//
// The hook calls the callback synchronously for every key transition on a
// thread it does not own; the callback must return its decision promptly.
package hook

import (
	"context"
	"errors"

	"shorty/internal/keys"
)

// ErrUnsupported is returned by Run on platforms without a hook backend.
var ErrUnsupported = errors.New("global keyboard interception is not supported on this platform")

// Callback decides the fate of one key event.
type Callback func(ev keys.Event) keys.Decision

// Run installs the global keyboard hook, calling cb for every key press and
// release until ctx is cancelled, then uninstalls it. An error returned before
// ctx is cancelled means the hook could not be registered.
func Run(ctx context.Context, cb Callback) error {
	if cb == nil {
		return errors.New("hook callback is required")
	}
	return run(ctx, cb)
}
