//go:build !windows && !linux

package hook

import "context"

func run(_ context.Context, _ Callback) error {
	return ErrUnsupported
}
