package testutil

import (
	"context"
	"sync"
)

// RecordingLauncher records every launch request and returns Err for each.
type RecordingLauncher struct {
	mu    sync.Mutex
	paths []string
	Err   error
}

// Launch records path.
func (l *RecordingLauncher) Launch(_ context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
	return l.Err
}

// Paths returns a copy of the recorded launch paths in request order.
func (l *RecordingLauncher) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}
