// Package input implements the modifier-tracking state machine that decides,
// for every intercepted key event, whether a shortcut consumes it.
//
// None of the types here are safe for concurrent use. They are owned by the
// relay worker goroutine and only ever touched from it.
package input

import "shorty/internal/keys"

// KeyMonitor tracks whether one key identity is currently held.
type KeyMonitor struct {
	key     keys.Key
	pressed bool
}

// NewKeyMonitor creates a released monitor for key.
func NewKeyMonitor(key keys.Key) *KeyMonitor {
	return &KeyMonitor{key: key}
}

// Process updates the pressed state from a matching press or release.
// Events for other keys are ignored.
func (m *KeyMonitor) Process(ev keys.Event) {
	switch {
	case ev.IsPress(m.key):
		m.pressed = true
	case ev.IsRelease(m.key):
		m.pressed = false
	}
}

// IsPressed reports the state set by the last matching event.
func (m *KeyMonitor) IsPressed() bool { return m.pressed }

// Key returns the tracked identity.
func (m *KeyMonitor) Key() keys.Key { return m.key }
