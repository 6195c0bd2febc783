package input

import (
	"log/slog"

	"shorty/internal/keys"
	"shorty/internal/shortcut"
)

// Dispatcher executes the action for a recognized shortcut digit and reports
// whether the key press was consumed.
type Dispatcher interface {
	Dispatch(digit int, table shortcut.Table) bool
}

// Handler is the per-event state machine. It owns the modifier monitors and
// the active shortcut table.
type Handler struct {
	mods       *ModifierTracker
	dispatcher Dispatcher
	table      shortcut.Table
}

// NewHandler creates a handler with every modifier released.
func NewHandler(table shortcut.Table, dispatcher Dispatcher, families Families) *Handler {
	if dispatcher == nil {
		panic("input: nil dispatcher")
	}
	return &Handler{
		mods:       NewModifierTracker(families),
		dispatcher: dispatcher,
		table:      table,
	}
}

// Process updates modifier state from ev, then decides whether ev triggers a
// shortcut. Ctrl+Shift is required and Alt/Cmd must be released, so
// OS-native shortcuts built on those modifiers never collide.
func (h *Handler) Process(ev keys.Event) keys.Decision {
	h.mods.Process(ev)

	if ev.Kind != keys.Press {
		return keys.Pass(ev)
	}
	digit, ok := ev.Key.Digit()
	if !ok {
		return keys.Pass(ev)
	}
	state := h.mods.Snapshot()
	if !state.Shift || !state.Ctrl || state.Alt || state.Cmd {
		return keys.Pass(ev)
	}

	slog.Debug("[input] shortcut recognized", "digit", digit)
	if h.dispatcher.Dispatch(digit, h.table) {
		return keys.Suppress()
	}
	return keys.Pass(ev)
}

// SetTable replaces the active shortcut table.
func (h *Handler) SetTable(table shortcut.Table) {
	h.table = table
}

// Table returns the active shortcut table.
func (h *Handler) Table() shortcut.Table { return h.table }

// Modifiers returns the current modifier state.
func (h *Handler) Modifiers() ModifierState { return h.mods.Snapshot() }
