package input

import "shorty/internal/keys"

// Family is a modifier group whose members are interchangeable variants of
// the same logical modifier.
type Family uint8

const (
	FamilyShift Family = iota
	FamilyCtrl
	FamilyAlt
	FamilyCmd
	familyCount
)

func (f Family) String() string {
	switch f {
	case FamilyShift:
		return "shift"
	case FamilyCtrl:
		return "ctrl"
	case FamilyAlt:
		return "alt"
	case FamilyCmd:
		return "cmd"
	default:
		return "unknown"
	}
}

// Families lists the key variants that count as each modifier.
type Families map[Family][]keys.Key

// DefaultFamilies returns the variants reported by the supported platforms.
// Keyboards and platforms report left, right, AltGr and raw-coded variants
// inconsistently, so every variant is tracked.
func DefaultFamilies() Families {
	return Families{
		FamilyShift: {keys.Named(keys.ShiftLeft), keys.Named(keys.ShiftRight)},
		FamilyCtrl:  {keys.Named(keys.ControlLeft), keys.Named(keys.ControlRight), keys.ControlQuirk},
		FamilyAlt:   {keys.Named(keys.Alt), keys.Named(keys.AltGr)},
		FamilyCmd:   {keys.Named(keys.MetaLeft), keys.Named(keys.MetaRight)},
	}
}

// ModifierState is the held state of each family at one instant.
type ModifierState struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Cmd   bool
}

// ModifierTracker answers "is this modifier held" from a set of KeyMonitors.
type ModifierTracker struct {
	monitors [familyCount][]*KeyMonitor
	all      []*KeyMonitor
}

// NewModifierTracker creates monitors for every key in families, all released.
func NewModifierTracker(families Families) *ModifierTracker {
	t := &ModifierTracker{}
	for f := Family(0); f < familyCount; f++ {
		for _, k := range families[f] {
			m := NewKeyMonitor(k)
			t.monitors[f] = append(t.monitors[f], m)
			t.all = append(t.all, m)
		}
	}
	return t
}

// Process feeds ev to every tracked monitor.
func (t *ModifierTracker) Process(ev keys.Event) {
	for _, m := range t.all {
		m.Process(ev)
	}
}

// Held reports whether any variant of f is pressed.
func (t *ModifierTracker) Held(f Family) bool {
	if f >= familyCount {
		return false
	}
	for _, m := range t.monitors[f] {
		if m.IsPressed() {
			return true
		}
	}
	return false
}

func (t *ModifierTracker) ShiftHeld() bool { return t.Held(FamilyShift) }
func (t *ModifierTracker) CtrlHeld() bool  { return t.Held(FamilyCtrl) }
func (t *ModifierTracker) AltHeld() bool   { return t.Held(FamilyAlt) }
func (t *ModifierTracker) CmdHeld() bool   { return t.Held(FamilyCmd) }

// Snapshot computes the current state of all four families.
func (t *ModifierTracker) Snapshot() ModifierState {
	return ModifierState{
		Shift: t.ShiftHeld(),
		Ctrl:  t.CtrlHeld(),
		Alt:   t.AltHeld(),
		Cmd:   t.CmdHeld(),
	}
}
