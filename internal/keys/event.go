package keys

// Kind is the transition an Event reports.
type Kind uint8

const (
	Press Kind = iota + 1
	Release
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Event is one key transition delivered by the OS hook. Payload carries the
// platform record and is never inspected outside the hook backend.
type Event struct {
	Kind    Kind
	Key     Key
	Payload any
}

// IsPress reports whether e presses key.
func (e Event) IsPress(key Key) bool { return e.Kind == Press && e.Key == key }

// IsRelease reports whether e releases key.
func (e Event) IsRelease(key Key) bool { return e.Kind == Release && e.Key == key }

// Decision is the verdict returned to the hook for exactly one Event.
type Decision struct {
	suppress bool
	event    Event
}

// Pass lets ev continue unmodified to its normal destination.
func Pass(ev Event) Decision { return Decision{event: ev} }

// Suppress consumes the event.
func Suppress() Decision { return Decision{suppress: true} }

// Suppressed reports whether the event is consumed.
func (d Decision) Suppressed() bool { return d.suppress }

// Event returns the passed event. The zero Event is returned for Suppress.
func (d Decision) Event() Event { return d.event }

func (d Decision) String() string {
	if d.suppress {
		return "suppress"
	}
	return "pass"
}
