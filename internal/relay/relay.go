// Package relay hands key events from the OS hook's calling context to a
// dedicated worker goroutine and returns the worker's decision.
//
// The hook context never runs variable-latency work itself: it sends the event,
// then blocks until the matching decision comes back. Exactly one event is in
// flight at a time, so events are processed in delivery order without
// overlap. When the worker is gone every event is passed through unchanged.
package relay

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"

	"shorty/internal/keys"
)

// ErrWorkerStopped is reported when the worker goroutine is no longer
// receiving events.
var ErrWorkerStopped = errors.New("relay: event worker stopped")

// Processor turns one event into one decision. It is only ever called from the
// worker goroutine.
type Processor interface {
	Process(ev keys.Event) keys.Decision
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ev keys.Event) keys.Decision

func (f ProcessorFunc) Process(ev keys.Event) keys.Decision { return f(ev) }

// Relay owns the worker goroutine and the two hand-off channels.
type Relay struct {
	// roundTripMu serializes Handle so each decision is paired with the event
	// that produced it.
	roundTripMu sync.Mutex

	events    chan keys.Event
	decisions chan keys.Decision
	tasks     chan func()
	stop      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// New starts the worker goroutine. p is owned exclusively by the worker from
// this point on.
func New(p Processor) *Relay {
	if p == nil {
		panic("relay: nil processor")
	}
	r := &Relay{
		events:    make(chan keys.Event),
		decisions: make(chan keys.Decision),
		tasks:     make(chan func()),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go r.run(p)
	return r
}

func (r *Relay) run(p Processor) {
	defer close(r.done)
	defer func() {
		if recovered := recover(); recovered != nil {
			slog.Error("[relay] event worker panicked, passing all further events through",
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
		}
	}()

	for {
		select {
		case <-r.stop:
			slog.Info("[relay] event processing stopped")
			return
		case ev := <-r.events:
			r.decisions <- p.Process(ev)
		case task := <-r.tasks:
			task()
		}
	}
}

// Handle relays ev to the worker and blocks until its decision arrives.
// It is safe to call from any goroutine, including foreign OS threads.
// If the worker has stopped, ev is passed through unchanged.
func (r *Relay) Handle(ev keys.Event) keys.Decision {
	r.roundTripMu.Lock()
	defer r.roundTripMu.Unlock()

	select {
	case r.events <- ev:
	case <-r.done:
		slog.Error("[relay] failed to send event for processing", "key", ev.Key, "kind", ev.Kind, "error", ErrWorkerStopped)
		return keys.Pass(ev)
	}

	select {
	case d := <-r.decisions:
		return d
	case <-r.done:
		slog.Error("[relay] failed to receive event decision", "key", ev.Key, "kind", ev.Kind, "error", ErrWorkerStopped)
		return keys.Pass(ev)
	}
}

// Do runs fn on the worker goroutine between two events and waits for it to
// return. State owned by the worker may only be changed this way.
func (r *Relay) Do(fn func()) error {
	finished := make(chan struct{})
	// finished is only closed on a normal return; a panicking task stops the
	// worker and Do reports that through done instead.
	task := func() {
		fn()
		close(finished)
	}

	select {
	case r.tasks <- task:
	case <-r.done:
		return ErrWorkerStopped
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrWorkerStopped
	}
}

// Close stops the worker and waits for it to exit. Events handled afterwards
// are passed through. Close is idempotent.
func (r *Relay) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

// Done is closed once the worker has exited.
func (r *Relay) Done() <-chan struct{} { return r.done }
