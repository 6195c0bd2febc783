// Package notify shows error log records as desktop notifications.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gen2brain/beeep"

	"shorty/internal/oplog"
)

const (
	appName = "shorty"

	// DefaultQueueSize bounds the backlog of undelivered notifications.
	DefaultQueueSize = 16

	maxBodyRunes = 200
)

var notifyFn = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// bodyKeys are the attributes shown in a notification body, in order.
var bodyKeys = []string{"path", "error"}

// Notifier delivers entries on its own goroutine so that the logging caller,
// usually the event worker, never waits on the desktop notification service.
type Notifier struct {
	queue   chan oplog.Entry
	enabled atomic.Bool
	dropped atomic.Int64
}

// New returns a notifier with a queue of queueSize entries.
func New(enabled bool, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	n := &Notifier{queue: make(chan oplog.Entry, queueSize)}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled switches delivery on or off. Entries enqueued while disabled are
// discarded.
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Enqueue queues e for delivery without blocking. It has the
// oplog.EntryCallback signature. When the queue is full e is dropped.
func (n *Notifier) Enqueue(e oplog.Entry) {
	if !n.enabled.Load() {
		return
	}
	select {
	case n.queue <- e:
	default:
		n.dropped.Add(1)
	}
}

// Dropped reports how many entries were discarded because the queue was full.
func (n *Notifier) Dropped() int64 { return n.dropped.Load() }

// Run delivers queued entries until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-n.queue:
			if !n.enabled.Load() {
				continue
			}
			title, body := Format(e)
			if err := notifyFn(title, body); err != nil {
				// Warn, not Error: an Error record would be teed back here.
				slog.Warn("[notify] desktop notification failed", "error", err)
			}
		}
	}
}

// Format builds the notification title and body for e.
func Format(e oplog.Entry) (title, body string) {
	msg := e.Message
	if strings.HasPrefix(msg, "[") {
		if end := strings.Index(msg, "] "); end > 0 {
			msg = msg[end+2:]
		}
	}
	title = appName + ": " + msg

	var lines []string
	for _, key := range bodyKeys {
		if value, ok := lookupSuffix(e, key); ok && value != "" {
			lines = append(lines, value)
		}
	}
	return title, truncate(strings.Join(lines, "\n"), maxBodyRunes)
}

// lookupSuffix matches key itself or a grouped key ending in "."+key.
func lookupSuffix(e oplog.Entry, key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key || strings.HasSuffix(a.Key, "."+key) {
			return a.Value, true
		}
	}
	return "", false
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
