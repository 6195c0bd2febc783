// Package oplog configures process logging and forwards error records to an
// operator-facing channel such as desktop notifications.
package oplog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"
)

// Entry is the part of a log record handed to an EntryCallback.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	// Attrs holds the handler attributes followed by the record attributes,
	// flattened to key/value strings. Group names prefix keys with "group.".
	Attrs []Attr
}

// Attr is one flattened attribute of an Entry.
type Attr struct {
	Key   string
	Value string
}

// Lookup returns the value of the first attribute named key.
func (e Entry) Lookup(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// EntryCallback receives every record at or above the capture threshold. It
// runs on the logging goroutine and must not block.
type EntryCallback func(Entry)

// TeeHandler wraps a base [slog.Handler] and tees records at or above minLevel
// to a callback. Every record still reaches the base handler.
type TeeHandler struct {
	base     slog.Handler
	callback EntryCallback
	minLevel slog.Level
	group    string
	attrs    []Attr
}

// NewTeeHandler returns a TeeHandler. A nil callback only delegates to base.
func NewTeeHandler(base slog.Handler, minLevel slog.Level, callback EntryCallback) *TeeHandler {
	return &TeeHandler{
		base:     base,
		callback: callback,
		minLevel: minLevel,
	}
}

// Enabled defers to the base handler; minLevel only gates the callback.
func (h *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle forwards the record to base and then, if the level qualifies, to the
// callback. The callback runs even when base fails.
func (h *TeeHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.base.Handle(ctx, record)

	if h.callback != nil && record.Level >= h.minLevel {
		entry := Entry{
			Time:    record.Time,
			Level:   record.Level,
			Message: record.Message,
			Attrs:   append([]Attr(nil), h.attrs...),
		}
		record.Attrs(func(a slog.Attr) bool {
			entry.Attrs = appendAttr(entry.Attrs, h.group, a)
			return true
		})
		func() {
			defer func() {
				if r := recover(); r != nil {
					// Written to stderr: logging here would re-enter this handler.
					fmt.Fprintf(os.Stderr, "[oplog] callback panicked: %v\n%s\n", r, debug.Stack())
				}
			}()
			h.callback(entry)
		}()
	}
	return err
}

// WithAttrs applies attrs to the base handler and remembers them for entries.
func (h *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := h.clone()
	next.base = h.base.WithAttrs(attrs)
	for _, a := range attrs {
		next.attrs = appendAttr(next.attrs, h.group, a)
	}
	return next
}

func (h *TeeHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.base = h.base.WithGroup(name)
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return next
}

func (h *TeeHandler) clone() *TeeHandler {
	return &TeeHandler{
		base:     h.base,
		callback: h.callback,
		minLevel: h.minLevel,
		group:    h.group,
		attrs:    append([]Attr(nil), h.attrs...),
	}
}

func appendAttr(dst []Attr, prefix string, a slog.Attr) []Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, sub := range a.Value.Group() {
			dst = appendAttr(dst, key, sub)
		}
		return dst
	}
	return append(dst, Attr{Key: key, Value: a.Value.String()})
}
