package oplog

import (
	"io"
	"log/slog"
)

// Setup installs the default logger: a text handler on w filtered by level,
// with Error records teed to onError. It returns the installed logger.
func Setup(w io.Writer, level slog.Leveler, onError EntryCallback) *slog.Logger {
	base := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger := slog.New(NewTeeHandler(base, slog.LevelError, onError))
	slog.SetDefault(logger)
	return logger
}
