package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records for assertions.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandlerSpy creates a new LogHandlerSpy. With logToStdout set the
// captured records are also written as JSON, useful when debugging tests.
func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdout,
	}
}

// Handle implements slog.Handler.
func (h *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)

	if h.logToStdout {
		jsonHandler := slog.NewJSONHandler(os.Stdout, nil)
		_ = jsonHandler.Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler.
func (h *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler.
func (h *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return h
}

// RecordCount returns the number of captured records.
func (h *LogHandlerSpy) RecordCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.records)
}

// Records returns a copy of all captured records.
func (h *LogHandlerSpy) Records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	records := make([]slog.Record, len(h.records))
	copy(records, h.records)

	return records
}

// Reset clears all captured records.
func (h *LogHandlerSpy) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

// HasDebugLog reports whether a debug-level record with the given message
// was captured.
func (h *LogHandlerSpy) HasDebugLog(message string) bool {
	return h.hasLog(slog.LevelDebug, message)
}

// HasErrorLog reports whether an error-level record with the given message
// was captured.
func (h *LogHandlerSpy) HasErrorLog(message string) bool {
	return h.hasLog(slog.LevelError, message)
}

func (h *LogHandlerSpy) hasLog(level slog.Level, message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, record := range h.records {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}
