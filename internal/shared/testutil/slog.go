package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is a captured log record.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// recordStore accumulates records across handler clones so attributes
// added via Logger.With still land in the shared capture.
type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler is a slog.Handler that records everything logged
// through it. All levels are enabled; clones created by WithAttrs
// share the parent's record store.
type CaptureHandler struct {
	store *recordStore
	attrs []slog.Attr
	t     *testing.T
}

// NewCaptureHandler returns a handler capturing into a fresh store.
// When t is non-nil, each record is also echoed to the test log.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{store: &recordStore{}, t: t}
}

// NewTestLogger returns a logger wired to a fresh capture handler,
// plus the handler for assertions.
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(t)
	return slog.New(h), h
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// Enabled implements slog.Handler. Every level is captured.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler. The clone carries the extra
// attributes and writes into the same store.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &CaptureHandler{store: h.store, attrs: merged, t: h.t}
}

// WithGroup implements slog.Handler. Groups are flattened; nothing in
// this codebase logs through them.
func (h *CaptureHandler) WithGroup(string) slog.Handler {
	return h
}

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// RecordsAt returns captured records at the given level.
func (h *CaptureHandler) RecordsAt(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of captured records.
func (h *CaptureHandler) Count() int {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return len(h.store.records)
}

// HasMessage reports whether any captured record's message contains
// the given substring.
func (h *CaptureHandler) HasMessage(message string) bool {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any captured record carries the attribute.
func (h *CaptureHandler) HasAttr(key string, value any) bool {
	for _, r := range h.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

// AssertLogged fails the test unless a record at level contains the
// message substring.
func AssertLogged(t *testing.T, h *CaptureHandler, level slog.Level, message string) {
	t.Helper()

	records := h.RecordsAt(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("expected log at level %s containing %q", level, message)
	for _, r := range records {
		t.Logf("  captured: %s", r.Message)
	}
}
