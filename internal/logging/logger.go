// Package logging provides leveled logging and run tracing for lastmile.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TraceLogger for structured JSONL run traces (<dir>/runs.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-step detail.
// At this level the engine logs every resolved step distribution.
const LevelTrace = slog.LevelDebug - 4

// TraceFileName is the JSONL file written by OpenTraceFile.
const TraceFileName = "runs.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// TraceLogger writes structured run events as JSON lines.
// It is safe for concurrent use. A nil TraceLogger is safe to use;
// all methods are no-ops on nil receiver.
type TraceLogger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewTraceLogger creates a trace logger writing to w.
// At "info" level (the default), returns nil.
func NewTraceLogger(w io.Writer, level string) *TraceLogger {
	if ParseLevel(level) == slog.LevelInfo || w == nil {
		return nil
	}
	return &TraceLogger{w: w}
}

// OpenTraceFile creates a trace logger appending to dir/runs.jsonl.
// At "info" level, returns nil and no file is created.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func OpenTraceFile(dir string, level string) *TraceLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, TraceFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &TraceLogger{w: f, closer: f}
}

// Log writes one event as a single JSON line.
// "event", "run_id" and "time" fields are added. The caller's map is not mutated.
// Safe to call on nil receiver.
func (tl *TraceLogger) Log(runID, event string, fields map[string]any) {
	if tl == nil || tl.w == nil {
		return
	}

	entry := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["run_id"] = runID
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.w == nil {
		return
	}
	_, _ = tl.w.Write(data)
}

// Close closes the underlying file, if any. Safe to call on nil receiver.
func (tl *TraceLogger) Close() {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.closer != nil {
		tl.closer.Close()
		tl.closer = nil
	}
	tl.w = nil
}
