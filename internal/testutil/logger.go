// Package testutil holds fixtures and loggers shared by runlens tests.
package testutil

import (
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug logger whose records go to t.Log, so they
// only show for failing tests or under -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(newHandler(&LogRecorder{t: t}))
}

// NewRecordingLogger is NewTestLogger that also keeps every formatted
// record for assertions.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	t.Helper()
	rec := &LogRecorder{t: t, keep: true}
	return slog.New(newHandler(rec)), rec
}

// newHandler drops timestamps so recorded lines are stable.
func newHandler(rec *LogRecorder) slog.Handler {
	return slog.NewTextHandler(rec, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
}

// LogRecorder forwards log lines to the test log.
type LogRecorder struct {
	t    testing.TB
	keep bool

	mu    sync.Mutex
	lines []string
}

func (r *LogRecorder) Write(p []byte) (int, error) {
	r.t.Helper()
	line := strings.TrimRight(string(p), "\n")
	r.t.Log(line)
	if r.keep {
		r.mu.Lock()
		r.lines = append(r.lines, line)
		r.mu.Unlock()
	}
	return len(p), nil
}

// Lines returns the recorded lines in order.
func (r *LogRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Find returns the first recorded line containing msg="<msg>".
func (r *LogRecorder) Find(msg string) (string, bool) {
	needle := "msg=" + quoteIfNeeded(msg)
	for _, line := range r.Lines() {
		if strings.Contains(line, needle) {
			return line, true
		}
	}
	return "", false
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " =\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
