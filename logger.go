package textgeom

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NopLogger returns a logger that silently discards all output.
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := NopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the package-level logger shared by textgeom and
// its sub-packages. By default textgeom produces no log output.
//
// Resolver instances accept their own logger via resolve.WithLogger;
// the package-level logger is the fallback for embedders that do not
// scope diagnostics per instance.
//
// Log levels used by textgeom:
//   - [slog.LevelDebug]: per-strategy attempts, cache hits and misses
//   - [slog.LevelInfo]: capability detection outcomes
//   - [slog.LevelWarn]: introspection call failures and rejected bounds
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package-level logger.
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
