// Package cli implements the typesync command-line interface.
//
// The root command syncs a package.json (and its workspace members) with
// the @types packages its dependencies need. Flags can also be given as
// TYPESYNC_* environment variables. The cache subcommand manages the
// optional on-disk registry response cache.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so commands can pick them up with
// loggerFromContext.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes "HH:MM:SS.ms"-stamped lines to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})
}

// progress measures a run; done logs msg at debug level with the elapsed
// time, e.g. "synced 3 manifests (1.234s)".
type progress struct {
	logger  *log.Logger
	started time.Time
}

func newProgress(l *log.Logger) progress { return progress{l, time.Now()} }

func (p progress) done(msg string) {
	elapsed := time.Since(p.started).Round(time.Millisecond)
	p.logger.Debug(msg, "elapsed", elapsed)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default() when ctx carries no logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
