// Package cli implements the relief command-line interface.
//
// Commands run heightmap recipes, apply single transforms, summarize and
// render grids, and serve the HTTP API. The CLI is built on cobra, reads
// settings through viper, and logs with charmbracelet/log.
//
// # Commands
//
//   - apply: run a recipe file over named input grids
//   - transform: apply one operation to a grid file
//   - inspect: print grid statistics and a histogram
//   - render: draw a grid as a heatmap or grayscale image
//   - preview: browse a recipe's intermediate stages in the terminal
//   - ops: list the available operations
//   - serve: start the HTTP API
//   - cache: manage the step and render cache
//
// # Configuration
//
// Settings come from $XDG_CONFIG_HOME/relief/config.toml (or --config)
// and RELIEF_ environment variables:
//
//	[cache]
//	backend = "redis"   # file (default), redis or none
//	ttl = "72h"
//
//	[redis]
//	addr = "localhost:6379"
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so deeper helpers log with the same
// settings.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Applied 4 steps (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return log.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
