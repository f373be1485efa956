// Package cli implements the augment command-line interface.
//
// The CLI loads images from disk, runs them through an augmenter built
// from a YAML configuration and writes the augmented variants back out.
// It is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
//   - run: Write N augmented variants of an image (and its label image)
//   - config init: Write the default configuration
//   - config show: Print the resolved configuration
//   - version: Print the library version
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"os"
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

// progress times the variants of one run.
type progress struct {
	logger  *log.Logger
	total   int
	written int
	start   time.Time
	last    time.Time
}

func newProgress(l *log.Logger, total int) *progress {
	now := time.Now()
	return &progress{logger: l, total: total, start: now, last: now}
}

// variant records a written variant and logs how long it took.
func (p *progress) variant(index int, kinds []string) {
	now := time.Now()
	p.written++
	p.logger.Debug("Wrote variant",
		"index", index, "of", p.total, "kinds", kinds,
		"elapsed", now.Sub(p.last).Round(time.Millisecond))
	p.last = now
}

// done logs msg with the run time and variant rate,
// e.g. "Augmented 8 variant(s) (1.234s, 6.5/s)".
func (p *progress) done(msg string) {
	elapsed := time.Since(p.start)
	var rate float64
	if s := elapsed.Seconds(); s > 0 {
		rate = float64(p.written) / s
	}
	p.logger.Infof("%s (%s, %.1f/s)", msg, elapsed.Round(time.Millisecond), rate)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command. Code
// running outside a command gets an info-level logger on stderr.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return newLogger(os.Stderr, log.InfoLevel)
}
