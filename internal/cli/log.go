package cli

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress counts outputs produced by concurrent workers and logs a
// summary with the elapsed time once they finish.
type progress struct {
	logger *log.Logger
	start  time.Time

	mu    sync.Mutex
	count int
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// add records one finished output and returns the running count. Safe for
// concurrent use.
func (p *progress) add() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return p.count
}

// done logs verb with the output count and the elapsed time, rounded to
// the millisecond. Example output: "Rendered 3 files (1.234s)"
func (p *progress) done(verb string) {
	p.mu.Lock()
	n := p.count
	p.mu.Unlock()

	noun := "files"
	if n == 1 {
		noun = "file"
	}
	p.logger.Infof("%s %d %s (%s)", verb, n, noun, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
