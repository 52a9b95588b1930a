package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Logger receives each page's summary once. Log returns when the message
// has been accepted.
type Logger interface {
	Log(ctx context.Context, message string) error
}

// ZapLogger forwards summaries to a zap logger at info level, tagged with
// the page they belong to when the context carries one.
type ZapLogger struct {
	L *zap.Logger
}

// Log implements Logger.
func (z ZapLogger) Log(ctx context.Context, message string) error {
	fields := []zap.Field{zap.String("summary", message)}
	if page, ok := PageFromContext(ctx); ok {
		fields = append(fields, zap.String("page", page))
	}
	z.L.Info("Link report", fields...)
	return nil
}

// WriterLogger prints summaries to W, one block per call. A block is
// headed by "== <page>" when the context carries the page.
type WriterLogger struct {
	mu sync.Mutex
	W  io.Writer
}

// Log implements Logger.
func (w *WriterLogger) Log(ctx context.Context, message string) error {
	if page, ok := PageFromContext(ctx); ok {
		message = "== " + page + "\n" + message
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.W, message); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

type pageKey struct{}

// WithPage returns a context tagged with the page source being reported.
func WithPage(ctx context.Context, page string) context.Context {
	return context.WithValue(ctx, pageKey{}, page)
}

// PageFromContext returns the page tagged by WithPage.
func PageFromContext(ctx context.Context) (string, bool) {
	page, ok := ctx.Value(pageKey{}).(string)
	return page, ok
}
