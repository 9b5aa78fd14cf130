// Package slog provides logging decorators for chatshare services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/chatshare"
)

// Ensure LoggingFetcher implements chatshare.Fetcher.
var _ chatshare.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   chatshare.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next chatshare.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (res *chatshare.FetchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin)}
		if res != nil {
			attrs = append(attrs,
				"status", res.StatusCode,
				"bytes", len(res.Body),
				"encoding", res.Encoding,
				"degraded", res.Degraded,
			)
		}
		if err != nil {
			attrs = append(attrs, "code", chatshare.ErrorCode(err), "err", err)
		}
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Ensure LoggingRenderer implements chatshare.Renderer.
var _ chatshare.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with logging.
type LoggingRenderer struct {
	next   chatshare.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next chatshare.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render logs the URL being rendered and delegates to the wrapped renderer.
func (r *LoggingRenderer) Render(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("render",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, url)
}

// Close delegates to the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
