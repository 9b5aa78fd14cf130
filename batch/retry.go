package batch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/chatshare"
)

// ExtractFunc is the signature for a single-URL extraction.
type ExtractFunc func(ctx context.Context, url string) (*chatshare.Transcript, error)

// Delays returns n exponential backoff delays starting at one second.
func Delays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// Retryable reports whether err is a transient failure worth another attempt:
// transport failures, failed renders, rate limiting and upstream 5xx.
// Validation and SSRF errors are permanent.
func Retryable(err error) bool {
	switch chatshare.ErrorCode(err) {
	case chatshare.EFETCHFAILED, chatshare.ERENDERFAILED:
		return true
	case chatshare.EUPSTREAM:
		status := chatshare.UpstreamStatus(err)
		return status == http.StatusTooManyRequests || status >= 500
	}
	return false
}

// ExtractWithRetry calls extract with backoff between attempts, one
// attempt more than len(delays). Only Retryable errors are retried.
func ExtractWithRetry(ctx context.Context, url string, extract ExtractFunc, logger *slog.Logger, delays []time.Duration) (*chatshare.Transcript, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		t, err := extract(ctx, url)
		if err == nil {
			return t, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !Retryable(err) {
			break
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.Info("retry", "url", url, "attempt", attempt+2, "code", chatshare.ErrorCode(err), "err", err)

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}
