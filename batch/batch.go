// Package batch extracts conversations from many share URLs concurrently.
package batch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/chatshare"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs extracted at once.
const DefaultConcurrency = 4

// Batch runs ExtractFromURL over a list of URLs with bounded concurrency.
type Batch struct {
	Extractor   chatshare.ConversationExtractor
	Concurrency int

	// RetryDelays are the waits between attempts for transient failures.
	// Nil disables retries.
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Result holds the outcome for one URL.
type Result struct {
	Position   int
	URL        string
	Transcript *chatshare.Transcript
	Err        error
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
// It is called from a single goroutine.
type ProgressFunc func(event ProgressEvent)

// Run extracts every URL and returns results in input order.
// A failing URL does not stop the others.
func (b *Batch) Run(ctx context.Context, urls []string, progress ProgressFunc) []Result {
	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(urls)
	resultCh := make(chan Result, total)

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, url := range urls {
			g.Go(func() error {
				resultCh <- b.process(gctx, i, url)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]Result, total)
	var completed atomic.Int64
	for result := range resultCh {
		n := int(completed.Add(1))
		results[result.Position] = result

		if progress == nil {
			continue
		}
		if result.Err != nil {
			progress(ProgressEvent{Type: ProgressFailed, Completed: n, Total: total, URL: result.URL, Error: result.Err})
		} else {
			progress(ProgressEvent{Type: ProgressCompleted, Completed: n, Total: total, URL: result.URL})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return results
}

func (b *Batch) process(ctx context.Context, position int, url string) Result {
	extract := func(ctx context.Context, url string) (*chatshare.Transcript, error) {
		return b.Extractor.ExtractFromURL(ctx, url)
	}
	t, err := ExtractWithRetry(ctx, url, extract, b.logger(), b.RetryDelays)
	return Result{Position: position, URL: url, Transcript: t, Err: err}
}

func (b *Batch) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Failed counts results with an error.
func Failed(results []Result) int {
	var n int
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
