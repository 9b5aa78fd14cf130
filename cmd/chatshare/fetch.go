package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/batch"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	urls := make([]string, 0, len(c.URLs))
	for _, u := range c.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		err := chatshare.Errorf(chatshare.EINVALID, "no url given")
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatshare.ErrorMessage(err))
		return err
	}

	b := &batch.Batch{
		Extractor:   deps.Extractor,
		Concurrency: c.Concurrency,
		RetryDelays: batch.Delays(c.Retries),
		Logger:      deps.Logger,
	}
	results := b.Run(deps.Ctx, urls, logProgress(deps.Logger))
	if deps.Logger != nil {
		deps.Logger.Info("batch finished", "urls", len(results), "failed", batch.Failed(results))
	}

	if len(results) == 1 {
		r := results[0]
		if r.Err != nil {
			reportError(deps, r.Err)
			return r.Err
		}
		return emit(deps, r.Transcript)
	}

	var (
		failed   int
		firstErr error
	)
	for _, r := range results {
		err := r.Err
		if err == nil {
			if deps.Writer == nil && deps.Format != "json" {
				fmt.Fprintf(deps.Stdout, "# %s\n\n", r.URL)
			}
			err = emit(deps, r.Transcript)
		} else {
			fmt.Fprintf(deps.Stderr, "%s: ", r.URL)
			reportError(deps, err)
		}
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if failed > 0 {
		return chatshare.Errorf(chatshare.ErrorCode(firstErr), "%d of %d urls failed", failed, len(results))
	}
	return nil
}

func reportError(deps *Dependencies, err error) {
	fmt.Fprintf(deps.Stderr, "error: %s\n", chatshare.ErrorMessage(err))
	if chatshare.ErrorCode(err) == chatshare.EHOSTNOTALLOWED {
		fmt.Fprintln(deps.Stderr, "Hint: add the host to --allowed-hosts or ALLOWED_HOSTS")
	}
}

func logProgress(logger *slog.Logger) batch.ProgressFunc {
	if logger == nil {
		return nil
	}
	return func(e batch.ProgressEvent) {
		switch e.Type {
		case batch.ProgressCompleted:
			logger.Info("extracted", "url", e.URL, "completed", e.Completed, "total", e.Total)
		case batch.ProgressFailed:
			logger.Info("failed", "url", e.URL, "completed", e.Completed, "total", e.Total, "code", chatshare.ErrorCode(e.Error))
		}
	}
}
