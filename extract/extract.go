// Package extract implements the conversation extraction pipeline: the
// regex-based anchor and heuristic strategies plus the orchestrator that
// runs every strategy in priority order.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/chatshare"
	"github.com/google/uuid"
)

// Acceptance thresholds.
const (
	DefaultMinStructural = 2
	DefaultMinJSON       = 1
)

// Stage identifies how far the strategy chain has progressed.
type Stage int

const (
	StageNotStarted Stage = iota
	StageStructural
	StageJSON
	StageHeuristic
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageNotStarted:
		return "not_started"
	case StageStructural:
		return "structural"
	case StageJSON:
		return "json"
	case StageHeuristic:
		return "heuristic"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Ensure Extractor implements chatshare.ConversationExtractor at compile time.
var _ chatshare.ConversationExtractor = (*Extractor)(nil)

// Extractor runs the strategy chain over fetched or supplied documents.
// It holds no mutable state and is safe for concurrent use once built.
type Extractor struct {
	Fetcher  chatshare.Fetcher
	Renderer chatshare.Renderer

	// Structural strategies are tried in order; the first reaching
	// MinStructural messages wins.
	Structural []chatshare.Strategy
	JSON       chatshare.Strategy
	Heuristic  chatshare.Strategy

	// Detector, when set, records the page's platform on the transcript.
	Detector chatshare.PlatformDetector

	MinStructural int
	MinJSON       int

	Logger *slog.Logger
}

// ExtractFromURL fetches url and extracts its conversation. Fetch errors
// are returned as is. When nothing is found and a Renderer is configured,
// the page is rendered in a browser and the chain runs once more.
func (e *Extractor) ExtractFromURL(ctx context.Context, url string) (*chatshare.Transcript, error) {
	if e.Fetcher == nil {
		return nil, chatshare.Errorf(chatshare.EINTERNAL, "extractor has no fetcher")
	}

	res, err := e.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	t := newTranscript(res.FinalURL)
	if t.SourceURL == "" {
		t.SourceURL = url
	}
	if res.Degraded {
		t.Warnings = append(t.Warnings, chatshare.Errorf(chatshare.EDECODEDEGRADED,
			"response from %s could not be decoded cleanly; invalid bytes were replaced", t.SourceURL))
	}

	if err := e.run(ctx, res.Text, t); err != nil {
		return nil, err
	}
	if !t.Empty() || e.Renderer == nil {
		return t, nil
	}

	log := e.logger().With("extraction", t.ID)
	log.Debug("no messages in static document, rendering", "url", t.SourceURL)
	doc, err := e.Renderer.Render(ctx, t.SourceURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("render failed", "url", t.SourceURL, "error", err)
		t.Warnings = append(t.Warnings, err)
		return t, nil
	}

	if err := e.run(ctx, doc, t); err != nil {
		return nil, err
	}
	t.Rendered = !t.Empty()
	return t, nil
}

// ExtractFromDocument extracts the conversation from doc.
func (e *Extractor) ExtractFromDocument(ctx context.Context, doc string) (*chatshare.Transcript, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, chatshare.Errorf(chatshare.EINVALID, "document required")
	}
	t := newTranscript("")
	if err := e.run(ctx, doc, t); err != nil {
		return nil, err
	}
	return t, nil
}

func newTranscript(source string) *chatshare.Transcript {
	return &chatshare.Transcript{ID: uuid.NewString(), SourceURL: source}
}

// run advances through the stages until one strategy produces an
// acceptable result, storing it in t. Cancellation is checked between
// stages.
func (e *Extractor) run(ctx context.Context, doc string, t *chatshare.Transcript) error {
	log := e.logger().With("extraction", t.ID)

	if e.Detector != nil && t.Platform == chatshare.PlatformUnknown {
		t.Platform = e.Detector.Detect(doc)
	}

	for stage := StageStructural; stage != StageDone; {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch stage {
		case StageStructural:
			for _, s := range e.Structural {
				if e.accept(log, stage, s, doc, e.minStructural(), t) {
					return nil
				}
			}
			stage = StageJSON
		case StageJSON:
			if e.accept(log, stage, e.JSON, doc, e.minJSON(), t) {
				return nil
			}
			stage = StageHeuristic
		case StageHeuristic:
			e.accept(log, stage, e.Heuristic, doc, 1, t)
			stage = StageDone
		}
	}
	return nil
}

// accept runs s and stores its messages in t when there are at least min.
func (e *Extractor) accept(log *slog.Logger, stage Stage, s chatshare.Strategy, doc string, min int, t *chatshare.Transcript) bool {
	if s == nil {
		return false
	}
	msgs := chatshare.NewMessages(e.try(log, s, doc))
	log.Debug("strategy finished", "stage", stage.String(), "strategy", s.Name(), "messages", len(msgs))
	if len(msgs) < min {
		return false
	}
	t.Strategy = s.Name()
	t.Messages = msgs
	return true
}

// try runs a single strategy, converting errors and panics into an empty
// result so the next stage can run.
func (e *Extractor) try(log *slog.Logger, s chatshare.Strategy, doc string) (turns []chatshare.Turn) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("strategy panicked", "strategy", s.Name(), "panic", fmt.Sprint(r))
			turns = nil
		}
	}()

	turns, err := s.ExtractTurns(doc)
	if err != nil {
		log.Warn("strategy failed", "strategy", s.Name(), "error", err)
		return nil
	}
	return turns
}

func (e *Extractor) minStructural() int {
	if e.MinStructural <= 0 {
		return DefaultMinStructural
	}
	return e.MinStructural
}

func (e *Extractor) minJSON() int {
	if e.MinJSON <= 0 {
		return DefaultMinJSON
	}
	return e.MinJSON
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
