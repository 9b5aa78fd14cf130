package mock

import (
	"context"

	"github.com/fwojciec/chatshare"
)

var _ chatshare.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of chatshare.Strategy.
type Strategy struct {
	ExtractTurnsFn func(doc string) ([]chatshare.Turn, error)
	NameFn         func() string
}

func (s *Strategy) ExtractTurns(doc string) ([]chatshare.Turn, error) {
	return s.ExtractTurnsFn(doc)
}

func (s *Strategy) Name() string {
	return s.NameFn()
}

var _ chatshare.ConversationExtractor = (*ConversationExtractor)(nil)

// ConversationExtractor is a mock implementation of chatshare.ConversationExtractor.
type ConversationExtractor struct {
	ExtractFromURLFn      func(ctx context.Context, url string) (*chatshare.Transcript, error)
	ExtractFromDocumentFn func(ctx context.Context, doc string) (*chatshare.Transcript, error)
}

func (e *ConversationExtractor) ExtractFromURL(ctx context.Context, url string) (*chatshare.Transcript, error) {
	return e.ExtractFromURLFn(ctx, url)
}

func (e *ConversationExtractor) ExtractFromDocument(ctx context.Context, doc string) (*chatshare.Transcript, error) {
	return e.ExtractFromDocumentFn(ctx, doc)
}

var _ chatshare.PlatformDetector = (*PlatformDetector)(nil)

// PlatformDetector is a mock implementation of chatshare.PlatformDetector.
type PlatformDetector struct {
	DetectFn func(html string) chatshare.Platform
}

func (d *PlatformDetector) Detect(html string) chatshare.Platform {
	return d.DetectFn(html)
}
