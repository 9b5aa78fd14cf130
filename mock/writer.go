package mock

import (
	"context"

	"github.com/fwojciec/chatshare"
)

var _ chatshare.TranscriptWriter = (*TranscriptWriter)(nil)

// TranscriptWriter is a mock implementation of chatshare.TranscriptWriter.
type TranscriptWriter struct {
	WriteTranscriptFn func(ctx context.Context, t *chatshare.Transcript) (string, error)
}

func (w *TranscriptWriter) WriteTranscript(ctx context.Context, t *chatshare.Transcript) (string, error) {
	return w.WriteTranscriptFn(ctx, t)
}
