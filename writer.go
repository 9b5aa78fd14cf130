package chatshare

import "context"

// TranscriptWriter persists a transcript and reports where it was written.
type TranscriptWriter interface {
	WriteTranscript(ctx context.Context, t *Transcript) (string, error)
}
