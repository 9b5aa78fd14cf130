package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptWriter_WriteTranscript(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteTranscriptFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *chatshare.Transcript
		w := &mock.TranscriptWriter{
			WriteTranscriptFn: func(_ context.Context, tr *chatshare.Transcript) (string, error) {
				calledWith = tr
				return "out/abc.md", nil
			},
		}

		tr := &chatshare.Transcript{ID: "abc", SourceURL: "https://chatgpt.com/share/abc"}

		path, err := w.WriteTranscript(context.Background(), tr)

		require.NoError(t, err)
		assert.Equal(t, "out/abc.md", path)
		assert.Same(t, tr, calledWith)
	})
}
