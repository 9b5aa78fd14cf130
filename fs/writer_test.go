package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "share path",
			url:  "https://chatgpt.com/share/abc-123",
			want: "chatgpt.com/share/abc-123.md",
		},
		{
			name: "trailing slash becomes index",
			url:  "https://claude.ai/share/",
			want: "claude.ai/share/index.md",
		},
		{
			name: "root path becomes index",
			url:  "https://example.com/",
			want: "example.com/index.md",
		},
		{
			name: "root without trailing slash",
			url:  "https://example.com",
			want: "example.com/index.md",
		},
		{
			name: "ignores query string",
			url:  "https://g.co/gemini/share/xyz?hl=en",
			want: "g.co/gemini/share/xyz.md",
		},
		{
			name: "ignores fragment",
			url:  "https://chatgpt.com/share/abc#turn-2",
			want: "chatgpt.com/share/abc.md",
		},
		{
			name: "drops port and lowercases host",
			url:  "https://Example.COM:8443/s/1",
			want: "example.com/s/1.md",
		},
		{
			name: "dot segments cannot escape host directory",
			url:  "https://example.com/../../etc/passwd",
			want: "example.com/etc/passwd.md",
		},
		{
			name:    "missing host",
			url:     "/share/abc",
			wantErr: true,
		},
		{
			name:    "unparsable",
			url:     "http://[::1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, chatshare.EINVALID, chatshare.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func transcript() *chatshare.Transcript {
	return &chatshare.Transcript{
		ID:        "0b6f6f3e-8d4e-4a49-9d59-2f0f7d2a0c11",
		SourceURL: "https://chatgpt.com/share/abc",
		Strategy:  "anchor",
		Platform:  chatshare.PlatformChatGPT,
		Messages: []chatshare.Message{
			{Role: chatshare.RoleUser, Text: "What is Go?", Index: 1},
			{Role: chatshare.RoleAssistant, Text: "A programming language.", Index: 2},
		},
	}
}

var extractedAt = time.Date(2025, 1, 8, 10, 30, 0, 0, time.UTC)

func TestFormatTranscript(t *testing.T) {
	t.Parallel()

	t.Run("formats transcript with frontmatter", func(t *testing.T) {
		t.Parallel()

		got, err := fs.FormatTranscript(transcript(), extractedAt)

		require.NoError(t, err)
		assert.True(t, len(got) > 4 && got[:4] == "---\n")
		assert.Contains(t, got, "id: 0b6f6f3e-8d4e-4a49-9d59-2f0f7d2a0c11\n")
		assert.Contains(t, got, "source: https://chatgpt.com/share/abc\n")
		assert.Contains(t, got, "platform: chatgpt\n")
		assert.Contains(t, got, "strategy: anchor\n")
		assert.Contains(t, got, "messages: 2\n")
		assert.Contains(t, got, "2025-01-08T10:30:00Z")
		assert.NotContains(t, got, "rendered:")
		assert.Contains(t, got, "---\n\n## 1. User\n\nWhat is Go?\n\n## 2. Assistant\n\nA programming language.\n")
	})

	t.Run("records rendered transcripts", func(t *testing.T) {
		t.Parallel()

		tr := transcript()
		tr.Rendered = true

		got, err := fs.FormatTranscript(tr, extractedAt)

		require.NoError(t, err)
		assert.Contains(t, got, "rendered: true\n")
	})
}

func TestWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ chatshare.TranscriptWriter = &fs.Writer{}
}

func TestWriter_WriteTranscript(t *testing.T) {
	t.Parallel()

	clock := fs.WithClock(func() time.Time { return extractedAt })

	t.Run("writes transcript to host path", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir, clock)

		path, err := w.WriteTranscript(context.Background(), transcript())

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, "chatgpt.com", "share", "abc.md"), path)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		want, err := fs.FormatTranscript(transcript(), extractedAt)
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	})

	t.Run("names documents without source by id", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir, clock)
		tr := transcript()
		tr.SourceURL = ""

		path, err := w.WriteTranscript(context.Background(), tr)

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(baseDir, tr.ID+".md"), path)
	})

	t.Run("overwrites existing file and leaves no temp files", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir, clock)

		_, err := w.WriteTranscript(context.Background(), transcript())
		require.NoError(t, err)

		tr := transcript()
		tr.Messages = tr.Messages[:1]
		path, err := w.WriteTranscript(context.Background(), tr)
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "messages: 1\n")

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "abc.md", entries[0].Name())
	})

	t.Run("rejects empty transcript", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())
		tr := transcript()
		tr.Messages = nil

		_, err := w.WriteTranscript(context.Background(), tr)

		require.Error(t, err)
		assert.Equal(t, chatshare.ENOMESSAGES, chatshare.ErrorCode(err))
	})

	t.Run("rejects transcript without source or id", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())
		tr := transcript()
		tr.SourceURL = ""
		tr.ID = ""

		_, err := w.WriteTranscript(context.Background(), tr)

		require.Error(t, err)
		assert.Equal(t, chatshare.EINVALID, chatshare.ErrorCode(err))
	})

	t.Run("honors canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewWriter(t.TempDir()).WriteTranscript(ctx, transcript())

		require.ErrorIs(t, err, context.Canceled)
	})
}
