// Package fs provides file-based output for extracted transcripts.
package fs

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/chatshare"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a share URL to a relative file path.
// Example: https://chatgpt.com/share/abc-123 → chatgpt.com/share/abc-123.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", chatshare.Errorf(chatshare.EINVALID, "invalid url: %s", rawURL)
	}
	if u.Host == "" {
		return "", chatshare.Errorf(chatshare.EINVALID, "url has no host: %s", rawURL)
	}

	host := strings.ToLower(u.Hostname())

	// Clean against a rooted path so ".." cannot climb above the host directory.
	p := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if p == "" {
		return host + "/index.md", nil
	}
	if strings.HasSuffix(u.Path, "/") {
		return host + "/" + p + "/index.md", nil
	}
	return host + "/" + p + ".md", nil
}

type frontmatter struct {
	ID        string `yaml:"id"`
	Source    string `yaml:"source,omitempty"`
	Platform  string `yaml:"platform,omitempty"`
	Strategy  string `yaml:"strategy"`
	Rendered  bool   `yaml:"rendered,omitempty"`
	Messages  int    `yaml:"messages"`
	Extracted string `yaml:"extracted"`
}

// FormatTranscript formats a transcript as Markdown with YAML frontmatter.
func FormatTranscript(t *chatshare.Transcript, extracted time.Time) (string, error) {
	meta, err := yaml.Marshal(frontmatter{
		ID:        t.ID,
		Source:    t.SourceURL,
		Platform:  string(t.Platform),
		Strategy:  t.Strategy,
		Rendered:  t.Rendered,
		Messages:  len(t.Messages),
		Extracted: extracted.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")
	b.WriteString(chatshare.FormatMarkdown(t.Messages))
	b.WriteString("\n")
	return b.String(), nil
}

// Ensure Writer implements chatshare.TranscriptWriter at compile time.
var _ chatshare.TranscriptWriter = (*Writer)(nil)

// Writer writes transcripts as markdown files under a base directory.
type Writer struct {
	baseDir string
	now     func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the clock used for the extracted timestamp.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string, opts ...Option) *Writer {
	w := &Writer{baseDir: baseDir, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteTranscript writes t to disk and returns the file path.
// Transcripts without a source URL are named by their ID. The file is
// written to a temporary sibling and renamed into place.
func (w *Writer) WriteTranscript(ctx context.Context, t *chatshare.Transcript) (string, error) {
	if t.Empty() {
		return "", chatshare.Errorf(chatshare.ENOMESSAGES, "transcript has no messages")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	relPath, err := w.relPath(t)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(w.baseDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	content, err := FormatTranscript(t, w.now())
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".chatshare-*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", err
	}

	return fullPath, nil
}

func (w *Writer) relPath(t *chatshare.Transcript) (string, error) {
	if t.SourceURL == "" {
		if t.ID == "" {
			return "", chatshare.Errorf(chatshare.EINVALID, "transcript has neither source url nor id")
		}
		return t.ID + ".md", nil
	}
	return URLToPath(t.SourceURL)
}
