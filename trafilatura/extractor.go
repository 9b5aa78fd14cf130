// Package trafilatura isolates the main readable text of a share page using
// go-trafilatura.
package trafilatura

import (
	"strings"

	"github.com/fwojciec/chatshare"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements chatshare.TextExtractor at compile time.
var _ chatshare.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	fallback bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFallback toggles the readability and dom-distiller fallbacks that
// trafilatura runs when its own extraction comes up short. Enabled by default.
func WithFallback(enabled bool) Option {
	return func(e *Extractor) {
		e.fallback = enabled
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{fallback: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MainText returns the page's main content as plain text with paragraph
// breaks preserved.
func (e *Extractor) MainText(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", chatshare.Errorf(chatshare.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: e.fallback,
	})
	if err != nil {
		return "", err
	}

	if result.ContentNode != nil {
		if text := strings.TrimSpace(blockText(result.ContentNode)); text != "" {
			return text, nil
		}
	}
	return strings.TrimSpace(result.ContentText), nil
}

// blockText flattens n to text, separating block-level elements with blank
// lines so downstream splitting can still find turn boundaries.
func blockText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "br" {
				sb.WriteString("\n")
				return
			}
			if n.Data == "hr" {
				sb.WriteString("\n\n---\n\n")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			sb.WriteString("\n\n")
		}
	}
	walk(n)
	return sb.String()
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "li", "pre", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "tr", "table", "ul", "ol":
		return true
	}
	return false
}
