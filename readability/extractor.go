// Package readability isolates the main readable text of a share page using
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/chatshare"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements chatshare.TextExtractor at compile time.
var _ chatshare.TextExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// MainText returns the article text readability considers the page's
// primary content.
func (e *Extractor) MainText(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", chatshare.Errorf(chatshare.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return "", chatshare.Errorf(chatshare.EINVALID, "readability: %v", err)
	}

	return strings.TrimSpace(article.TextContent), nil
}
