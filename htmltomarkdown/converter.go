// Package htmltomarkdown renders message markup as Markdown using
// html-to-markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/chatshare"
)

// Ensure Converter implements chatshare.Converter at compile time.
var _ chatshare.Converter = (*Converter)(nil)

// Message bodies carry copy/edit buttons inside code block headers.
var buttonRe = regexp.MustCompile(`(?is)<button\b[^>]*>.*?</button>`)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms a message's HTML into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", chatshare.Errorf(chatshare.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(buttonRe.ReplaceAllString(html, ""))
	if err != nil {
		return "", chatshare.Errorf(chatshare.EINVALID, "convert markdown: %v", err)
	}

	return strings.TrimSpace(result), nil
}
