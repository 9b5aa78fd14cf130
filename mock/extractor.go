package mock

import "github.com/fwojciec/chatshare"

var _ chatshare.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of chatshare.TextExtractor.
type TextExtractor struct {
	MainTextFn func(html string) (string, error)
}

func (e *TextExtractor) MainText(html string) (string, error) {
	return e.MainTextFn(html)
}
