package extract

import (
	"regexp"
	"strings"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/clean"
)

var markerRe = regexp.MustCompile(`(?i)data-message-author-role\s*=\s*["'](user|assistant)["']`)

// Ensure AnchorStrategy implements chatshare.Strategy at compile time.
var _ chatshare.Strategy = (*AnchorStrategy)(nil)

// AnchorStrategy scans raw markup for explicit role attributes without
// building a document tree. Each message runs from the end of the tag
// carrying a marker to the start of the tag carrying the next one.
type AnchorStrategy struct {
	// Normalizer cleans each span. Defaults to clean.Default().
	Normalizer *clean.Normalizer
}

// Name returns "anchor".
func (s *AnchorStrategy) Name() string { return "anchor" }

// ExtractTurns returns one turn per marker with non-empty text.
func (s *AnchorStrategy) ExtractTurns(doc string) ([]chatshare.Turn, error) {
	doc = clean.StripBlocks(doc)
	locs := markerRe.FindAllStringSubmatchIndex(doc, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	norm := normalizerOrDefault(s.Normalizer)
	turns := make([]chatshare.Turn, 0, len(locs))
	for i, loc := range locs {
		gt := strings.IndexByte(doc[loc[1]:], '>')
		if gt < 0 {
			continue
		}
		start := loc[1] + gt + 1

		end := len(doc)
		if i+1 < len(locs) {
			end = strings.LastIndexByte(doc[:locs[i+1][0]], '<')
		}
		if end <= start {
			continue
		}

		text := norm.Normalize(doc[start:end])
		if text == "" {
			continue
		}
		turns = append(turns, chatshare.Turn{
			Role:   chatshare.ParseRole(strings.ToLower(doc[loc[2]:loc[3]])),
			Text:   text,
			Signal: chatshare.SignalAttribute,
		})
	}
	return turns, nil
}

func normalizerOrDefault(n *clean.Normalizer) *clean.Normalizer {
	if n == nil {
		return clean.Default()
	}
	return n
}
