package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/clean"
)

// Heuristic floors.
const (
	DefaultMinTextLength  = 40
	DefaultMinBlockLength = 10
	minHeuristicBlocks    = 2
)

var (
	ruleRe   = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,}|={3,})$`)
	headerRe = regexp.MustCompile(`(?i)^(?:#{1,6}\s*(?:\pL+\s+)?#?\d+|(?:message|turn)\s+#?\d+|\d+\.)$`)
	labelRe  = regexp.MustCompile(`(?i)^(?:(user|you|human|me|用户|我)|(assistant|chatgpt|gpt|ai|bot|claude|gemini|助手))(?:\s+said)?\s*[:：]\s*`)
)

// Ensure HeuristicStrategy implements chatshare.Strategy at compile time.
var _ chatshare.Strategy = (*HeuristicStrategy)(nil)

// HeuristicStrategy segments plain text into blocks and assigns roles by
// alternation, honoring role-label lines where present.
type HeuristicStrategy struct {
	// Normalizer converts the document to text. Defaults to clean.Default().
	Normalizer *clean.Normalizer

	// MainContent, when set, narrows the document to its main content
	// before segmentation.
	MainContent chatshare.TextExtractor

	// MinTextLength is the rune floor for the whole text.
	MinTextLength int

	// MinBlockLength is the rune floor for a single block.
	MinBlockLength int
}

// Name returns "heuristic".
func (s *HeuristicStrategy) Name() string { return "heuristic" }

// ExtractTurns normalizes doc and splits the result.
func (s *HeuristicStrategy) ExtractTurns(doc string) ([]chatshare.Turn, error) {
	norm := normalizerOrDefault(s.Normalizer)
	text := norm.Normalize(doc)

	if s.MainContent != nil {
		if main, err := s.MainContent.MainText(doc); err == nil {
			main = norm.Clean(main)
			if utf8.RuneCountInString(main) >= s.minText() {
				text = main
			}
		}
	}

	return s.Split(text), nil
}

type block struct {
	text    string
	role    chatshare.Role
	labeled bool
}

// Split segments already-normalized text into turns. It returns nil when
// the text or the surviving blocks fall below the configured floors.
func (s *HeuristicStrategy) Split(text string) []chatshare.Turn {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.minText() {
		return nil
	}

	lines := strings.Split(text, "\n")
	var blocks []block
	if hasSeparators(lines) {
		blocks = splitOnSeparators(lines)
	} else {
		for _, para := range strings.Split(text, "\n\n") {
			blocks = append(blocks, labeledBlock(para))
		}
	}

	minBlock := s.MinBlockLength
	if minBlock <= 0 {
		minBlock = DefaultMinBlockLength
	}

	current := chatshare.RoleUser
	var turns []chatshare.Turn
	for _, b := range blocks {
		body := strings.TrimSpace(b.text)
		if utf8.RuneCountInString(body) < minBlock {
			continue
		}
		role, signal := current, chatshare.SignalAlternation
		if b.labeled {
			role, signal = b.role, chatshare.SignalLabel
		}
		turns = append(turns, chatshare.Turn{Role: role, Text: body, Signal: signal})
		current = role.Other()
	}

	if len(turns) < minHeuristicBlocks {
		return nil
	}
	return turns
}

func (s *HeuristicStrategy) minText() int {
	if s.MinTextLength <= 0 {
		return DefaultMinTextLength
	}
	return s.MinTextLength
}

func hasSeparators(lines []string) bool {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if ruleRe.MatchString(line) || headerRe.MatchString(line) || labelRe.MatchString(line) {
			return true
		}
	}
	return false
}

// splitOnSeparators starts a new block at every rule, header or label
// line. A label line carries its role into the block it opens.
func splitOnSeparators(lines []string) []block {
	var (
		blocks []block
		cur    block
		buf    []string
	)
	flush := func() {
		cur.text = strings.Join(buf, "\n")
		if strings.TrimSpace(cur.text) != "" {
			blocks = append(blocks, cur)
		}
		cur, buf = block{}, nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case ruleRe.MatchString(trimmed), headerRe.MatchString(trimmed):
			flush()
		case labelRe.MatchString(trimmed):
			flush()
			cur = labeledBlock(trimmed)
			if cur.text != "" {
				buf = append(buf, cur.text)
			}
		default:
			buf = append(buf, line)
		}
	}
	flush()
	return blocks
}

// labeledBlock strips a leading role label from text, recording its role.
func labeledBlock(text string) block {
	text = strings.TrimSpace(text)
	m := labelRe.FindStringSubmatchIndex(text)
	if m == nil {
		return block{text: text}
	}
	role := chatshare.RoleAssistant
	if m[2] >= 0 {
		role = chatshare.RoleUser
	}
	return block{text: strings.TrimSpace(text[m[1]:]), role: role, labeled: true}
}
