// Package goquery implements DOM-based conversation extraction and
// platform detection using goquery.
package goquery

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/clean"
	"golang.org/x/net/html"
)

// DefaultChromePrefixes are UI labels that are sometimes selected as
// message containers. Text starting with one of them is dropped.
var DefaultChromePrefixes = []string{
	"copy link",
	"复制链接",
	"preview",
	"open in app",
	"open in chatgpt",
	"sign in",
	"log in",
	"登录",
}

// Class-token segments that indicate a role, checked assistant first.
// Tokens are split on '-', '_' and ':' so utilities such as bottom-0 or
// prompt-lg:mt-2 only match on whole words.
var (
	assistantHints = []string{"assistant", "agent", "bot", "model", "gpt", "chatgpt", "claude", "gemini", "response"}
	userHints      = []string{"user", "human", "query", "prompt"}
)

// contentSelector matches the rich-text body inside a message container.
const contentSelector = ".whitespace-pre-wrap, .markdown"

// Ensure NodeStrategy implements chatshare.Strategy at compile time.
var _ chatshare.Strategy = (*NodeStrategy)(nil)

// NodeStrategy selects message containers from a parsed document tree.
type NodeStrategy struct {
	normalizer *clean.Normalizer
	converter  chatshare.Converter
	chrome     []string
}

// Option configures a NodeStrategy.
type Option func(*NodeStrategy)

// WithNormalizer sets the text normalizer. Defaults to clean.Default().
func WithNormalizer(n *clean.Normalizer) Option {
	return func(s *NodeStrategy) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithConverter converts message markup to Markdown before normalizing,
// preserving code blocks and lists.
func WithConverter(c chatshare.Converter) Option {
	return func(s *NodeStrategy) {
		s.converter = c
	}
}

// WithChromePrefixes replaces DefaultChromePrefixes.
func WithChromePrefixes(prefixes ...string) Option {
	return func(s *NodeStrategy) {
		s.chrome = prefixes
	}
}

// NewNodeStrategy creates a NodeStrategy.
func NewNodeStrategy(opts ...Option) *NodeStrategy {
	s := &NodeStrategy{
		normalizer: clean.Default(),
		chrome:     DefaultChromePrefixes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "nodes".
func (s *NodeStrategy) Name() string { return "nodes" }

// ExtractTurns parses doc and returns one turn per message container.
func (s *NodeStrategy) ExtractTurns(raw string) ([]chatshare.Turn, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, chatshare.Errorf(chatshare.EINVALID, "failed to parse HTML: %v", err)
	}

	var turns []chatshare.Turn
	selectNodes(doc).Each(func(_ int, sel *goquery.Selection) {
		text := s.textOf(sel)
		if text == "" || clean.HasPrefixFold(text, s.chrome) {
			return
		}
		role, signal := roleOf(sel)
		if n := len(turns); n > 0 && turns[n-1].Role == role && turns[n-1].Text == text {
			return
		}
		turns = append(turns, chatshare.Turn{Role: role, Text: text, Signal: signal})
	})
	return turns, nil
}

// selectNodes returns the outermost nodes of the first selector in the
// chain that matches anything.
func selectNodes(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"[data-message-author-role]", "[data-message-id]"} {
		if found := outermost(doc.Find(selector)); found.Length() > 0 {
			return found
		}
	}
	return outermost(doc.Find("[data-testid]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		id, _ := sel.Attr("data-testid")
		return strings.Contains(strings.ToLower(id), "message")
	}))
}

// outermost drops nodes that have an ancestor in the same selection.
func outermost(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() < 2 {
		return sel
	}
	set := make(map[*html.Node]struct{}, sel.Length())
	for _, n := range sel.Nodes {
		set[n] = struct{}{}
	}
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		for p := s.Get(0).Parent; p != nil; p = p.Parent {
			if _, ok := set[p]; ok {
				return false
			}
		}
		return true
	})
}

func roleOf(sel *goquery.Selection) (chatshare.Role, chatshare.RoleSignal) {
	if v, ok := sel.Attr("data-message-author-role"); ok {
		return chatshare.ParseRole(strings.ToLower(strings.TrimSpace(v))), chatshare.SignalAttribute
	}

	class, _ := sel.Attr("class")
	testID, _ := sel.Attr("data-testid")
	tokens := strings.Fields(strings.ToLower(class + " " + testID))
	if containsAny(tokens, assistantHints) {
		return chatshare.RoleAssistant, chatshare.SignalClassName
	}
	if containsAny(tokens, userHints) {
		return chatshare.RoleUser, chatshare.SignalClassName
	}
	return chatshare.RoleUser, chatshare.SignalDefault
}

func containsAny(tokens, hints []string) bool {
	for _, tok := range tokens {
		for _, seg := range strings.FieldsFunc(tok, isSegmentSep) {
			if slices.Contains(hints, seg) {
				return true
			}
		}
	}
	return false
}

func isSegmentSep(r rune) bool {
	return r == '-' || r == '_' || r == ':'
}

// textOf renders the message body of a container: its rich-text
// sub-nodes joined by a blank line, or the whole container.
func (s *NodeStrategy) textOf(sel *goquery.Selection) string {
	parts := outermost(sel.Find(contentSelector))
	if parts.Length() == 0 {
		parts = sel
	}

	var texts []string
	parts.Each(func(_ int, part *goquery.Selection) {
		markup, err := part.Html()
		if err != nil {
			return
		}
		if text := s.render(clean.StripZeroWidth(markup)); text != "" {
			texts = append(texts, text)
		}
	})
	return strings.Join(texts, "\n\n")
}

func (s *NodeStrategy) render(markup string) string {
	if s.converter != nil {
		if md, err := s.converter.Convert(markup); err == nil {
			return s.normalizer.Clean(clean.StripZeroWidth(md))
		}
	}
	return s.normalizer.Normalize(markup)
}
