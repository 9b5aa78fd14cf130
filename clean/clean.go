// Package clean turns HTML fragments into normalized plain text and removes
// known UI artefacts from share pages.
package clean

import (
	"errors"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/fwojciec/chatshare"
	"gopkg.in/yaml.v3"
)

// NoisePattern is a regular expression whose matches are replaced with
// Replace during normalization. Patterns use RE2 syntax.
type NoisePattern struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

// DefaultNoisePatterns returns the built-in UI artefact patterns.
// Line patterns remove the whole line including its newline so that the
// surrounding lines are left untouched.
func DefaultNoisePatterns() []NoisePattern {
	return []NoisePattern{
		// Speaker labels rendered for screen readers; the content that
		// follows on the same line is kept.
		{Pattern: `(?im)^[ \t]*(?:(?:ChatGPT|You|你)[ \t]*(?:说|said)[ \t]*[:：][ \t]*)+`},
		{Pattern: `(?im)^[ \t]*复制链接.*(?:\n|$)`},
		{Pattern: `(?im)^[ \t]*Copy link.*(?:\n|$)`},
		{Pattern: `(?im)^[ \t]*(?:Open in ChatGPT|Open in app|在 ?ChatGPT ?中打开).*(?:\n|$)`},
		{Pattern: `(?im)^[ \t]*(?:Use|使用) GPT-.*(?:\n|$)`},
		{Pattern: `(?im)^[ \t]*(?:Regenerate(?: response)?|重新生成)[ \t]*(?:\n|$)`},
		{Pattern: `(?im)^[ \t]*(?:模型|Model)[ \t]*[:：].*(?:\n|$)`},
	}
}

// LoadNoisePatterns reads a YAML list of noise patterns:
//
//	- pattern: '(?im)^Share this chat.*$'
//	  replace: ''
func LoadNoisePatterns(r io.Reader) ([]NoisePattern, error) {
	var patterns []NoisePattern
	if err := yaml.NewDecoder(r).Decode(&patterns); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, chatshare.Errorf(chatshare.EINVALID, "invalid noise pattern file: %v", err)
	}
	return patterns, nil
}

var (
	blockRe    = regexp.MustCompile(`(?is)<(script|style|noscript)\b[^>]*>.*?</(?:script|style|noscript)\s*>|<!--.*?-->`)
	breakRe    = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|div|li|h[1-6]|pre|tr|blockquote|section|article|table|ul|ol)\s*>`)
	tagRe      = regexp.MustCompile(`<[^>]+>`)
	hspaceRe   = regexp.MustCompile(`[\t\f\v \x{00a0}\x{202f}\x{3000}]+`)
	edgeRe     = regexp.MustCompile(` *\n *`)
	blanksRe   = regexp.MustCompile(`\n{3,}`)
	newlines   = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	zeroWidths = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "")
)

type noiseRule struct {
	re      *regexp.Regexp
	replace string
}

// Normalizer converts markup fragments to plain text.
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	noise []noiseRule
}

// NewNormalizer compiles the given noise patterns in order.
func NewNormalizer(patterns []NoisePattern) (*Normalizer, error) {
	n := &Normalizer{noise: make([]noiseRule, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, chatshare.Errorf(chatshare.EINVALID, "invalid noise pattern %q: %v", p.Pattern, err)
		}
		n.noise = append(n.noise, noiseRule{re: re, replace: p.Replace})
	}
	return n, nil
}

var defaultNormalizer, _ = NewNormalizer(DefaultNoisePatterns())

// Default returns a Normalizer using DefaultNoisePatterns.
func Default() *Normalizer {
	return defaultNormalizer
}

// Normalize strips scripts, styles and tags from a markup fragment, decodes
// entities, removes noise and canonicalizes whitespace.
// Clean is idempotent. Normalize is idempotent only on output free of
// '<': decoded entities such as &lt;div&gt; become markup that a second
// pass strips.
func (n *Normalizer) Normalize(fragment string) string {
	s := StripBlocks(fragment)
	s = breakRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return n.Clean(s)
}

// Clean canonicalizes whitespace and removes noise from plain text.
// Cleaning its own output returns it unchanged.
func (n *Normalizer) Clean(text string) string {
	s := newlines.Replace(text)
	s = hspaceRe.ReplaceAllString(s, " ")
	for _, rule := range n.noise {
		s = rule.re.ReplaceAllString(s, rule.replace)
	}
	s = hspaceRe.ReplaceAllString(s, " ")
	s = edgeRe.ReplaceAllString(s, "\n")
	s = blanksRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// StripBlocks removes script, style and noscript elements and HTML comments.
func StripBlocks(markup string) string {
	return blockRe.ReplaceAllString(markup, "")
}

// StripZeroWidth removes zero-width characters.
func StripZeroWidth(s string) string {
	return zeroWidths.Replace(s)
}

// HasPrefixFold reports whether s begins with any of prefixes,
// ignoring case.
func HasPrefixFold(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return true
		}
	}
	return false
}
