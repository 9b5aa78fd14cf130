package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatshare"
)

// Ensure Detector implements chatshare.PlatformDetector at compile time.
var _ chatshare.PlatformDetector = (*Detector)(nil)

// Detector identifies chat platforms from share page HTML.
// It checks Open Graph metadata first, then platform-specific attributes
// and custom elements.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified platform.
// Returns PlatformUnknown if the platform cannot be determined.
func (d *Detector) Detect(html string) chatshare.Platform {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return chatshare.PlatformUnknown
	}

	if p := d.detectFromMeta(doc); p != chatshare.PlatformUnknown {
		return p
	}

	// ChatGPT tags every turn with its author role
	if d.hasSelector(doc, "[data-message-author-role]") ||
		d.hasSelector(doc, "[data-testid^='conversation-turn']") {
		return chatshare.PlatformChatGPT
	}

	// Claude marks user turns by test id and assistant turns by font class
	if d.hasSelector(doc, "[data-testid='user-message']") ||
		d.hasSelector(doc, ".font-claude-message") ||
		d.hasSelector(doc, ".font-claude-response") {
		return chatshare.PlatformClaude
	}

	// Gemini renders turns as Angular custom elements
	if d.hasSelector(doc, "user-query") ||
		d.hasSelector(doc, "model-response") ||
		d.hasSelector(doc, "message-content") {
		return chatshare.PlatformGemini
	}

	return chatshare.PlatformUnknown
}

// detectFromMeta checks og:site_name and the canonical link.
func (d *Detector) detectFromMeta(doc *goquery.Document) chatshare.Platform {
	var hints []string
	doc.Find("meta[property='og:site_name'], meta[name='application-name']").Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			hints = append(hints, strings.ToLower(content))
		}
	})
	doc.Find("link[rel='canonical'], meta[property='og:url']").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("href"); ok {
			hints = append(hints, strings.ToLower(v))
		}
		if v, ok := s.Attr("content"); ok {
			hints = append(hints, strings.ToLower(v))
		}
	})

	for _, h := range hints {
		switch {
		case strings.Contains(h, "chatgpt"), strings.Contains(h, "chat.openai.com"):
			return chatshare.PlatformChatGPT
		case strings.Contains(h, "claude"):
			return chatshare.PlatformClaude
		case strings.Contains(h, "gemini"):
			return chatshare.PlatformGemini
		case strings.Contains(h, "grok"):
			return chatshare.PlatformGrok
		}
	}
	return chatshare.PlatformUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
