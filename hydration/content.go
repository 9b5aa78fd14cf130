package hydration

import "strings"

// ContentKind identifies which shape a message content field had.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentParts
	ContentText
	ContentRaw
)

// Content is the coalesced body of a message field. Payloads carry the
// body as an object with a parts list, an object with a text string, a
// bare list, or a bare string.
type Content struct {
	Kind  ContentKind
	Parts []string
	Text  string
}

// Coalesce converts a content-like field into Content.
func Coalesce(v *Value) Content {
	if v == nil {
		return Content{}
	}
	switch v.Kind {
	case Object:
		if parts := v.Get("parts"); parts != nil && parts.Kind == Array {
			return Content{Kind: ContentParts, Parts: partsOf(parts)}
		}
		if text, ok := v.Get("text").StringValue(); ok {
			return Content{Kind: ContentText, Text: text}
		}
	case Array:
		return Content{Kind: ContentParts, Parts: partsOf(v)}
	case String:
		return Content{Kind: ContentRaw, Text: v.Str}
	}
	return Content{}
}

// String returns the content text. Parts are joined by a newline.
func (c Content) String() string {
	if c.Kind == ContentParts {
		return strings.Join(c.Parts, "\n")
	}
	return c.Text
}

// partsOf collects string entries and the text of object entries,
// skipping nulls and anything else.
func partsOf(list *Value) []string {
	var parts []string
	for _, item := range list.Items {
		switch item.Kind {
		case String:
			if strings.TrimSpace(item.Str) != "" {
				parts = append(parts, item.Str)
			}
		case Object:
			if text, ok := item.Get("text").StringValue(); ok && strings.TrimSpace(text) != "" {
				parts = append(parts, text)
			}
		}
	}
	return parts
}
