package chatshare

import "context"

// Strategy converts a raw document into conversation turns using one
// representation of the conversation (role attributes, DOM containers,
// embedded JSON, or plain text).
type Strategy interface {
	// ExtractTurns returns turns in document order.
	// An empty result means the representation was not found.
	ExtractTurns(doc string) ([]Turn, error)

	// Name returns the strategy's identifier (e.g., "anchor", "json").
	Name() string
}

// TextExtractor extracts the main readable text of an HTML page,
// removing navigation and other boilerplate.
type TextExtractor interface {
	MainText(html string) (string, error)
}

// ConversationExtractor is the core extraction service.
type ConversationExtractor interface {
	// ExtractFromURL fetches a share page and extracts its conversation.
	// Fetch errors are returned as is. An empty transcript with a nil
	// error means no conversation was detected.
	ExtractFromURL(ctx context.Context, url string) (*Transcript, error)

	// ExtractFromDocument extracts a conversation from markup or plain
	// text supplied directly by the caller.
	ExtractFromDocument(ctx context.Context, doc string) (*Transcript, error)
}
