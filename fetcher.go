package chatshare

import "context"

// FetchResult holds a fetched and decoded share page.
type FetchResult struct {
	// FinalURL is the URL after redirects.
	FinalURL   string
	StatusCode int

	// Body is the raw response body, never longer than the fetcher's limit.
	Body []byte

	// DeclaredEncoding is the charset from the Content-Type header, if any.
	DeclaredEncoding string

	// Encoding is the charset actually used to decode Body.
	Encoding string

	// Text is Body decoded to UTF-8.
	Text string

	// Degraded is true when decoding fell back to lossy UTF-8.
	Degraded bool
}

// Fetcher retrieves share pages over HTTP.
// Implementations must refuse private network targets.
type Fetcher interface {
	// Fetch validates the URL, downloads the page within the configured
	// byte and time limits, and decodes it to text.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Renderer renders client-hydrated pages in a browser.
type Renderer interface {
	// Render navigates to the URL, waits for JavaScript to render,
	// and returns the resulting document HTML.
	Render(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Renderer is no longer needed.
	Close() error
}
