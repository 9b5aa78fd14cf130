package rod

import (
	"context"
	"time"

	"github.com/fwojciec/chatshare"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRenderTimeout bounds a single render attempt.
const DefaultRenderTimeout = 30 * time.Second

// Ensure Renderer implements chatshare.Renderer at compile time.
var _ chatshare.Renderer = (*Renderer)(nil)

// Renderer returns the DOM of a page after client-side scripts have run.
// A failed attempt tears down the browser and is retried once on a fresh
// one. Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	pool    *Pool
	timeout time.Duration
	settle  time.Duration
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRenderTimeout sets the timeout for each render attempt.
// Defaults to DefaultRenderTimeout (30s) if not specified.
func WithRenderTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithSettleDelay waits d after the load event before reading the DOM,
// giving hydration scripts time to populate the page.
func WithSettleDelay(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.settle = d
	}
}

// NewRenderer creates a Renderer backed by pool. Closing the Renderer
// closes the pool.
func NewRenderer(pool *Pool, opts ...RendererOption) *Renderer {
	r := &Renderer{pool: pool, timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render navigates to url and returns the rendered HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	html, err := r.attempt(ctx, url)
	if err == nil {
		return html, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	html, err = r.attempt(ctx, url)
	if err == nil {
		return html, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", chatshare.Errorf(chatshare.ERENDERFAILED, "rendering %s: %v", url, err)
}

// Close releases browser resources.
func (r *Renderer) Close() error {
	return r.pool.Close()
}

func (r *Renderer) attempt(ctx context.Context, url string) (string, error) {
	lease, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	html, err := r.render(ctx, lease.Browser(), url)
	lease.Release(err != nil)
	return html, err
}

func (r *Renderer) render(ctx context.Context, browser *rod.Browser, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if r.settle > 0 {
		select {
		case <-time.After(r.settle):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return page.HTML()
}
