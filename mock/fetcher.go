package mock

import (
	"context"

	"github.com/fwojciec/chatshare"
)

var _ chatshare.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of chatshare.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*chatshare.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*chatshare.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

var _ chatshare.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of chatshare.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (string, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}
