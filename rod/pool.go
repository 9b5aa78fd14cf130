// Package rod renders client-side share pages in a pooled headless Chrome
// browser using go-rod.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/chatshare"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent leases.
const DefaultConcurrency = 2

// healthTimeout bounds the health check run before a browser is reused.
const healthTimeout = 2 * time.Second

// Pool shares one lazily launched browser between a bounded number of
// concurrent leases. A browser that fails a health check, or whose lease
// is released as failed, is torn down and relaunched on the next Acquire.
// At most one launch runs at a time.
//
// Pool is safe for concurrent use.
type Pool struct {
	sem     *semaphore.Weighted
	binPath string

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   atomic.Bool
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithConcurrency sets the number of leases that may be held at once.
// Defaults to 2 if not specified.
func WithConcurrency(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithBrowserPath uses the Chrome binary at path instead of letting the
// launcher find or download one.
func WithBrowserPath(path string) PoolOption {
	return func(p *Pool) {
		p.binPath = path
	}
}

// NewPool creates a Pool. No browser is launched until the first Acquire.
// Close must be called when the Pool is no longer needed.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{sem: semaphore.NewWeighted(DefaultConcurrency)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lease is a held permit together with the browser it was granted.
type Lease struct {
	pool    *Pool
	browser *rod.Browser
	once    sync.Once
}

// Browser returns the leased browser.
func (l *Lease) Browser() *rod.Browser {
	return l.browser
}

// Release returns the permit. When failed is true the leased browser is
// torn down, if it is still the pool's current one. Release is safe to
// call more than once.
func (l *Lease) Release(failed bool) {
	l.once.Do(func() {
		if failed {
			l.pool.discard(l.browser)
		}
		l.pool.sem.Release(1)
	})
}

// Acquire waits for a permit and returns a lease on a healthy browser,
// launching one if needed.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if p.closed.Load() {
		return nil, errClosed()
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	browser, err := p.current()
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	return &Lease{pool: p, browser: browser}, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closeBrowser()
}

// LauncherPID returns the process ID of the browser launcher, or 0 when
// no browser is running.
func (p *Pool) LauncherPID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.launcher == nil {
		return 0
	}
	return p.launcher.PID()
}

// current returns the live browser, rebuilding it when absent or unhealthy.
func (p *Pool) current() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return nil, errClosed()
	}

	if p.browser != nil {
		if _, err := p.browser.Timeout(healthTimeout).Version(); err == nil {
			return p.browser, nil
		}
		_ = p.closeBrowser()
	}

	if err := p.launchBrowser(); err != nil {
		return nil, err
	}
	return p.browser, nil
}

func (p *Pool) discard(b *rod.Browser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.browser == b {
		_ = p.closeBrowser()
	}
}

// launchBrowser starts a new browser instance with stability flags.
// Must be called with mu held.
func (p *Pool) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)
	if p.binPath != "" {
		lnchr = lnchr.Bin(p.binPath)
	}

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	p.browser = browser
	p.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (p *Pool) closeBrowser() error {
	var err error
	if p.browser != nil {
		err = p.browser.Close()
		p.browser = nil
	}
	if p.launcher != nil {
		p.launcher.Kill()
		p.launcher = nil
	}
	return err
}

func errClosed() error {
	return chatshare.Errorf(chatshare.ERENDERFAILED, "render pool is closed")
}
