package http

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// maxIdleBuckets is the bucket count above which idle buckets are swept.
const maxIdleBuckets = 1024

// HostLimiter spaces out fetches to the same site. Hosts share a token
// bucket per registrable domain, so chatgpt.com and cdn.chatgpt.com are
// limited together while different sites proceed concurrently.
// HostLimiter is safe for concurrent use.
type HostLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// LimiterOption configures a HostLimiter.
type LimiterOption func(*HostLimiter)

// WithBurst lets n requests to a site go out back to back before spacing
// applies. Defaults to 1.
func WithBurst(n int) LimiterOption {
	return func(h *HostLimiter) {
		if n > 0 {
			h.burst = n
		}
	}
}

// NewHostLimiter creates a HostLimiter allowing rps requests per second
// per site.
func NewHostLimiter(rps float64, opts ...LimiterOption) *HostLimiter {
	h := &HostLimiter{
		limit:   rate.Limit(rps),
		burst:   1,
		buckets: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Wait blocks until a request to host is allowed or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	return h.bucket(SiteKey(host)).Wait(ctx)
}

// Len returns the number of buckets currently tracked.
func (h *HostLimiter) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buckets)
}

func (h *HostLimiter) bucket(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.buckets[key]; ok {
		return b
	}
	if len(h.buckets) >= maxIdleBuckets {
		h.sweep()
	}
	b := rate.NewLimiter(h.limit, h.burst)
	h.buckets[key] = b
	return b
}

// sweep drops buckets that have refilled completely.
// Must be called with mu held.
func (h *HostLimiter) sweep() {
	now := time.Now()
	for key, b := range h.buckets {
		if b.TokensAt(now) >= float64(h.burst) {
			delete(h.buckets, key)
		}
	}
}

// SiteKey returns the rate-limit key for host: its registrable domain, or
// the normalized host for IP literals and names without a public suffix
// match.
func SiteKey(host string) string {
	host = normalizeHost(host)
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	if site, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return site
	}
	return host
}
