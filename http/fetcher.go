// Package http provides an SSRF-safe implementation of chatshare.Fetcher
// for downloading share pages over plain HTTP.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/chatshare"
)

// Fetch defaults, matching the original TIMEOUT and MAX_BYTES settings.
const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultMaxBytes     = 6_000_000
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Ensure Fetcher implements chatshare.Fetcher at compile time.
var _ chatshare.Fetcher = (*Fetcher)(nil)

// Resolver resolves hostnames to addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Fetcher retrieves share pages while refusing loopback, private,
// link-local and reserved targets. Every redirect hop is validated again,
// and the default transport dials only addresses it has re-checked.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBytes     int64
	maxRedirects int
	userAgent    string
	allowed      map[string]struct{}
	resolver     Resolver
	transport    http.RoundTripper
	limiter      *HostLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the overall timeout for a fetch, including reading the
// body. Defaults to DefaultFetchTimeout (15s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBytes sets the response size ceiling.
// Defaults to DefaultMaxBytes if not specified.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithMaxRedirects caps redirect following.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithUserAgent overrides the browser User-Agent sent upstream.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithAllowedHosts restricts fetching to the given hosts. A host is allowed
// when it, or one of its parent domains down to the registrable domain,
// equals an entry. An empty list allows any public host.
func WithAllowedHosts(hosts ...string) Option {
	return func(f *Fetcher) {
		for _, h := range hosts {
			h = normalizeHost(h)
			if h != "" {
				f.allowed[h] = struct{}{}
			}
		}
	}
}

// WithResolver sets the resolver used to validate hostnames.
// Defaults to net.DefaultResolver.
func WithResolver(r Resolver) Option {
	return func(f *Fetcher) {
		f.resolver = r
	}
}

// WithTransport replaces the default SSRF-checking transport.
// The URL and redirect checks still apply; the connect-time address check
// does not.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// WithRateLimit limits requests per second to each upstream host.
// Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = NewHostLimiter(rps)
		}
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		maxBytes:     DefaultMaxBytes,
		maxRedirects: DefaultMaxRedirects,
		userAgent:    DefaultUserAgent,
		allowed:      make(map[string]struct{}),
		resolver:     net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := f.transport
	if transport == nil {
		transport = newSafeTransport(f.resolver)
	}
	f.client = &http.Client{
		Transport:     transport,
		CheckRedirect: f.checkRedirect,
	}

	return f
}

// Fetch validates rawURL, downloads it and decodes the body to text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*chatshare.FetchResult, error) {
	u, err := f.parse(rawURL)
	if err != nil {
		return nil, err
	}
	if err := f.check(ctx, u); err != nil {
		return nil, err
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, chatshare.Errorf(chatshare.EFETCHFAILED, "fetching %s: %v", u.Redacted(), err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, chatshare.Errorf(chatshare.EINVALID, "invalid URL: %v", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.transportError(ctx, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 399 {
		return nil, chatshare.UpstreamError(resp.StatusCode, u.Redacted())
	}
	if resp.ContentLength > f.maxBytes {
		return nil, f.tooLarge(u)
	}

	// Read one byte past the limit so an oversized body is detected
	// without buffering more than that.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, f.transportError(ctx, u, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, f.tooLarge(u)
	}
	if len(body) == 0 {
		return nil, &chatshare.Error{
			Code:    chatshare.EUPSTREAM,
			Message: fmt.Sprintf("no response body from %s", u.Redacted()),
			Status:  resp.StatusCode,
		}
	}

	contentType := resp.Header.Get("Content-Type")
	text, encoding, degraded := Decode(body, contentType)

	return &chatshare.FetchResult{
		FinalURL:         resp.Request.URL.String(),
		StatusCode:       resp.StatusCode,
		Body:             body,
		DeclaredEncoding: declaredCharset(contentType),
		Encoding:         encoding,
		Text:             text,
		Degraded:         degraded,
	}, nil
}

// Close releases idle connections held by the underlying client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *Fetcher) parse(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, chatshare.Errorf(chatshare.EINVALID, "url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, chatshare.Errorf(chatshare.EINVALID, "invalid URL %q", rawURL)
	}
	return u, nil
}

// check validates scheme, address ranges and the allowed-host list.
// Address checks come first so that a private target is reported as
// ESSRFBLOCKED whatever the allowed-host configuration says.
func (f *Fetcher) check(ctx context.Context, u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return chatshare.Errorf(chatshare.EINVALIDSCHEME, "only http and https URLs are supported, got %q", u.Scheme)
	}

	host := normalizeHost(u.Hostname())
	if host == "" {
		return chatshare.Errorf(chatshare.EINVALID, "url %q has no host", u.Redacted())
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if IsBlockedAddr(addr) {
			return blocked(host, addr)
		}
		return f.checkAllowed(host)
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") || isNumericHost(host) {
		return chatshare.Errorf(chatshare.ESSRFBLOCKED, "access to %s is disallowed", host)
	}
	if err := f.checkAllowed(host); err != nil {
		return err
	}

	addrs, err := f.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return chatshare.Errorf(chatshare.EFETCHFAILED, "resolving %s: %v", host, err)
	}
	if len(addrs) == 0 {
		return chatshare.Errorf(chatshare.EFETCHFAILED, "resolving %s: no addresses", host)
	}
	for _, addr := range addrs {
		if IsBlockedAddr(addr) {
			return blocked(host, addr)
		}
	}
	return nil
}

func (f *Fetcher) checkAllowed(host string) error {
	if !HostAllowed(host, f.allowed) {
		return chatshare.Errorf(chatshare.EHOSTNOTALLOWED, "host %q is not allowed", host)
	}
	return nil
}

func (f *Fetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= f.maxRedirects {
		return chatshare.Errorf(chatshare.EFETCHFAILED, "stopped after %d redirects", len(via))
	}
	return f.check(req.Context(), req.URL)
}

func (f *Fetcher) tooLarge(u *url.URL) error {
	return chatshare.Errorf(chatshare.ETOOLARGE, "response from %s exceeds %d bytes", u.Redacted(), f.maxBytes)
}

// transportError maps client failures to application errors, keeping
// policy errors raised during redirects or dialing intact.
func (f *Fetcher) transportError(ctx context.Context, u *url.URL, err error) error {
	var e *chatshare.Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return chatshare.Errorf(chatshare.EFETCHFAILED, "fetching %s: timed out after %s", u.Redacted(), f.timeout)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return chatshare.Errorf(chatshare.EFETCHFAILED, "fetching %s: %v", u.Redacted(), err)
}

func blocked(host string, addr netip.Addr) error {
	if host == addr.String() {
		return chatshare.Errorf(chatshare.ESSRFBLOCKED, "access to %s is disallowed", addr)
	}
	return chatshare.Errorf(chatshare.ESSRFBLOCKED, "host %s resolves to disallowed address %s", host, addr)
}

// newSafeTransport returns a transport that connects directly (no proxy)
// and refuses to dial blocked addresses.
func newSafeTransport(resolver Resolver) *http.Transport {
	d := &safeDialer{
		resolver: resolver,
		dialer: &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.Proxy = nil
	t.DialContext = d.DialContext
	t.MaxResponseHeaderBytes = 1 << 20
	return t
}

// safeDialer resolves the host itself and dials only the addresses it
// validated, so a DNS answer that changes between the URL check and the
// connect cannot reach a blocked range.
type safeDialer struct {
	resolver Resolver
	dialer   *net.Dialer
}

func (d *safeDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, chatshare.Errorf(chatshare.ESSRFBLOCKED, "refusing to dial %s", address)
	}
	host = normalizeHost(host)

	var addrs []netip.Addr
	if addr, err := netip.ParseAddr(host); err == nil {
		addrs = []netip.Addr{addr}
	} else {
		addrs, err = d.resolver.LookupNetIP(ctx, "ip", host)
		if err != nil {
			return nil, chatshare.Errorf(chatshare.EFETCHFAILED, "resolving %s: %v", host, err)
		}
	}
	if len(addrs) == 0 {
		return nil, chatshare.Errorf(chatshare.EFETCHFAILED, "resolving %s: no addresses", host)
	}
	for _, addr := range addrs {
		if IsBlockedAddr(addr) {
			return nil, blocked(host, addr)
		}
	}

	var firstErr error
	for _, addr := range addrs {
		conn, err := d.dialer.DialContext(ctx, network, net.JoinHostPort(addr.Unmap().String(), port))
		if err == nil {
			return conn, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func declaredCharset(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}
