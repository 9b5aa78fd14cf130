package http_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	chatsharehttp "github.com/fwojciec/chatshare/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter(t *testing.T) {
	t.Parallel()

	t.Run("allows immediate request when under limit", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(10)

		start := time.Now()
		err := limiter.Wait(context.Background(), "chatgpt.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first request should be immediate")
	})

	t.Run("rate limits requests to same host", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(10) // 100ms between requests

		require.NoError(t, limiter.Wait(context.Background(), "chatgpt.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "chatgpt.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "should wait for rate limit")
	})

	t.Run("different hosts have independent limits", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "chatgpt.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "claude.ai")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond)
	})

	t.Run("subdomains share the site bucket", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(10)

		require.NoError(t, limiter.Wait(context.Background(), "chatgpt.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "CDN.ChatGPT.com.")
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
		assert.Equal(t, 1, limiter.Len())
	})

	t.Run("burst allows back to back requests", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(1, chatsharehttp.WithBurst(3))

		start := time.Now()
		for range 3 {
			require.NoError(t, limiter.Wait(context.Background(), "claude.ai"))
		}

		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("sweeps refilled buckets once many sites are tracked", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(1000)
		for i := range 1500 {
			require.NoError(t, limiter.Wait(context.Background(), fmt.Sprintf("site%d.example.com", i)))
		}
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background(), "late.example.org"))

		assert.Less(t, limiter.Len(), 1500)
	})

	t.Run("returns error when context is canceled", func(t *testing.T) {
		t.Parallel()

		limiter := chatsharehttp.NewHostLimiter(0.1) // one request per 10s

		require.NoError(t, limiter.Wait(context.Background(), "chatgpt.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "chatgpt.com")
		require.Error(t, err)
	})
}

func TestSiteKey(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		host string
		want string
	}{
		{"chatgpt.com", "chatgpt.com"},
		{"cdn.oaistatic.chatgpt.com", "chatgpt.com"},
		{"Gemini.Google.com.", "google.com"},
		{"share.example.co.uk", "example.co.uk"},
		{"93.184.216.34", "93.184.216.34"},
		{"localhost", "localhost"},
	} {
		t.Run(tc.host, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, chatsharehttp.SiteKey(tc.host))
		})
	}
}
