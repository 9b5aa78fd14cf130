//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/chatshare/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hydratedPage = `<!DOCTYPE html>
<html><head><title>share</title></head>
<body><div id="root"></div>
<script>
document.getElementById("root").innerHTML =
  '<div data-message-author-role="user">Hello</div>' +
  '<div data-message-author-role="assistant">Hi there</div>';
</script>
</body></html>`

const lateHydratedPage = `<!DOCTYPE html>
<html><head><title>share</title></head>
<body><div id="root"></div>
<script>
setTimeout(function () {
  document.getElementById("root").innerHTML =
    '<div data-message-author-role="user">Hello</div>' +
    '<div data-message-author-role="assistant">Hi there</div>';
}, 300);
</script>
</body></html>`

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(hydratedPage))
	}))
	defer srv.Close()

	t.Run("returns DOM after scripts run", func(t *testing.T) {
		t.Parallel()

		renderer := rod.NewRenderer(rod.NewPool())
		defer renderer.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		html, err := renderer.Render(ctx, srv.URL)
		require.NoError(t, err)
		assert.Contains(t, html, `data-message-author-role="assistant"`)
	})

	t.Run("concurrent renders share the pool", func(t *testing.T) {
		t.Parallel()

		renderer := rod.NewRenderer(rod.NewPool(rod.WithConcurrency(2)))
		defer renderer.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = renderer.Render(ctx, srv.URL)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("settle delay waits for late hydration", func(t *testing.T) {
		t.Parallel()

		late := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(lateHydratedPage))
		}))
		defer late.Close()

		renderer := rod.NewRenderer(rod.NewPool(),
			rod.WithRenderTimeout(20*time.Second),
			rod.WithSettleDelay(time.Second),
		)
		defer renderer.Close()

		html, err := renderer.Render(context.Background(), late.URL)
		require.NoError(t, err)
		assert.Contains(t, html, `data-message-author-role="assistant"`)
	})

	t.Run("launches the browser at the configured path", func(t *testing.T) {
		t.Parallel()

		bin, ok := launcher.LookPath()
		if !ok {
			t.Skip("no local browser")
		}

		renderer := rod.NewRenderer(rod.NewPool(rod.WithBrowserPath(bin)))
		defer renderer.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		html, err := renderer.Render(ctx, srv.URL)
		require.NoError(t, err)
		assert.Contains(t, html, `data-message-author-role="user"`)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer hang.Close()

		renderer := rod.NewRenderer(rod.NewPool())
		defer renderer.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err := renderer.Render(ctx, hang.URL)
		require.Error(t, err)
	})
}

func TestPool_RebuildsAfterFailedLease(t *testing.T) {
	t.Parallel()

	pool := rod.NewPool(rod.WithConcurrency(1))
	defer pool.Close()

	ctx := context.Background()

	lease, err := pool.Acquire(ctx)
	require.NoError(t, err)
	first := lease.Browser()
	firstPID := pool.LauncherPID()
	require.NotZero(t, firstPID)

	lease.Release(true)
	lease.Release(true)
	assert.Zero(t, pool.LauncherPID(), "failed lease should tear the browser down")

	lease, err = pool.Acquire(ctx)
	require.NoError(t, err)
	defer lease.Release(false)

	assert.NotSame(t, first, lease.Browser())
	assert.NotEqual(t, firstPID, pool.LauncherPID())
}

func TestPool_ReusesHealthyBrowser(t *testing.T) {
	t.Parallel()

	pool := rod.NewPool()
	defer pool.Close()

	lease, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	first := lease.Browser()
	lease.Release(false)

	lease, err = pool.Acquire(context.Background())
	require.NoError(t, err)
	defer lease.Release(false)

	assert.Same(t, first, lease.Browser())
}
