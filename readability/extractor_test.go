package readability_test

import (
	"testing"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_MainText(t *testing.T) {
	t.Parallel()

	t.Run("extracts article text", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Shared conversation</title></head>
<body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<article>
<h1>Shared conversation</h1>
<p>How do I reverse a linked list in Go without allocating a new list for the result? I want to do it in place.</p>
<p>Walk the list once and keep three pointers: prev, current and next. At each step point current.Next at prev, then advance until current is nil.</p>
<p>Yes. Swap Next and Prev on every node as you walk, then return the last node you visited as the new head.</p>
</article>
<footer>Terms of use</footer>
</body>
</html>`

		ext := readability.NewExtractor()
		text, err := ext.MainText(html)

		require.NoError(t, err)
		assert.Contains(t, text, "reverse a linked list")
		assert.Contains(t, text, "three pointers")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		ext := readability.NewExtractor()
		_, err := ext.MainText("")

		require.Error(t, err)
		assert.Equal(t, chatshare.EINVALID, chatshare.ErrorCode(err))
	})
}
