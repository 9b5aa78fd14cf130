package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/mock"
	csslog "github.com/fwojciec/chatshare/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStrategy_ExtractTurns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	inner := &mock.Strategy{
		ExtractTurnsFn: func(doc string) ([]chatshare.Turn, error) {
			return []chatshare.Turn{{Role: chatshare.RoleUser, Text: "hi"}}, nil
		},
		NameFn: func() string { return "anchor" },
	}

	strategy := csslog.NewLoggingStrategy(inner, logger)
	turns, err := strategy.ExtractTurns("<html></html>")

	require.NoError(t, err)
	assert.Len(t, turns, 1)
	assert.Equal(t, "anchor", strategy.Name())
	output := buf.String()
	assert.Contains(t, output, "strategy=anchor")
	assert.Contains(t, output, "count=1")
	assert.Contains(t, output, "bytes=13")
}

func TestLoggingDetector_Detect(t *testing.T) {
	t.Parallel()

	t.Run("logs detected platform", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PlatformDetector{
			DetectFn: func(string) chatshare.Platform { return chatshare.PlatformGemini },
		}

		platform := csslog.NewLoggingDetector(inner, logger).Detect("<html></html>")

		assert.Equal(t, chatshare.PlatformGemini, platform)
		assert.Contains(t, buf.String(), "platform=gemini")
	})

	t.Run("logs unknown platform", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PlatformDetector{
			DetectFn: func(string) chatshare.Platform { return chatshare.PlatformUnknown },
		}

		csslog.NewLoggingDetector(inner, logger).Detect("<html></html>")

		assert.Contains(t, buf.String(), "platform=unknown")
	})
}
