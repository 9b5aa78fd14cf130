package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/chatshare"
)

// Ensure LoggingStrategy implements chatshare.Strategy.
var _ chatshare.Strategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps a Strategy with debug logging.
type LoggingStrategy struct {
	next   chatshare.Strategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next chatshare.Strategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Name delegates to the wrapped strategy.
func (s *LoggingStrategy) Name() string {
	return s.next.Name()
}

// ExtractTurns delegates to the wrapped strategy and logs the turn count.
func (s *LoggingStrategy) ExtractTurns(doc string) (turns []chatshare.Turn, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("strategy",
			"strategy", s.next.Name(),
			"bytes", len(doc),
			"count", len(turns),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ExtractTurns(doc)
}

// Ensure LoggingDetector implements chatshare.PlatformDetector.
var _ chatshare.PlatformDetector = (*LoggingDetector)(nil)

// LoggingDetector wraps a PlatformDetector with debug logging.
type LoggingDetector struct {
	next   chatshare.PlatformDetector
	logger *slog.Logger
}

// NewLoggingDetector creates a new LoggingDetector.
func NewLoggingDetector(next chatshare.PlatformDetector, logger *slog.Logger) *LoggingDetector {
	return &LoggingDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the result.
func (d *LoggingDetector) Detect(html string) chatshare.Platform {
	platform := d.next.Detect(html)
	name := string(platform)
	if name == "" {
		name = "unknown"
	}
	d.logger.Debug("platform detected", "platform", name)
	return platform
}
