package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/clean"
	"github.com/fwojciec/chatshare/extract"
	"github.com/fwojciec/chatshare/fs"
	"github.com/fwojciec/chatshare/goquery"
	"github.com/fwojciec/chatshare/htmltomarkdown"
	cshttp "github.com/fwojciec/chatshare/http"
	"github.com/fwojciec/chatshare/hydration"
	"github.com/fwojciec/chatshare/readability"
	"github.com/fwojciec/chatshare/rod"
	csslog "github.com/fwojciec/chatshare/slog"
	"github.com/fwojciec/chatshare/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read by "parse -". Set before calling Run().
	Stdin io.Reader

	// Extractor replaces the wired extraction service for end-to-end testing.
	Extractor chatshare.ConversationExtractor

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Stdin: os.Stdin}
}

// Close releases the fetcher connections and the browser pool.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("chatshare"),
		kong.Description("Extract conversations from shared chat transcript pages"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'chatshare --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel)
	if err != nil {
		return err
	}

	deps.Logger = logger
	deps.Format = cli.Format
	deps.Strict = cli.Strict
	if cli.Output != "" {
		deps.Writer = fs.NewWriter(cli.Output)
	}

	deps.Extractor = m.Extractor
	if deps.Extractor == nil {
		ext, err := m.wire(&cli.Config, logger)
		if err != nil {
			return err
		}
		defer m.Close()
		deps.Extractor = ext
	}

	return kongCtx.Run(deps)
}

// wire builds the extraction service from configuration.
func (m *Main) wire(cfg *Config, logger *slog.Logger) (*extract.Extractor, error) {
	norm, err := newNormalizer(cfg)
	if err != nil {
		return nil, err
	}

	opts := []cshttp.Option{
		cshttp.WithTimeout(time.Duration(cfg.Timeout) * time.Second),
		cshttp.WithMaxBytes(cfg.MaxBytes),
		cshttp.WithRateLimit(cfg.Rate),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, cshttp.WithUserAgent(cfg.UserAgent))
	}
	if hosts := cleanHosts(cfg.AllowedHosts); len(hosts) > 0 {
		opts = append(opts, cshttp.WithAllowedHosts(hosts...))
	}
	fetcher := cshttp.NewFetcher(opts...)
	m.closers = append(m.closers, fetcher.Close)

	nodeOpts := []goquery.Option{goquery.WithNormalizer(norm)}
	if cfg.Markdown {
		nodeOpts = append(nodeOpts, goquery.WithConverter(htmltomarkdown.NewConverter()))
	}

	heuristic := &extract.HeuristicStrategy{Normalizer: norm}
	switch cfg.MainContent {
	case "trafilatura":
		heuristic.MainContent = trafilatura.NewExtractor()
	case "readability":
		heuristic.MainContent = readability.NewExtractor()
	}

	ext := &extract.Extractor{
		Fetcher: csslog.NewLoggingFetcher(fetcher, logger),
		Structural: []chatshare.Strategy{
			csslog.NewLoggingStrategy(&extract.AnchorStrategy{Normalizer: norm}, logger),
			csslog.NewLoggingStrategy(goquery.NewNodeStrategy(nodeOpts...), logger),
		},
		JSON:          csslog.NewLoggingStrategy(&hydration.Strategy{Normalizer: norm}, logger),
		Heuristic:     csslog.NewLoggingStrategy(heuristic, logger),
		Detector:      csslog.NewLoggingDetector(goquery.NewDetector(), logger),
		MinStructural: cfg.MinStructural,
		MinJSON:       cfg.MinJSON,
		Logger:        logger,
	}

	if cfg.Render {
		pool := rod.NewPool(
			rod.WithConcurrency(cfg.RenderConcurrency),
			rod.WithBrowserPath(cfg.BrowserPath),
		)
		renderer := csslog.NewLoggingRenderer(rod.NewRenderer(pool,
			rod.WithRenderTimeout(time.Duration(cfg.RenderTimeout)*time.Second),
			rod.WithSettleDelay(cfg.RenderSettle),
		), logger)
		m.closers = append(m.closers, renderer.Close)
		ext.Renderer = renderer
	}

	return ext, nil
}

func newNormalizer(cfg *Config) (*clean.Normalizer, error) {
	if cfg.NoiseFile == "" && !cfg.NoDefaultNoise {
		return clean.Default(), nil
	}

	var patterns []clean.NoisePattern
	if !cfg.NoDefaultNoise {
		patterns = clean.DefaultNoisePatterns()
	}

	if cfg.NoiseFile != "" {
		f, err := os.Open(cfg.NoiseFile)
		if err != nil {
			return nil, chatshare.Errorf(chatshare.EINVALID, "open noise file: %v", err)
		}
		defer f.Close()

		extra, err := clean.LoadNoisePatterns(f)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, extra...)
	}

	return clean.NewNormalizer(patterns)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, chatshare.Errorf(chatshare.EINVALID, "invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func cleanHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
