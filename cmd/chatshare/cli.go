package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/chatshare"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Extractor chatshare.ConversationExtractor
	Logger    *slog.Logger

	// Writer is set when --output is given.
	Writer chatshare.TranscriptWriter

	Format string
	Strict bool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config `embed:""`

	Format string `short:"f" default:"json" enum:"json,text,markdown" help:"Output format (json, text, markdown)"`
	Output string `short:"o" type:"path" help:"Write the transcript as markdown under this directory"`
	Strict bool   `help:"Treat an empty result as an error"`

	Fetch FetchCmd `cmd:"" help:"Fetch a share URL and extract its conversation"`
	Parse ParseCmd `cmd:"" help:"Extract a conversation from a saved page or text file ('-' reads stdin)"`
}

// Config holds extraction settings. Every setting has an environment fallback.
type Config struct {
	AllowedHosts      []string      `name:"allowed-hosts" env:"ALLOWED_HOSTS" sep:"," help:"Comma-separated hostnames that may be fetched (subdomains included)"`
	Timeout           int           `env:"TIMEOUT" default:"15" help:"Fetch timeout in seconds"`
	MaxBytes          int64         `name:"max-bytes" env:"MAX_BYTES" default:"6000000" help:"Maximum response body size in bytes"`
	UserAgent         string        `name:"user-agent" env:"UA" help:"User-Agent header for fetches"`
	MinStructural     int           `name:"min-structural" env:"MIN_STRUCTURAL_MESSAGES" default:"2" help:"Messages a structural strategy must find to be accepted"`
	MinJSON           int           `name:"min-json" env:"MIN_JSON_MESSAGES" default:"1" help:"Messages the embedded-JSON strategy must find to be accepted"`
	NoiseFile         string        `name:"noise-file" env:"NOISE_FILE" type:"existingfile" help:"YAML file with extra noise patterns"`
	NoDefaultNoise    bool          `name:"no-default-noise" help:"Disable the built-in noise patterns"`
	Render            bool          `env:"RENDER" help:"Render the page in a headless browser when the static page has no conversation"`
	RenderConcurrency int           `name:"render-concurrency" env:"RENDER_CONCURRENCY" default:"2" help:"Concurrent browser renders"`
	RenderTimeout     int           `name:"render-timeout" env:"RENDER_TIMEOUT" default:"30" help:"Browser render timeout in seconds"`
	RenderSettle      time.Duration `name:"render-settle" env:"RENDER_SETTLE" default:"0s" help:"Wait after page load before reading the rendered DOM"`
	BrowserPath       string        `name:"browser-path" env:"BROWSER_PATH" type:"path" help:"Chrome binary used for rendering (found or downloaded when empty)"`
	MainContent       string        `name:"main-content" default:"none" enum:"none,trafilatura,readability" help:"Main-content extractor used by the text heuristic"`
	Markdown          bool          `help:"Keep rich text as Markdown in DOM-extracted messages"`
	Rate              float64       `default:"0" help:"Per-host fetch rate in requests per second (0 disables)"`
	LogLevel          string        `name:"log-level" env:"LOG_LEVEL" default:"warn" help:"Log level (debug, info, warn, error)"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	URLs        []string `arg:"" name:"url" help:"Share URLs"`
	Concurrency int      `short:"c" default:"4" help:"URLs extracted concurrently"`
	Retries     int      `default:"2" help:"Retries for transient fetch failures"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File string `arg:"" help:"Path to an HTML or text file, or '-' for stdin"`
}
