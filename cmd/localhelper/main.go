package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewMain().Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// CLI is the flag and environment surface. Flags win over env, env over the
// config file, and the config file over the defaults below.
type CLI struct {
	Config string `short:"c" type:"path" env:"HELPER_CONFIG" help:"YAML or JSON config file."`

	Listen    string `short:"l" default:":8080" env:"LISTEN_ADDR" help:"Address to listen on."`
	StaticDir string `name:"static" default:"." env:"STATIC_DIR" help:"Directory with the front-end files."`
	MaxUpload int64  `name:"max-upload-bytes" default:"15728640" env:"MAX_UPLOAD_BYTES" help:"Largest accepted document upload."`

	FetchTimeout time.Duration `default:"15s" env:"FETCH_TIMEOUT" help:"Timeout for one page fetch."`
	ProxyTimeout time.Duration `default:"15s" env:"PROXY_TIMEOUT" help:"Timeout for one proxied AI request."`
	FetchRPS     float64       `name:"fetch-rps" env:"FETCH_RPS" help:"Outbound page fetches per second (0 = unlimited)."`

	CacheDir         string        `env:"CACHE_DIR" help:"Directory for the page cache (empty disables it)."`
	CacheMaxAge      time.Duration `env:"CACHE_MAX_AGE" help:"Purge cache entries older than this at startup."`
	CacheClear       bool          `env:"CACHE_CLEAR" help:"Empty the page cache at startup."`
	CacheStrictPerms bool          `env:"CACHE_STRICT_PERMS" help:"Create cache files readable by the owner only."`

	UseAI     string `name:"use-ai" env:"USE_AI" help:"Preferred AI provider: openai, qwen or zhipu."`
	OpenAIKey string `name:"openai-key" env:"OPENAI_API_KEY" help:"OpenAI API key."`
	QwenKey   string `name:"dashscope-key" env:"DASHSCOPE_API_KEY" help:"DashScope (Qwen) API key."`
	ZhipuKey  string `name:"zhipu-key" env:"ZHIPU_API_KEY" help:"Zhipu API key."`

	DisablePDF  bool `name:"disable-pdf" env:"DISABLE_PDF" help:"Turn off PDF text extraction."`
	DisableDOCX bool `name:"disable-docx" env:"DISABLE_DOCX" help:"Turn off DOCX text extraction."`

	Verbose bool `short:"v" env:"VERBOSE" help:"Debug logging."`
}

func (c *CLI) appConfig() app.Config {
	return app.Config{
		ListenAddr:       c.Listen,
		StaticDir:        c.StaticDir,
		MaxUploadBytes:   c.MaxUpload,
		FetchTimeout:     c.FetchTimeout,
		ProxyTimeout:     c.ProxyTimeout,
		FetchRPS:         c.FetchRPS,
		CacheDir:         c.CacheDir,
		CacheMaxAge:      c.CacheMaxAge,
		CacheClear:       c.CacheClear,
		CacheStrictPerms: c.CacheStrictPerms,
		UseAI:            c.UseAI,
		OpenAIAPIKey:     c.OpenAIKey,
		DashScopeAPIKey:  c.QwenKey,
		ZhipuAPIKey:      c.ZhipuKey,
		DisablePDF:       c.DisablePDF,
		DisableDOCX:      c.DisableDOCX,
		Verbose:          c.Verbose,
	}
}

// errHelpShown stops Run after kong printed usage.
var errHelpShown = errors.New("help shown")

// Main represents the program.
type Main struct {
	// EnvFiles are loaded before flags are parsed.
	EnvFiles []string
	// Serve runs the built app; tests replace it.
	Serve func(ctx context.Context, a *app.App) error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFiles: []string{".env", ".env.local"},
		Serve:    func(ctx context.Context, a *app.App) error { return a.Run(ctx) },
	}
}

// Run parses args, builds the app and serves until ctx is cancelled.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := m.Configure(args, stdout, stderr)
	if errors.Is(err, errHelpShown) {
		return nil
	}
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cfg.Verbose)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return m.Serve(ctx, a)
}

// Configure resolves the final app.Config from dotenv files, env, flags and
// the optional config file.
func (m *Main) Configure(args []string, stdout, stderr io.Writer) (app.Config, error) {
	if err := app.LoadEnvFiles(m.EnvFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}

	cli := &CLI{}
	helped := false
	parser, err := kong.New(cli,
		kong.Name("localhelper"),
		kong.Description("Local helper for the browser front-end: page fetch, document text extraction and AI proxy."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { helped = true }),
	)
	if err != nil {
		return app.Config{}, fmt.Errorf("failed to create parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		if helped {
			return app.Config{}, errHelpShown
		}
		return app.Config{}, err
	}
	if helped {
		return app.Config{}, errHelpShown
	}

	cfg := cli.appConfig()
	if cli.Config != "" {
		fc, err := app.LoadConfigFile(cli.Config)
		if err != nil {
			return app.Config{}, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
		cfg.ConfigFile = cli.Config
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}
