package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/localhelper/internal/cache"
	"github.com/hyperifyio/localhelper/internal/docparse"
	"github.com/hyperifyio/localhelper/internal/fetch"
	"github.com/hyperifyio/localhelper/internal/proxy"
	"github.com/hyperifyio/localhelper/internal/server"
)

const shutdownGrace = 10 * time.Second

// App wires configuration into the running helper server.
type App struct {
	cfg       Config
	log       zerolog.Logger
	httpCache *cache.HTTPCache
	caps      docparse.Capabilities
	server    *server.Server
	http      *http.Server
}

// New builds every component once. Document capabilities are probed here so
// a missing extractor is reported at startup.
func New(_ context.Context, cfg Config, logger zerolog.Logger) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, log: logger}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				logger.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				logger.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				logger.Info().Int("removed", n).Dur("max_age", cfg.CacheMaxAge).Msg("cache purged")
			}
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	client := newOutboundHTTPClient()
	fetcher := &fetch.Client{
		HTTPClient:        client,
		UserAgent:         fetch.BrowserUserAgent,
		PerRequestTimeout: cfg.FetchTimeout,
		Cache:             a.httpCache,
		Logger:            logger.With().Str("component", "fetch").Logger(),
	}
	if cfg.FetchRPS > 0 {
		burst := int(cfg.FetchRPS)
		if burst < 1 {
			burst = 1
		}
		fetcher.Limiter = rate.NewLimiter(rate.Limit(cfg.FetchRPS), burst)
	}

	a.caps = docparse.DetectCapabilities(docparse.CapabilityOptions{
		DisablePDF:  cfg.DisablePDF,
		DisableDOCX: cfg.DisableDOCX,
	})
	logCapability(logger, "pdf", a.caps.PDF)
	logCapability(logger, "docx", a.caps.DOCX)

	keys := proxy.Keys{
		OpenAI: cfg.OpenAIAPIKey,
		Qwen:   cfg.DashScopeAPIKey,
		Zhipu:  cfg.ZhipuAPIKey,
	}

	a.server = &server.Server{
		Pages: fetch.NewPager(fetcher, logger.With().Str("component", "pages").Logger()),
		Docs:  docparse.New(a.caps, logger.With().Str("component", "docparse").Logger()),
		Proxy: &proxy.Forwarder{
			HTTPClient: client,
			Timeout:    cfg.ProxyTimeout,
			Keys:       keys,
			Logger:     logger.With().Str("component", "proxy").Logger(),
		},
		Keys:           keys,
		UseAI:          cfg.UseAI,
		Static:         http.Dir(cfg.StaticDir),
		StaticDeny:     staticDeny(cfg),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	}

	a.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func logCapability(logger zerolog.Logger, name string, c docparse.Capability) {
	if c.Available {
		logger.Info().Str("format", name).Msg("document extraction available")
		return
	}
	logger.Warn().Str("format", name).Str("reason", c.Reason).Msg("document extraction unavailable")
}

// Handler exposes the routed handler, mainly for tests.
func (a *App) Handler() http.Handler { return a.http.Handler }

// Capabilities reports which document extractors were enabled at startup.
func (a *App) Capabilities() docparse.Capabilities { return a.caps }

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.ListenAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	a.log.Info().
		Str("addr", ln.Addr().String()).
		Str("static", a.cfg.StaticDir).
		Msg("helper listening")

	errc := make(chan error, 1)
	go func() { errc <- a.http.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources immediately without waiting for in-flight requests.
func (a *App) Close() error {
	if a == nil || a.http == nil {
		return nil
	}
	return a.http.Close()
}

// staticDeny returns the config file path relative to the static root when
// the file lives inside it.
func staticDeny(cfg Config) []string {
	if cfg.ConfigFile == "" {
		return nil
	}
	root, err := filepath.Abs(cfg.StaticDir)
	if err != nil {
		return nil
	}
	file, err := filepath.Abs(cfg.ConfigFile)
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel)}
}
