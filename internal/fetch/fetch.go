package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/localhelper/internal/apperr"
	"github.com/hyperifyio/localhelper/internal/cache"
)

// BrowserUserAgent is sent on every outbound page fetch; several content
// platforms serve a stripped page to unknown agents.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 15 * time.Second

// Client wraps http.Client with a per-request timeout, a redirect policy and
// an optional conditional-GET cache. Each Get is a single attempt.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// PerRequestTimeout bounds each request. Zero means DefaultTimeout.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for HTTP GET bodies and headers.
	Cache *cache.HTTPCache
	// If true, bypass cache entirely and fetch fresh (no conditional headers),
	// but still save the latest response to cache.
	BypassCache bool
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// Limiter throttles outbound requests when set.
	Limiter *rate.Limiter
	// MaxBodyBytes caps how much of a response body is read. Zero means 10 MiB.
	MaxBodyBytes int64

	Logger zerolog.Logger
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.timeout(), CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.PerRequestTimeout > 0 {
		return c.PerRequestTimeout
	}
	return DefaultTimeout
}

// Get issues a GET with context and user-agent. It returns the body and the
// response Content-Type. Failures are apperr.ENETWORK errors.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, "", apperr.Wrap(apperr.ENETWORK, err, "rate limit")
		}
	}

	res, err := c.tryOnce(ctx, rawURL, etag, lastMod)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ENETWORK, err, "fetch page")
	}
	if res.status == http.StatusNotModified && c.Cache != nil {
		cached, err := c.Cache.LoadBody(ctx, rawURL)
		if err == nil {
			c.Logger.Debug().Str("url", rawURL).Msg("served from cache")
			ct := res.contentType
			if meta, merr := c.Cache.LoadMeta(ctx, rawURL); merr == nil && meta != nil && meta.ContentType != "" {
				ct = meta.ContentType
			}
			return cached, ct, nil
		}
		return nil, "", apperr.Wrap(apperr.ENETWORK, err, "not modified but cache entry missing")
	}
	if c.Cache != nil && res.status == http.StatusOK {
		if err := c.Cache.Save(ctx, rawURL, res.contentType, res.etag, res.lastModified, res.body); err != nil {
			c.Logger.Warn().Err(err).Str("url", rawURL).Msg("cache save failed")
		}
	}
	return res.body, res.contentType, nil
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, etag string, lastMod string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	// Reject non-HTTP(S) schemes early
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	ua := c.UserAgent
	if ua == "" {
		ua = BrowserUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	ctx, cancel := context.WithTimeout(req.Context(), c.timeout())
	defer cancel()
	req = req.WithContext(ctx)

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		// 304: no body expected
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody()))
	if err != nil {
		return out, fmt.Errorf("read body: %w", err)
	}
	out.body = b
	return out, nil
}

func (c *Client) maxBody() int64 {
	if c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return 10 << 20
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
