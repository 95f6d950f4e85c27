// Package proxy forwards JSON POST requests from the browser to external APIs
// so the front-end is not blocked by cross-origin rules.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/apperr"
)

// DefaultTimeout bounds one forwarded call, matching the page fetch bound.
const DefaultTimeout = 15 * time.Second

// Request is the /api/proxy payload.
type Request struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

// Response is what the upstream returned.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Forwarder issues the upstream POST.
type Forwarder struct {
	HTTPClient *http.Client
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// Keys are injected as bearer tokens for known providers when the caller
	// sent no Authorization header.
	Keys Keys
	// MaxResponseBytes caps the relayed body. Zero means 32 MiB.
	MaxResponseBytes int64
	Logger           zerolog.Logger
}

// Forward serialises req.Body, posts it to req.URL and returns the raw
// upstream response. Transport failures and non-2xx replies are
// apperr.EUPSTREAM; a missing URL is apperr.EINPUT.
func (f *Forwarder) Forward(ctx context.Context, req Request) (Response, error) {
	target := strings.TrimSpace(req.URL)
	if target == "" {
		return Response{}, apperr.Errorf(apperr.EINPUT, "missing url")
	}
	payload, err := encodeBody(req.Body)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.EUPSTREAM, err, "serialize body")
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return Response{}, apperr.Wrap(apperr.EUPSTREAM, err, "build request")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	injected := false
	if httpReq.Header.Get("Authorization") == "" {
		if auth, ok := f.Keys.Authorization(httpReq.URL); ok {
			httpReq.Header.Set("Authorization", auth)
			injected = true
		}
	}

	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return Response{}, apperr.Wrap(apperr.EUPSTREAM, err, "proxy request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxResponse()))
	if err != nil {
		return Response{}, apperr.Wrap(apperr.EUPSTREAM, err, "read upstream body")
	}
	f.Logger.Debug().
		Str("host", httpReq.URL.Host).
		Int("status", resp.StatusCode).
		Bool("key_injected", injected).
		Dur("took", time.Since(start)).
		Msg("proxied")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, apperr.Errorf(apperr.EUPSTREAM, "upstream HTTP %d: %s", resp.StatusCode, snippet(body, 500))
	}
	return Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (f *Forwarder) maxResponse() int64 {
	if f.MaxResponseBytes > 0 {
		return f.MaxResponseBytes
	}
	return 32 << 20
}

// encodeBody re-serialises the caller's JSON value compactly; an absent body
// is sent as null.
func encodeBody(raw json.RawMessage) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return buf.Bytes(), nil
}

func snippet(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}
