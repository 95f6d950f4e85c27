// Package server exposes the helper endpoints the browser front-end calls and
// serves the front-end's static files for every other path.
package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/localhelper/internal/docparse"
	"github.com/hyperifyio/localhelper/internal/fetch"
	"github.com/hyperifyio/localhelper/internal/proxy"
)

// DefaultMaxUploadBytes caps a parse-doc upload.
const DefaultMaxUploadBytes = 15 << 20

// PageFetcher is implemented by *fetch.Pager.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (fetch.Page, error)
}

// DocumentParser is implemented by *docparse.Parser.
type DocumentParser interface {
	Parse(filename string, data []byte) (docparse.Result, error)
}

// Forwarder is implemented by *proxy.Forwarder.
type Forwarder interface {
	Forward(ctx context.Context, req proxy.Request) (proxy.Response, error)
}

// Server holds the request handlers' collaborators. It has no per-request
// state; one instance serves all connections.
type Server struct {
	Pages  PageFetcher
	Docs   DocumentParser
	Proxy  Forwarder
	Keys   proxy.Keys
	UseAI  string
	Static http.FileSystem
	// StaticDeny lists extra paths under Static that must not be served,
	// such as a config file holding provider keys. Dot-files are always hidden.
	StaticDeny []string
	// MaxUploadBytes caps parse-doc bodies. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/fetch-page", s.handleFetchPage)
	mux.HandleFunc("/api/parse-doc", s.handleParseDoc)
	mux.HandleFunc("/api/proxy", s.handleProxy)
	mux.HandleFunc("/api/config", s.handleConfig)
	if s.Static != nil {
		mux.Handle("/", staticOnly(http.FileServer(newStaticFS(s.Static, s.StaticDeny))))
	} else {
		mux.Handle("/", http.NotFoundHandler())
	}

	var h http.Handler = mux
	h = withCORS(h)
	h = s.withRecover(h)
	h = s.withRequestLog(h)
	return h
}

func (s *Server) maxUpload() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

func staticOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}
