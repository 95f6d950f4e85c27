package app

import (
	"net"
	"net/http"
	"time"
)

// newOutboundHTTPClient returns the client shared by page fetches and the
// proxy. Per-request deadlines come from the callers' contexts, so the
// client itself only carries a generous ceiling.
func newOutboundHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   2 * time.Minute,
	}
}
