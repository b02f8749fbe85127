// Package httputil provides the engine's transport: a hardened HTTP client,
// a declarative request descriptor, and input sanitization utilities.
package httputil

import (
	"crypto/tls"
	"net/http"
	"time"
)

// UserAgent is the browser user agent sent on every request. Several embed
// hosts refuse non-browser agents outright.
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/121.0"

// NewClient creates a hardened HTTP client with secure defaults.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}
