package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"remora/internal/scrape"
)

// maxBodyBytes caps response bodies; embed pages and API payloads are small.
const maxBodyBytes = 10 * 1024 * 1024

// Endpoint is a pure description of one HTTP call. It has no behavior and
// is never mutated after construction.
type Endpoint struct {
	Base    string // scheme://host
	Path    string // joined onto Base, should start with "/"
	Method  string // defaults to GET
	Query   url.Values
	Headers map[string]string
	Body    []byte
}

// URL renders the full request URL.
func (e Endpoint) URL() string {
	u := strings.TrimRight(e.Base, "/") + e.Path
	if len(e.Query) > 0 {
		u += "?" + e.Query.Encode()
	}
	return u
}

// Send dispatches one Endpoint and returns the raw response body.
// Connection failures and non-2xx statuses surface as network errors.
func Send(ctx context.Context, client *http.Client, e Endpoint) ([]byte, error) {
	method := e.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(e.Body) > 0 {
		body = bytes.NewReader(e.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.URL(), body)
	if err != nil {
		return nil, scrape.InvalidURL(e.URL(), err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range e.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, scrape.NetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, scrape.NetworkError(fmt.Errorf("unexpected status %d for %s", resp.StatusCode, e.URL()))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, scrape.NetworkError(fmt.Errorf("reading response: %w", err))
	}

	return data, nil
}

// Get fetches a page with standard browser-like headers.
func Get(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, scrape.InvalidURL(rawURL, err)
	}

	h := map[string]string{
		"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}
	for k, v := range headers {
		h[k] = v
	}

	return Send(ctx, client, Endpoint{
		Base:    u.Scheme + "://" + u.Host,
		Path:    u.Path,
		Query:   u.Query(),
		Headers: h,
	})
}

// GetJSON fetches a JSON endpoint. The X-Requested-With header is required
// by several providers' ajax routes.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, referer string) ([]byte, error) {
	headers := map[string]string{
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"X-Requested-With": "XMLHttpRequest",
	}
	if referer != "" {
		headers["Referer"] = referer
	}
	return Get(ctx, client, rawURL, headers)
}
