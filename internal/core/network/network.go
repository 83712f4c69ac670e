// Package network is a thin facade over HTTP GET (spec §4.2), plus
// interface declarations for FTP LIST/RETR that no type in this module
// implements. It is cache-oblivious: callers wrap their own adapter function
// with the cache decorator from internal/core/cache. Every request
// carries a version-identification header, grounded on the teacher's
// internal/api.Client (cmd/cimis's app-key + User-Agent-less GET calls)
// generalized to a shared identification header across all providers.
package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UserAgent identifies this client to upstream services.
const UserAgent = "meteo-go/1.0 (+https://github.com/dl-alexandre/meteo)"

// DefaultTimeout is the per-request network timeout (spec §5: "network
// calls have a default per-request timeout; on timeout the adapter
// returns empty, not an error").
const DefaultTimeout = 30 * time.Second

// Response is the facade's uniform result for both HTTP and FTP calls.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether StatusCode is 2xx.
func (r Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Client wraps an *http.Client with the identification header and default
// timeout; safe for concurrent use across the fan-out in internal/dispatch.
type Client struct {
	http *http.Client
}

// New creates a Client with DefaultTimeout.
func New() *Client {
	return &Client{http: &http.Client{Timeout: DefaultTimeout}}
}

// NewWithClient allows tests to inject a client pointed at an
// httptest.Server.
func NewWithClient(hc *http.Client) *Client {
	return &Client{http: hc}
}

// Get issues an HTTP GET to endpoint with the given query params.
// Transport errors propagate to the caller (the adapter decides retry vs
// skip, per spec §4.2's failure policy); non-2xx responses are returned,
// not turned into an error, so the adapter can read the body for
// diagnostics.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (Response, error) {
	full := endpoint
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		full = endpoint + sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return Response{}, fmt.Errorf("network: build request for %s: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("network: GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("network: read body from %s: %w", endpoint, err)
	}

	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// FTPLister and FTPRetriever declare an FTP LIST/RETR contract. Nothing in
// this module implements or calls them; the DWD adapters fetch over HTTPS
// through Client.Get.
type FTPLister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

type FTPRetriever interface {
	Retr(ctx context.Context, path string) ([]byte, error)
}
