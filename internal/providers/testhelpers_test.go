package providers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/core/network"
)

// newTestDeps builds a Deps with caching disabled (so every test call
// actually hits the handler) and a *network.Client wired to hc, the way
// the teacher's client_test.go points client.baseURL at an
// httptest.Server instead of the real upstream.
func newTestDeps(t *testing.T, hc *http.Client, cfg *config.Config) Deps {
	t.Helper()
	c, err := cache.New(t.TempDir(), false, 8)
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return Deps{Cache: c, Client: network.NewWithClient(hc), Config: cfg}
}

// newHTTPTestServer starts a plain httptest.Server and returns it along
// with its http.Client, which has no special transport — suitable for
// adapters that read their endpoint straight out of *config.Config (no
// scheme to rewrite).
func newHTTPTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *http.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, server.Client()
}

// newTLSTestServer starts an httptest.NewTLSServer and returns its host
// (without scheme) alongside a client that trusts its certificate — used
// by adapters like DWD's that hardcode "https://" around a config-supplied
// host rather than taking a full URL template.
func newTLSTestServer(t *testing.T, handler http.HandlerFunc) (host string, hc *http.Client) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	return strings.TrimPrefix(server.URL, "https://"), server.Client()
}
