package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/core/network"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
)

// getJSON issues a GET and decodes a 200 JSON body into out. A non-2xx
// response logs a warning and returns (false, nil) rather than an error —
// adapters treat upstream failures as "no data", matching the Python
// providers' `if response.status_code != 200: return None` idiom.
func getJSON(ctx context.Context, c *network.Client, endpoint string, params url.Values, out any) (bool, error) {
	resp, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return false, fmt.Errorf("providers: get %s: %w", endpoint, err)
	}
	if !resp.OK() {
		logger.Warn("providers: %s returned status %d", endpoint, resp.StatusCode)
		return false, nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		logger.Warn("providers: decode %s failed: %v", endpoint, err)
		return false, nil
	}
	return true, nil
}

// buildRow merges a parsed value map onto a new Frame row at ts,
// attributing every present cell to source — the single-row equivalent
// of the Python adapters' `pd.DataFrame(df_dict)` construction.
func buildRow(f *frame.Frame, station string, ts time.Time, source enums.Provider, values map[enums.Parameter]float64) {
	f.AddRow(frame.Key{Station: station, UnixSec: ts.Unix(), Source: source}, values, source)
}

// wantedParams intersects req.Parameters with the provider's declared
// parameter set, preserving req's order (spec §4.6: "an adapter never
// fabricates columns outside its declared set").
func wantedParams(req []enums.Parameter, supported map[enums.Parameter]bool) []enums.Parameter {
	out := make([]enums.Parameter, 0, len(req))
	for _, p := range req {
		if supported[p] {
			out = append(out, p)
		}
	}
	return out
}

// cacheKeyFor is the (fn, args) tuple fed into cache.Decorate for a
// per-provider-task memoization, folding the adapter's identity into the
// cached argument tuple (spec §4.1/§9).
func cacheKeyFor(id enums.Provider, req interface{ CacheKey() string }) string {
	return string(id) + "\x00" + req.CacheKey()
}
