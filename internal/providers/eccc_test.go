package providers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// TestECCCHourlyConvertsWindDirectionAndVisibility covers the two unit
// fixups ECCCHourly applies on top of the raw GeoMet response: wind
// direction in tens of degrees and visibility in kilometres.
func TestECCCHourlyConvertsWindDirectionAndVisibility(t *testing.T) {
	body := `{
		"features": [{
			"properties": {
				"UTC_DATE": "2024-01-01T14:00:00Z",
				"TEMP": -5.0,
				"WIND_DIRECTION": 18.0,
				"VISIBILITY": 24.1
			}
		}]
	}`
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
	cfg := config.Default()
	cfg.ECCCHourlyEndpoint = server.URL
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "3031093", Identifiers: map[string]string{"national": "3031093"}, Timezone: "America/Toronto"},
		Parameters: []enums.Parameter{enums.Temp, enums.WDir, enums.Vsby},
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
	}
	f, err := ECCCHourly(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("ECCCHourly: %v", err)
	}
	if f == nil || f.Len() != 1 {
		t.Fatalf("expected exactly one row, got %+v", f)
	}
	if got := f.Col(enums.WDir).Values[0]; got != 180 {
		t.Fatalf("expected wind direction 18 tens-of-degrees scaled to 180, got %v", got)
	}
	if got := f.Col(enums.Vsby).Values[0]; got != 24100 {
		t.Fatalf("expected visibility 24.1km scaled to 24100m, got %v", got)
	}
}

// TestECCCHourlyUnresolvableTimezoneDegradesToNoData covers the
// tz-abbreviation resolution gate: a station timezone that isn't in the
// abbreviation map and isn't a loadable IANA zone yields nil, not an error.
func TestECCCHourlyUnresolvableTimezoneDegradesToNoData(t *testing.T) {
	called := false
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	cfg := config.Default()
	cfg.ECCCHourlyEndpoint = server.URL
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "3031093", Identifiers: map[string]string{"national": "3031093"}, Timezone: "Not/A_Zone"},
		Parameters: []enums.Parameter{enums.Temp},
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
	}
	f, err := ECCCHourly(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("ECCCHourly: %v", err)
	}
	if f != nil {
		t.Fatalf("expected nil frame for an unresolvable timezone, got %+v", f)
	}
	if called {
		t.Fatal("expected ECCCHourly to never reach the network for an unresolvable timezone")
	}
}
