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

const gsaHourlyBody = `{
	"timestamps": ["2024-01-01T14:00"],
	"features": [{
		"properties": {
			"parameters": {
				"tl": {"data": [8.5]},
				"rr": {"data": [0.0]}
			}
		}
	}]
}`

// TestGSAHourlyParsesTimeseriesResponse covers the GSA "timestamps +
// parameters-array" response layout (spec.md §9's resolved Open Question)
// end to end for temp and prcp; the wind-speed m/s -> km/h conversion is
// not exercised since wdir/wspd aren't in this fixture.
func TestGSAHourlyParsesTimeseriesResponse(t *testing.T) {
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, gsaHourlyBody)
	})
	cfg := config.Default()
	cfg.GSAAPIBaseURL = server.URL
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "11035", Identifiers: map[string]string{"national": "11035"}},
		Parameters: []enums.Parameter{enums.Temp, enums.Prcp},
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
	}
	f, err := GSAHourly(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("GSAHourly: %v", err)
	}
	if f == nil || f.Len() != 1 {
		t.Fatalf("expected exactly one row, got %+v", f)
	}
	if got := f.Col(enums.Temp).Values[0]; got != 8.5 {
		t.Fatalf("expected temp 8.5, got %v", got)
	}
	wantTime := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC).Unix()
	if f.Keys[0].UnixSec != wantTime {
		t.Fatalf("expected timestamp %d, got %d", wantTime, f.Keys[0].UnixSec)
	}
}

// TestGSAHourlyNoMatchingStationIdentifier covers the identKey="national"
// gate: a station without one never reaches the network.
func TestGSAHourlyNoMatchingStationIdentifier(t *testing.T) {
	called := false
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	cfg := config.Default()
	cfg.GSAAPIBaseURL = server.URL
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "11035"},
		Parameters: []enums.Parameter{enums.Temp},
	}
	f, err := GSAHourly(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("GSAHourly: %v", err)
	}
	if f != nil {
		t.Fatalf("expected nil frame without a national identifier, got %+v", f)
	}
	if called {
		t.Fatal("expected GSAHourly to never reach the network without a national identifier")
	}
}

// TestGSAMonthlyAppliesMSLPressureReduction covers GSAMonthly's station-
// elevation-dependent pressure correction, the one GSA adapter that
// post-processes a column using data outside the response itself.
func TestGSAMonthlyAppliesMSLPressureReduction(t *testing.T) {
	body := `{
		"timestamps": ["2024-01-01T00:00"],
		"features": [{
			"properties": {
				"parameters": {
					"tl_mittel": {"data": [8.5]},
					"p": {"data": [950.0]}
				}
			}
		}]
	}`
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
	cfg := config.Default()
	cfg.GSAAPIBaseURL = server.URL
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "11035", Elevation: 600, Identifiers: map[string]string{"national": "11035"}},
		Parameters: []enums.Parameter{enums.Temp, enums.Pres},
	}
	f, err := GSAMonthly(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("GSAMonthly: %v", err)
	}
	if f == nil || f.Len() != 1 {
		t.Fatalf("expected exactly one row, got %+v", f)
	}
	if got := f.Col(enums.Pres).Values[0]; got <= 950.0 {
		t.Fatalf("expected the MSL-reduced pressure to be higher than the raw station pressure 950.0, got %v", got)
	}
}
