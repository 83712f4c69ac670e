package providers

import (
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// TestNOAAMetarParsesRawReport covers the hand-rolled METAR regex parser
// against a realistic raw report line, including the knot -> km/h and
// statute-mile -> meter conversions.
func TestNOAAMetarParsesRawReport(t *testing.T) {
	raw := "KJFK 011451Z 18010KT 10SM FEW250 12/08 A3012 RMK AO2\n"
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, raw)
	})
	cfg := config.Default()
	cfg.AviationWXEndpoint = server.URL + "?ids={station}&format=raw&taf=false&hours=24"
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "KJFK", Identifiers: map[string]string{"icao": "KJFK"}},
		Parameters: []enums.Parameter{enums.Temp, enums.Dwpt, enums.WSpd, enums.Vsby},
		End:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f, err := NOAAMetar(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("NOAAMetar: %v", err)
	}
	if f == nil || f.Len() != 1 {
		t.Fatalf("expected exactly one row, got %+v", f)
	}
	if got := f.Col(enums.Temp).Values[0]; got != 12 {
		t.Fatalf("expected temp 12, got %v", got)
	}
	if got := f.Col(enums.Dwpt).Values[0]; got != 8 {
		t.Fatalf("expected dwpt 8, got %v", got)
	}
	if got := f.Col(enums.WSpd).Values[0]; got < 18.5 || got > 18.6 {
		t.Fatalf("expected wind speed ~18.52 km/h (10kt), got %v", got)
	}
	if got := f.Col(enums.Vsby).Values[0]; got < 16093 || got > 16094 {
		t.Fatalf("expected visibility ~16093m (10sm), got %v", got)
	}
}

// TestNOAAMetarSkipsStationsWithoutICAO covers the icao Depends gate.
func TestNOAAMetarSkipsStationsWithoutICAO(t *testing.T) {
	called := false
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	cfg := config.Default()
	cfg.AviationWXEndpoint = server.URL + "?ids={station}"
	deps := newTestDeps(t, hc, cfg)

	f, err := NOAAMetar(context.Background(), deps, typing.ProviderRequest{Station: typing.Station{ID: "KJFK"}})
	if err != nil {
		t.Fatalf("NOAAMetar: %v", err)
	}
	if f != nil || called {
		t.Fatalf("expected no fetch and a nil frame without an icao identifier, got frame=%+v called=%v", f, called)
	}
}

// TestNOAAIsdLiteParsesFixedWidthRow covers the ISD Lite tenths-scaling
// and the -9999 missing-value sentinel.
func TestNOAAIsdLiteParsesFixedWidthRow(t *testing.T) {
	line := "2024 01 01 14 85 32 10132 180 31 -9999 -9999 -9999\n"
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gz := gzip.NewWriter(w)
		gz.Write([]byte(line))
		gz.Close()
	})
	cfg := config.Default()
	cfg.NOAAIsdLiteEndpoint = server.URL + "/isd-lite/{year}/{wmo}-99999-{year}.gz"
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "71624", Identifiers: map[string]string{"wmo": "716240"}},
		Parameters: []enums.Parameter{enums.Temp, enums.Pres},
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC),
	}
	f, err := NOAAIsdLite(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("NOAAIsdLite: %v", err)
	}
	if f == nil || f.Len() != 1 {
		t.Fatalf("expected exactly one row, got %+v", f)
	}
	if got := f.Col(enums.Temp).Values[0]; got != 8.5 {
		t.Fatalf("expected temp 8.5 (85 tenths), got %v", got)
	}
	if got := f.Col(enums.Pres).Values[0]; got != 1013.2 {
		t.Fatalf("expected pres 1013.2 (10132 tenths), got %v", got)
	}
}

// TestNOAAGhcndParsesFixedWidthElementLine covers the .dly quintuple
// layout, including the element-specific tenths scaling.
func TestNOAAGhcndParsesFixedWidthElementLine(t *testing.T) {
	id := "USW00094728"
	element := "TMAX"
	line := fmt.Sprintf("%-11s%4d%2s%4s", id, 2024, "01", element)
	for day := 1; day <= 31; day++ {
		if day == 1 {
			line += fmt.Sprintf("%5d%3s", 125, "   ")
		} else {
			line += fmt.Sprintf("%5d%3s", -9999, "   ")
		}
	}
	server, hc := newHTTPTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, line)
	})
	cfg := config.Default()
	cfg.NOAAGhcndEndpoint = server.URL + "/all/{wmo}.dly"
	deps := newTestDeps(t, hc, cfg)

	req := typing.ProviderRequest{
		Station:    typing.Station{ID: "GHCND1", Identifiers: map[string]string{"wmo": "USW00094728"}},
		Parameters: []enums.Parameter{enums.TMax},
	}
	f, err := NOAAGhcnd(context.Background(), deps, req)
	if err != nil {
		t.Fatalf("NOAAGhcnd: %v", err)
	}
	if f == nil || f.Len() != 1 {
		t.Fatalf("expected exactly one row (days after day 1 are all -9999/missing), got %+v", f)
	}
	wantTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	if f.Keys[0].UnixSec != wantTime {
		t.Fatalf("expected timestamp %d, got %d", wantTime, f.Keys[0].UnixSec)
	}
	if got := f.Col(enums.TMax).Values[0]; got != 12.5 {
		t.Fatalf("expected tmax 12.5 (125 tenths), got %v", got)
	}
}
