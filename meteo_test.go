package meteo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/errs"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/interpolate"
	"github.com/dl-alexandre/meteo/internal/timeseries"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// openTestClient opens a Client against a throwaway cache dir and a fresh
// station catalog seeded with the given stations, so tests never touch a
// shared on-disk path.
func openTestClient(t *testing.T, seed ...typing.Station) *Client {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.CacheDirectory = filepath.Join(dir, "cache")
	cfg.StationsDBFile = filepath.Join(dir, "stations.sqlite3")

	cl, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cl.Close() })

	for _, s := range seed {
		if err := cl.Catalog.Upsert(s); err != nil {
			t.Fatalf("seeding station %s: %v", s.ID, err)
		}
	}
	return cl
}

func station10637() typing.Station {
	return typing.Station{ID: "10637", Name: "Frankfurt", Country: "DE", Latitude: 50.0264, Longitude: 8.5231, Elevation: 111}
}

// TestDailyRejectsRequestsOver30Years covers spec.md §8 scenario 6: a
// 31-year daily window is rejected by the large-request gate before
// dispatch ever runs, so this never reaches the network.
func TestDailyRejectsRequestsOver30Years(t *testing.T) {
	cl := openTestClient(t, station10637())

	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)
	_, err := cl.Daily(context.Background(), []string{"10637"}, start, end, nil, nil, "")
	if err == nil {
		t.Fatal("expected an error for a 31-year daily request")
	}
	if !errors.Is(err, errs.ErrRequestTooLarge) {
		t.Fatalf("expected errs.ErrRequestTooLarge, got %v", err)
	}
}

// TestResolveStationsSkipsUnknownSilently covers spec.md §4.10:
// UnknownStation yields a shorter station list, not an error.
func TestResolveStationsSkipsUnknownSilently(t *testing.T) {
	cl := openTestClient(t, station10637())

	got, err := cl.resolveStations([]string{"10637", "does-not-exist"})
	if err != nil {
		t.Fatalf("resolveStations: %v", err)
	}
	if len(got) != 1 || got[0].ID != "10637" {
		t.Fatalf("expected only the known station, got %v", got)
	}
}

func buildSeries(t *testing.T, stationID string, ts0 time.Time, temp float64, source enums.Provider) timeseries.TimeSeries {
	t.Helper()
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: stationID, UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: temp}, source)
	return timeseries.New(f, []typing.Station{{ID: stationID}}, enums.Hourly, ts0, ts0)
}

// TestMergeUnionsDistinctStations exercises the public Merge wrapper
// directly against handcrafted series, without a network round trip.
func TestMergeUnionsDistinctStations(t *testing.T) {
	ts0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a := buildSeries(t, "10637", ts0, 5.0, enums.DWDHourly)
	b := buildSeries(t, "10635", ts0, 2.0, enums.DWDHourly)

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Len() != 2 {
		t.Fatalf("expected 2 rows after merging distinct stations, got %d", merged.Len())
	}
	if len(merged.Stations) != 2 {
		t.Fatalf("expected the station union to have 2 members, got %d", len(merged.Stations))
	}
}

// TestMergeWithNoSeriesFails covers the degenerate empty-merge case.
func TestMergeWithNoSeriesFails(t *testing.T) {
	_, err := Merge()
	if !errors.Is(err, errs.ErrEmptyMerge) {
		t.Fatalf("expected errs.ErrEmptyMerge, got %v", err)
	}
}

// TestInterpolateAssignsDistinctSyntheticStationIDs ensures repeated
// public Interpolate calls never collide on station id when later
// combined via Merge (the reason meteo.Interpolate injects a uuid
// instead of reusing interpolate.SyntheticStationID).
func TestInterpolateAssignsDistinctSyntheticStationIDs(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: 10.0}, enums.DWDHourly)
	f.AddRow(frame.Key{Station: "10635", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: 4.0}, enums.DWDHourly)
	series := timeseries.New(f, []typing.Station{
		{ID: "10637", Latitude: 50.0264, Longitude: 8.5231, Elevation: 111},
		{ID: "10635", Latitude: 50.5, Longitude: 8.6, Elevation: 805},
	}, enums.Hourly, ts0, ts0)

	point, err := typing.NewPoint(50.3167, 8.5, nil)
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}

	first := Interpolate(series, point, interpolate.DefaultOptions())
	second := Interpolate(series, point, interpolate.DefaultOptions())

	firstID := first.Stations[0].ID
	secondID := second.Stations[0].ID
	if !strings.HasPrefix(firstID, "interp-") || !strings.HasPrefix(secondID, "interp-") {
		t.Fatalf("expected both synthetic station ids to be prefixed interp-, got %q and %q", firstID, secondID)
	}
	if firstID == secondID {
		t.Fatalf("expected distinct synthetic station ids across calls, both were %q", firstID)
	}

	combined, err := Merge(first, second)
	if err != nil {
		t.Fatalf("Merge of two interpolated series: %v", err)
	}
	if len(combined.Stations) != 2 {
		t.Fatalf("expected 2 distinct synthetic stations after merge, got %d", len(combined.Stations))
	}
}

// TestInterpolateHonorsExplicitStationID covers the package-level
// override: a caller-supplied opts.StationID is kept instead of a
// freshly minted uuid.
func TestInterpolateHonorsExplicitStationID(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: 10.0}, enums.DWDHourly)
	series := timeseries.New(f, []typing.Station{{ID: "10637", Latitude: 50.0264, Longitude: 8.5231}}, enums.Hourly, ts0, ts0)

	point, _ := typing.NewPoint(50.0264, 8.5231, nil)
	opts := interpolate.DefaultOptions()
	opts.StationID = "fixed-id"

	result := Interpolate(series, point, opts)
	if result.Stations[0].ID != "fixed-id" {
		t.Fatalf("expected the explicit station id to be preserved, got %q", result.Stations[0].ID)
	}
}
