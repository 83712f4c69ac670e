package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
	"github.com/dl-alexandre/meteo/internal/units"
)

func buildFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New([]enums.Parameter{enums.Temp, enums.RHum})
	base := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	f.AddRow(frame.Key{Station: "10637", UnixSec: base.Unix()}, map[enums.Parameter]float64{enums.Temp: 6.6, enums.RHum: 80}, enums.DWDHourly)
	f.AddRow(frame.Key{Station: "10637", UnixSec: base.Add(24 * time.Hour).Unix()}, map[enums.Parameter]float64{enums.Temp: 7.1, enums.RHum: 82}, enums.DWDHourly)
	return f
}

func TestCountNonNaN(t *testing.T) {
	f := buildFrame(t)
	ts := New(f, []typing.Station{{ID: "10637"}}, enums.Daily, time.Time{}, time.Time{})
	if got := ts.Count(enums.Temp); got != 2 {
		t.Fatalf("Count(temp) = %d, want 2", got)
	}
}

func TestCompletenessUnsetBoundsReturnsFalse(t *testing.T) {
	f := buildFrame(t)
	ts := New(f, []typing.Station{{ID: "10637"}}, enums.Daily, time.Time{}, time.Time{})
	if _, ok := ts.Completeness(enums.Temp); ok {
		t.Fatalf("expected Completeness to report unset (ok=false) with no window")
	}
}

func TestCompletenessWithBounds(t *testing.T) {
	f := buildFrame(t)
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	ts := New(f, []typing.Station{{ID: "10637"}}, enums.Daily, start, end)
	got, ok := ts.Completeness(enums.Temp)
	if !ok {
		t.Fatalf("expected bounded completeness to report ok=true")
	}
	if got != 1.0 {
		t.Fatalf("Completeness(temp) = %v, want 1.0 (2 rows / 2 expected)", got)
	}
}

func TestValidateFlagsOutOfRangeValue(t *testing.T) {
	f := frame.New([]enums.Parameter{enums.RHum})
	f.AddRow(frame.Key{Station: "10637", UnixSec: 0}, map[enums.Parameter]float64{enums.RHum: 150}, enums.DWDHourly)
	ts := New(f, nil, enums.Hourly, time.Time{}, time.Time{})
	if ts.Validate() {
		t.Fatalf("expected Validate to fail for rhum=150 (> 100% bound)")
	}
}

func TestValidatePassesWithinRange(t *testing.T) {
	f := buildFrame(t)
	ts := New(f, nil, enums.Daily, time.Time{}, time.Time{})
	if !ts.Validate() {
		t.Fatalf("expected Validate to pass for plausible temp/rhum values")
	}
}

func TestFetchSquashPrefersHighestPriority(t *testing.T) {
	f := frame.New([]enums.Parameter{enums.Temp})
	ts0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0}, map[enums.Parameter]float64{enums.Temp: math.NaN()}, enums.DWDMosmix)
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0}, map[enums.Parameter]float64{enums.Temp: 5.0}, enums.DWDPoi)
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0}, map[enums.Parameter]float64{enums.Temp: 5.5}, enums.DWDHourly)

	ts := New(f, []typing.Station{{ID: "10637"}}, enums.Hourly, time.Time{}, time.Time{})
	res := ts.Fetch(FetchOptions{Squash: true, Units: units.Metric})
	if res.Frame.Len() != 1 {
		t.Fatalf("expected squash to collapse 3 rows into 1, got %d", res.Frame.Len())
	}
	if v := res.Frame.Columns[0].Values[0]; v != 5.5 {
		t.Fatalf("expected highest-priority (DWDHourly) value 5.5, got %v", v)
	}
}

func TestFetchImperialConvertsTemperature(t *testing.T) {
	f := buildFrame(t)
	ts := New(f, []typing.Station{{ID: "10637"}}, enums.Daily, time.Time{}, time.Time{})
	res := ts.Fetch(FetchOptions{Squash: true, Units: units.Imperial})
	got := res.Frame.Col(enums.Temp).Values[0]
	want := units.CelsiusToFahrenheit(6.6)
	if got != want {
		t.Fatalf("expected imperial temp %v, got %v", want, got)
	}
}

func TestParametersAndEmpty(t *testing.T) {
	f := buildFrame(t)
	ts := New(f, nil, enums.Daily, time.Time{}, time.Time{})
	if ts.Empty() {
		t.Fatalf("expected non-empty frame")
	}
	if ts.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ts.Len())
	}
	params := ts.Parameters()
	if len(params) != 2 || params[0] != enums.Temp || params[1] != enums.RHum {
		t.Fatalf("unexpected parameters: %v", params)
	}
}
