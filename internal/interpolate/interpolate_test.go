package interpolate

import (
	"math"
	"testing"
	"time"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/timeseries"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// stationsAround10637 models spec.md §8 scenario 4: a target point roughly
// between a low-elevation and a high-elevation station.
func stationsAround10637() []typing.Station {
	return []typing.Station{
		{ID: "10637", Latitude: 50.0264, Longitude: 8.5231, Elevation: 111},
		{ID: "10635", Latitude: 50.5, Longitude: 8.6, Elevation: 805},
	}
}

func buildTwoStationFrame(t *testing.T, ts0 time.Time) *frame.Frame {
	t.Helper()
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: 10.0}, enums.DWDHourly)
	f.AddRow(frame.Key{Station: "10635", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: 4.0}, enums.DWDHourly)
	return f
}

func TestInterpolateTempBetweenStationValues(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := buildTwoStationFrame(t, ts0)
	series := timeseries.New(f, stationsAround10637(), enums.Hourly, ts0, ts0)

	point, err := typing.NewPoint(50.3167, 8.5, nil)
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	result := Interpolate(series, point, DefaultOptions())
	if result.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", result.Len())
	}
	got := result.Frame.Col(enums.Temp).Values[0]
	if !(got > 4.0 && got < 10.0) {
		t.Fatalf("expected interpolated temp strictly between 4.0 and 10.0, got %v", got)
	}
}

func TestInterpolateExactStationMatchUsesStationValueDirectly(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	stations := stationsAround10637()
	f := buildTwoStationFrame(t, ts0)
	series := timeseries.New(f, stations, enums.Hourly, ts0, ts0)

	exact := stations[0]
	point, _ := typing.NewPoint(exact.Latitude, exact.Longitude, nil)
	result := Interpolate(series, point, DefaultOptions())
	got := result.Frame.Col(enums.Temp).Values[0]
	if got != 10.0 {
		t.Fatalf("expected exact station match to short-circuit to 10.0, got %v", got)
	}
}

func TestInterpolateAllNaNColumnYieldsNaN(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: math.NaN()}, enums.DWDHourly)
	series := timeseries.New(f, stationsAround10637()[:1], enums.Hourly, ts0, ts0)

	point, _ := typing.NewPoint(50.3167, 8.5, nil)
	result := Interpolate(series, point, DefaultOptions())
	got := result.Frame.Col(enums.Temp).Values[0]
	if !math.IsNaN(got) {
		t.Fatalf("expected NaN when every station value is NaN, got %v", got)
	}
}

func TestLapseRateElevationZeroWarmerThanElevationNone(t *testing.T) {
	// spec.md §8 scenario 5: elevation=0 must still trigger lapse-rate
	// correction (unlike elevation=nil), producing a warmer mean temp
	// than the uncorrected case for stations above sea level.
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: "10635", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Temp: 4.0}, enums.DWDHourly)
	station := typing.Station{ID: "10635", Latitude: 50.5, Longitude: 8.6, Elevation: 805}
	series := timeseries.New(f, []typing.Station{station}, enums.Hourly, ts0, ts0)

	zero := 0.0
	pointZeroElev, _ := typing.NewPoint(50.3167, 8.5, &zero)
	pointNoElev, _ := typing.NewPoint(50.3167, 8.5, nil)

	opts := DefaultOptions()
	withElev := Interpolate(series, pointZeroElev, opts)
	withoutElev := Interpolate(series, pointNoElev, opts)

	gotWith := withElev.Frame.Col(enums.Temp).Values[0]
	gotWithout := withoutElev.Frame.Col(enums.Temp).Values[0]
	if gotWith-gotWithout < 0.3 {
		t.Fatalf("expected elevation=0 correction to be >=0.3K warmer than elevation=None; got with=%v without=%v", gotWith, gotWithout)
	}
}

// TestLapseRateParametersOverrideExtendsCorrectionToOtherParameters covers
// spec.md §4.9's "temp, tmin, tmax, or the caller-provided list": with the
// default options, a non-temperature parameter like Dwpt never receives
// the elevation correction; overriding LapseRateParameters to include it
// does.
func TestLapseRateParametersOverrideExtendsCorrectionToOtherParameters(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := frame.New([]enums.Parameter{enums.Dwpt})
	f.AddRow(frame.Key{Station: "10635", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.Dwpt: 4.0}, enums.DWDHourly)
	station := typing.Station{ID: "10635", Latitude: 50.5, Longitude: 8.6, Elevation: 805}
	series := timeseries.New(f, []typing.Station{station}, enums.Hourly, ts0, ts0)

	zero := 0.0
	point, _ := typing.NewPoint(50.3167, 8.5, &zero)

	defaultResult := Interpolate(series, point, DefaultOptions())

	overridden := DefaultOptions()
	overridden.LapseRateParameters = []enums.Parameter{enums.Dwpt}
	overriddenResult := Interpolate(series, point, overridden)

	gotDefault := defaultResult.Frame.Col(enums.Dwpt).Values[0]
	gotOverridden := overriddenResult.Frame.Col(enums.Dwpt).Values[0]
	if gotDefault != 4.0 {
		t.Fatalf("expected no lapse-rate correction on dwpt by default, got %v", gotDefault)
	}
	if gotOverridden == gotDefault {
		t.Fatalf("expected the LapseRateParameters override to change the dwpt result, both were %v", gotDefault)
	}
}

func TestInterpolateCategoricalUsesNearestNeighbor(t *testing.T) {
	ts0 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	f := frame.New([]enums.Parameter{enums.WDir})
	f.AddRow(frame.Key{Station: "10637", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.WDir: 90}, enums.DWDHourly)
	f.AddRow(frame.Key{Station: "10635", UnixSec: ts0.Unix()}, map[enums.Parameter]float64{enums.WDir: 270}, enums.DWDHourly)
	series := timeseries.New(f, stationsAround10637(), enums.Hourly, ts0, ts0)

	// Point nearest to 10637 (closer in both lat/lon).
	point, _ := typing.NewPoint(50.03, 8.53, nil)
	result := Interpolate(series, point, DefaultOptions())
	got := result.Frame.Col(enums.WDir).Values[0]
	if got != 90 {
		t.Fatalf("expected nearest-neighbor wind direction 90 from the closer station, got %v", got)
	}
}
