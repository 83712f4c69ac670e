// Package timeseries implements the post-dispatch façade (spec §4.8):
// pairs a Frame with its originating stations, the requested [start, end]
// window, and granularity, and exposes the lazy transformation surface
// (fetch/count/completeness/validate) the public API builds on. Grounded
// on the teacher's post-fetch query result shape (cmd/cimis/query.go's
// row materialization over a cache-backed reader), generalized from a
// single-chunk reader to a multi-provider TimeSeries.
package timeseries

import (
	"math"
	"time"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/merge"
	"github.com/dl-alexandre/meteo/internal/typing"
	"github.com/dl-alexandre/meteo/internal/units"
)

// TimeSeries pairs a dispatch result with the request context needed for
// completeness math and fill (spec §4.8).
type TimeSeries struct {
	Frame       *frame.Frame
	Stations    []typing.Station
	Granularity enums.Granularity
	Start, End  time.Time // zero = unset; completeness returns nil in that case
}

// New wraps a dispatched Frame with its originating request context.
func New(f *frame.Frame, stations []typing.Station, gran enums.Granularity, start, end time.Time) TimeSeries {
	return TimeSeries{Frame: f, Stations: stations, Granularity: gran, Start: start, End: end}
}

// FetchOptions configures the one materializing operation, fetch (spec
// §4.8).
type FetchOptions struct {
	Squash   bool // collapse (station,time,source) rows to (station,time)
	Sources  bool // attach <param>_source columns (only meaningful when Squash)
	Fill     bool // insert rows for the canonical time grid where missing
	Units    units.System
	Timezone string // IANA zone; "" = naive UTC
}

// DefaultFetchOptions matches the façade's conventional default: squash
// on, no source columns, no gap-filling, metric units, naive UTC.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{Squash: true, Units: units.Metric}
}

// Result is fetch's materialized output: the transformed frame plus,
// when requested, the per-parameter source attribution produced by
// squashing.
type Result struct {
	Frame   *frame.Frame
	Sources map[enums.Parameter][]enums.Provider
}

// Fetch applies squash, gap-fill, unit conversion and timezone
// localization in that order, per spec §4.8.
func (ts TimeSeries) Fetch(opts FetchOptions) Result {
	f := ts.Frame
	var sources map[enums.Parameter][]enums.Provider

	if opts.Squash {
		sq := merge.Squash(f, opts.Sources)
		f = sq.Frame
		sources = sq.Sources
	} else {
		f = merge.Unsquashed(f)
	}

	if opts.Fill {
		f = ts.fillGrid(f)
	}

	if opts.Units != units.Metric {
		f = convertUnits(f, opts.Units)
	}

	if opts.Timezone != "" {
		f = localizeTimezone(f, opts.Timezone)
	}

	return Result{Frame: f, Sources: sources}
}

// stepFor returns the canonical time-grid step for a granularity. Monthly
// and Normals use a 1-month step handled specially by fillGrid.
func stepFor(gran enums.Granularity) time.Duration {
	switch gran {
	case enums.Hourly:
		return time.Hour
	case enums.Daily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// fillGrid inserts NaN-valued rows for any (station, timestamp) missing
// from the canonical [start, end] grid at the series' granularity (spec
// §4.8: "fill=true").
func (ts TimeSeries) fillGrid(f *frame.Frame) *frame.Frame {
	if ts.Start.IsZero() || ts.End.IsZero() {
		return f
	}
	present := map[frame.Key]bool{}
	for _, k := range f.Keys {
		present[frame.Key{Station: k.Station, UnixSec: k.UnixSec}] = true
	}

	out := frame.New(f.Params())
	for _, st := range ts.Stations {
		for _, t := range gridTimes(ts.Granularity, ts.Start, ts.End) {
			key := frame.Key{Station: st.ID, UnixSec: t.Unix()}
			if present[key] {
				continue
			}
			values := make(map[enums.Parameter]float64, len(f.Params()))
			for _, p := range f.Params() {
				values[p] = math.NaN()
			}
			out.AddRow(key, values, "")
		}
	}
	merged := frame.Concat(f, out)
	merged.SortStable()
	return merged
}

func gridTimes(gran enums.Granularity, start, end time.Time) []time.Time {
	var out []time.Time
	if gran == enums.Monthly || gran == enums.Normals {
		for t := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !t.After(end); t = t.AddDate(0, 1, 0) {
			out = append(out, t)
		}
		return out
	}
	step := stepFor(gran)
	if step == 0 {
		return out
	}
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

func convertUnits(f *frame.Frame, system units.System) *frame.Frame {
	out := frame.New(f.Params())
	for i, k := range f.Keys {
		values := make(map[enums.Parameter]float64, len(f.Columns))
		for _, c := range f.Columns {
			values[c.Param] = convertCell(c.Param, c.Values[i], system)
		}
		var src enums.Provider
		if len(f.Columns) > 0 {
			src = f.Columns[0].Source[i]
		}
		out.AddRow(k, values, src)
	}
	return out
}

// convertCell applies the façade's "units=" system conversion to one
// cell, per spec §6's option table: imperial converts temperatures to
// °F, speeds to mph, and depths to inches; scientific SI converts
// temperatures to Kelvin and speeds to m/s. Parameters with no
// system-specific unit (pressure, humidity, categorical columns) pass
// through unchanged.
func convertCell(p enums.Parameter, v float64, system units.System) float64 {
	switch system {
	case units.Imperial:
		switch p {
		case enums.Temp, enums.TMin, enums.TMax, enums.TXMn, enums.TXMx, enums.Dwpt:
			return units.CelsiusToFahrenheit(v)
		case enums.WSpd, enums.WPgt:
			return units.KmhToMph(v)
		case enums.Prcp:
			return units.MillimetersToInches(v)
		case enums.Snow, enums.SnWD:
			return units.MillimetersToInches(v)
		}
	case units.ScientificSI:
		switch p {
		case enums.Temp, enums.TMin, enums.TMax, enums.TXMn, enums.TXMx, enums.Dwpt:
			return units.CelsiusToKelvin(v)
		case enums.WSpd, enums.WPgt:
			return units.KmhToMs(v)
		}
	}
	return v
}

// localizeTimezone relabels the frame's naive-UTC timestamps as local
// wall-clock time in tz (spec §4.8: "the time index is localized then
// converted"). A Key's UnixSec is an absolute instant, so converting it
// with .In(loc) alone changes nothing observable (Unix() is invariant
// under location); the index is naive-UTC (spec §3), so "converting" it
// means rebuilding each timestamp's wall-clock fields in loc and storing
// those as if they were UTC — i.e. shifting the numeric value by the
// zone's offset at that instant, the same naive-local trick the teacher
// has no analogue for but pandas' tz_localize/tz_convert pair produces.
func localizeTimezone(f *frame.Frame, tz string) *frame.Frame {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return f
	}
	out := frame.New(f.Params())
	for i, k := range f.Keys {
		local := time.Unix(k.UnixSec, 0).UTC().In(loc)
		naiveLocal := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
		values := make(map[enums.Parameter]float64, len(f.Columns))
		for _, c := range f.Columns {
			values[c.Param] = c.Values[i]
		}
		out.AddRow(frame.Key{Station: k.Station, UnixSec: naiveLocal.Unix(), Source: k.Source}, values, k.Source)
	}
	return out
}

// Count returns the non-NaN cell count, overall or for one parameter
// (spec §4.8: "count(param?)").
func (ts TimeSeries) Count(param enums.Parameter) int {
	return ts.Frame.CountNonNaN(param)
}

// Completeness divides non-NaN count by expected_rows × stations ×
// columns (spec §4.8). Returns (0, false) when start or end is unset —
// the boolean distinguishes "unset" (None) from a genuine 0.0.
func (ts TimeSeries) Completeness(param enums.Parameter) (float64, bool) {
	if ts.Start.IsZero() || ts.End.IsZero() {
		return 0, false
	}
	grid := gridTimes(ts.Granularity, ts.Start, ts.End)
	cols := ts.Frame.Params()
	nCols := len(cols)
	if param != "" {
		nCols = 1
	}
	expected := len(grid) * len(ts.Stations) * nCols
	if expected == 0 {
		return 0, true
	}
	return float64(ts.Frame.CountNonNaN(param)) / float64(expected), true
}

// Validate applies each Parameter's validator to its column, returning
// false if any present value fails its range/membership check (spec
// §4.8: "validate() → bool").
func (ts TimeSeries) Validate() bool {
	for _, c := range ts.Frame.Columns {
		desc, ok := enums.Registry[c.Param]
		if !ok || desc.Validate == nil {
			continue
		}
		for _, v := range c.Values {
			if math.IsNaN(v) {
				continue
			}
			if !desc.Validate(v) {
				return false
			}
		}
	}
	return true
}

// Parameters returns the declared column set, in order.
func (ts TimeSeries) Parameters() []enums.Parameter { return ts.Frame.Params() }

// Empty reports whether the underlying frame has any rows.
func (ts TimeSeries) Empty() bool { return ts.Frame.Empty() }

// Len returns the row count.
func (ts TimeSeries) Len() int { return ts.Frame.Len() }
