// Package interpolate implements the spatial interpolator (spec §4.9):
// given a TimeSeries covering one or more stations and a target Point,
// produces a synthetic single-station TimeSeries at that point via
// inverse-distance weighting, with lapse-rate temperature correction and
// nearest-neighbor handling for categorical parameters. Grounded on the
// great-circle haversine formula already used by internal/stations'
// Nearby query (spec §4.3), generalized from a SQL UDF expression into a
// per-timestamp, per-column weighting loop.
package interpolate

import (
	"math"

	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/timeseries"
	"github.com/dl-alexandre/meteo/internal/typing"
)

const earthRadiusMeters = 6371000.0

// SyntheticStationID is the station id assigned to an interpolation
// result's rows — there is no real station at an arbitrary Point.
const SyntheticStationID = "interpolated"

// Options configures one Interpolate call (spec §4.9).
type Options struct {
	// Power is the IDW exponent; spec default 2.
	Power float64
	// LapseRate is the temperature correction, K per 1000m of elevation
	// difference; spec default 6.5. Applied only when Point.Elevation is
	// non-nil, regardless of its numeric value (elevation 0 still
	// triggers correction — never test this field for truthiness).
	LapseRate float64
	// LapseRateThreshold (m) caps how much elevation difference feeds
	// into effective_distance; spec default 50.
	LapseRateThreshold float64
	// Categorical names additional parameters (beyond WDir/Coco, which
	// are always categorical) to interpolate by nearest-neighbor instead
	// of IDW.
	Categorical []enums.Parameter
	// LapseRateParameters names the parameters lapse-rate correction
	// applies to (spec §4.9: "temp, tmin, tmax, or the caller-provided
	// list"). Nil defaults to {Temp, TMin, TMax} in DefaultOptions.
	LapseRateParameters []enums.Parameter
	// StationID overrides the synthetic result's station id; "" defaults
	// to SyntheticStationID. The public API assigns a fresh uuid here so
	// repeated interpolate() calls don't collide in a combined frame.
	StationID string
}

// DefaultOptions matches spec §6's public interpolate(...) signature
// defaults: lapse_rate=6.5, lapse_rate_threshold=50, power=2, and the
// default lapse-rate parameter set {temp, tmin, tmax} (config.Config's
// LapseRateParameters default).
func DefaultOptions() Options {
	return Options{
		Power:               2,
		LapseRate:           6.5,
		LapseRateThreshold:  50,
		LapseRateParameters: []enums.Parameter{enums.Temp, enums.TMin, enums.TMax},
	}
}

// OptionsFromConfig returns DefaultOptions with LapseRateParameters
// overridden from cfg.LapseRateParameters, so a process-wide config change
// (spec §4.9's "caller-provided list") reaches every Interpolate call that
// doesn't override it explicitly. A nil cfg or empty list leaves the
// {Temp, TMin, TMax} default in place.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg != nil && len(cfg.LapseRateParameters) > 0 {
		opts.LapseRateParameters = cfg.LapseRateParameters
	}
	return opts
}

func (o Options) appliesLapseRate(p enums.Parameter) bool {
	for _, lp := range o.LapseRateParameters {
		if lp == p {
			return true
		}
	}
	return false
}

func (o Options) isCategorical(p enums.Parameter) bool {
	if desc, ok := enums.Registry[p]; ok && desc.Categorical {
		return true
	}
	for _, c := range o.Categorical {
		if c == p {
			return true
		}
	}
	return false
}

// Interpolate produces a single-station TimeSeries at point, one row per
// distinct timestamp present in ts, per spec §4.9.
func Interpolate(ts timeseries.TimeSeries, point typing.Point, opts Options) timeseries.TimeSeries {
	if opts.Power == 0 {
		opts.Power = 2
	}
	if opts.LapseRateParameters == nil {
		opts.LapseRateParameters = []enums.Parameter{enums.Temp, enums.TMin, enums.TMax}
	}
	stationID := opts.StationID
	if stationID == "" {
		stationID = SyntheticStationID
	}

	stationElev := make(map[string]float64, len(ts.Stations))
	stationDist := make(map[string]float64, len(ts.Stations))
	for _, st := range ts.Stations {
		stationElev[st.ID] = st.Elevation
		stationDist[st.ID] = effectiveDistance(st, point, opts)
	}

	byTime := map[int64][]int{}
	var order []int64
	for i, k := range ts.Frame.Keys {
		if _, ok := byTime[k.UnixSec]; !ok {
			order = append(order, k.UnixSec)
		}
		byTime[k.UnixSec] = append(byTime[k.UnixSec], i)
	}

	params := ts.Frame.Params()
	out := frame.New(params)
	for _, unixSec := range order {
		rows := byTime[unixSec]
		values := make(map[enums.Parameter]float64, len(params))
		for _, c := range ts.Frame.Columns {
			if opts.isCategorical(c.Param) {
				values[c.Param] = nearestNeighbor(ts.Frame, c, rows, stationDist)
			} else {
				values[c.Param] = idw(ts.Frame, c, rows, stationDist, stationElev, point, opts)
			}
		}
		out.AddRow(frame.Key{Station: stationID, UnixSec: unixSec}, values, "")
	}
	out.SortStable()

	return timeseries.New(out, []typing.Station{{ID: stationID, Latitude: point.Latitude, Longitude: point.Longitude}}, ts.Granularity, ts.Start, ts.End)
}

// effectiveDistance is the great-circle distance from station to point,
// plus an elevation penalty above lapse_rate_threshold (spec §4.9:
// "Elevation in the distance term").
func effectiveDistance(st typing.Station, point typing.Point, opts Options) float64 {
	horizontal := haversine(st.Latitude, st.Longitude, point.Latitude, point.Longitude)
	if point.Elevation == nil {
		return horizontal
	}
	elevDiff := math.Abs(st.Elevation - *point.Elevation)
	if elevDiff <= opts.LapseRateThreshold {
		return horizontal
	}
	excess := elevDiff - opts.LapseRateThreshold
	return horizontal + excess
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1, rlat2 := lat1*math.Pi/180, lat2*math.Pi/180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// nearestNeighbor picks the value from the candidate row with the
// smallest effective_distance that isn't NaN (spec §4.9 step 2a).
func nearestNeighbor(f *frame.Frame, c *frame.Column, rows []int, dist map[string]float64) float64 {
	best := math.NaN()
	bestDist := math.Inf(1)
	for _, i := range rows {
		v := c.Values[i]
		if math.IsNaN(v) {
			continue
		}
		d := dist[f.Keys[i].Station]
		if d < bestDist {
			bestDist = d
			best = v
		}
	}
	return math.Round(best)
}

// idw applies inverse-distance weighting with lapse-rate correction to
// one column at one timestamp (spec §4.9 step 2b, and "Lapse-rate
// correction").
func idw(f *frame.Frame, c *frame.Column, rows []int, dist, elev map[string]float64, point typing.Point, opts Options) float64 {
	applyLapse := opts.appliesLapseRate(c.Param) && point.Elevation != nil && opts.LapseRate != 0

	var weightedSum, weightSum float64
	for _, i := range rows {
		v := c.Values[i]
		if math.IsNaN(v) {
			continue
		}
		station := f.Keys[i].Station
		d := dist[station]
		if applyLapse {
			v += (opts.LapseRate / 1000) * (elev[station] - *point.Elevation)
		}
		if d == 0 {
			return round1(v)
		}
		w := 1 / math.Pow(d, opts.Power)
		if math.IsInf(w, 0) || math.IsNaN(w) || w == 0 {
			continue
		}
		weightedSum += w * v
		weightSum += w
	}
	if weightSum == 0 || math.IsNaN(weightedSum) || math.IsInf(weightedSum, 0) {
		return math.NaN()
	}
	result := weightedSum / weightSum
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return math.NaN()
	}
	return round1(result)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
