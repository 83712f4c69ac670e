// Package merge implements the merge/squash engine (spec §4.7): merge is
// a horizontal union of independent TimeSeries of the same granularity;
// squash collapses rows with identical (station, timestamp) but distinct
// sources into one row, keeping the highest-priority non-missing value
// per cell, per the teacher's priority-ordered chunk-preference logic
// generalized from "newest chunk wins" (cmd/cimis/ingest.go) to
// "highest-priority provider wins".
package merge

import (
	"fmt"
	"math"
	"sort"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/errs"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/providers"
)

// Granularity-bearing input to Merge; callers (internal/timeseries) wrap
// a Frame with its declared window so start/end can be reduced correctly.
type Series struct {
	Frame       *frame.Frame
	Granularity enums.Granularity
	Start, End  int64 // unix seconds, 0 = unbounded
}

// Merge unions the frames of one or more same-granularity series,
// reducing their declared windows to [min(start), max(end)] (spec §4.7:
// "Merge"). Rejects an empty input list and divergent granularities.
func Merge(series ...Series) (Series, error) {
	if len(series) == 0 {
		return Series{}, fmt.Errorf("%w: merge requires at least one series", errs.ErrEmptyMerge)
	}
	gran := series[0].Granularity
	frames := make([]*frame.Frame, len(series))
	start, end := series[0].Start, series[0].End
	for i, s := range series {
		if s.Granularity != gran {
			return Series{}, fmt.Errorf("%w: cannot merge %s with %s", errs.ErrIncompatibleMerge, gran, s.Granularity)
		}
		frames[i] = s.Frame
		if s.Start != 0 && (start == 0 || s.Start < start) {
			start = s.Start
		}
		if s.End > end {
			end = s.End
		}
	}
	out := frame.Concat(frames...)
	out.SortStable()
	return Series{Frame: out, Granularity: gran, Start: start, End: end}, nil
}

// SquashResult is a squashed Frame plus, per parameter, a parallel
// per-row provider attribution column — the `<param>_source` columns
// spec §4.7 calls for under "sources=true" views.
type SquashResult struct {
	Frame   *frame.Frame
	Sources map[enums.Parameter][]enums.Provider
}

// Squash collapses rows sharing (station, timestamp) but differing by
// source into one row per (station, timestamp), filling each parameter
// cell from the highest-priority row that carries a non-NaN value (spec
// §4.7: "Squash"). When keepSources is false, the per-parameter
// attribution map is omitted (squash=false / sources=false fast path).
func Squash(f *frame.Frame, keepSources bool) *SquashResult {
	type group struct {
		station string
		unixSec int64
	}
	order := []group{}
	byGroup := map[group][]int{}
	for i, k := range f.Keys {
		g := group{k.Station, k.UnixSec}
		if _, ok := byGroup[g]; !ok {
			order = append(order, g)
		}
		byGroup[g] = append(byGroup[g], i)
	}

	params := f.Params()
	out := frame.New(params)
	sources := map[enums.Parameter][]enums.Provider{}
	if keepSources {
		for _, p := range params {
			sources[p] = make([]enums.Provider, 0, len(order))
		}
	}

	for _, g := range order {
		rows := byGroup[g]
		sort.SliceStable(rows, func(a, b int) bool {
			return providers.Priority(f.Keys[rows[a]].Source) > providers.Priority(f.Keys[rows[b]].Source)
		})

		values := make(map[enums.Parameter]float64, len(params))
		rowSources := make(map[enums.Parameter]enums.Provider, len(params))
		for _, c := range f.Columns {
			v := math.NaN()
			var src enums.Provider
			for _, ri := range rows {
				if cand := c.Values[ri]; !math.IsNaN(cand) {
					v = cand
					src = c.Source[ri]
					break
				}
			}
			values[c.Param] = v
			rowSources[c.Param] = src
		}
		out.AddRow(frame.Key{Station: g.station, UnixSec: g.unixSec}, values, "")
		if keepSources {
			for _, p := range params {
				sources[p] = append(sources[p], rowSources[p])
			}
		}
	}

	res := &SquashResult{Frame: out}
	if keepSources {
		res.Sources = sources
	}
	return res
}

// Unsquashed retains one row per original (station, timestamp, source)
// triple (spec §4.7: "When the caller requests squash=false"); this is
// simply the input frame sorted deterministically, since Frame already
// carries one row per source before squashing.
func Unsquashed(f *frame.Frame) *frame.Frame {
	out := frame.Concat(f)
	out.SortStable()
	return out
}
