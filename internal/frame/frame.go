// Package frame implements the canonical tabular output (spec §3/§6): a
// mapping from (station, time[, source]) to a row of parameter values,
// with per-cell source attribution. Modeled as parallel value/source
// arrays per column rather than a flat row vector, per spec §9's design
// note — this is the columnar shape the merge/squash engine and the
// interpolator both operate on directly.
package frame

import (
	"math"
	"sort"

	"github.com/dl-alexandre/meteo/internal/enums"
)

// Key identifies one row's logical index: station, timestamp and, once
// squashed, no source; before squashing, one row exists per source.
type Key struct {
	Station string
	UnixSec int64
	Source  enums.Provider
}

// Column holds one parameter's values and per-cell source attribution,
// aligned 1:1 with the owning Frame's row order.
type Column struct {
	Param  enums.Parameter
	Values []float64        // math.NaN() = missing
	Source []enums.Provider // "" = unknown/unattributed
}

// Frame is the canonical tabular result. Rows are stored in a flat slice
// of Keys with parallel Columns; row i's cell for column c is Columns[c]
// at index i.
type Frame struct {
	Keys    []Key
	Columns []*Column
	colIdx  map[enums.Parameter]int
}

// New creates an empty Frame with the given parameter columns, in order.
func New(params []enums.Parameter) *Frame {
	f := &Frame{colIdx: make(map[enums.Parameter]int, len(params))}
	for _, p := range params {
		f.colIdx[p] = len(f.Columns)
		f.Columns = append(f.Columns, &Column{Param: p})
	}
	return f
}

// Params returns the frame's column identifiers, in order.
func (f *Frame) Params() []enums.Parameter {
	out := make([]enums.Parameter, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = c.Param
	}
	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Keys) }

// Empty reports whether the frame has no rows.
func (f *Frame) Empty() bool { return len(f.Keys) == 0 }

// Col returns the column for a parameter, adding it (filled with NaN for
// existing rows) if it doesn't already exist.
func (f *Frame) Col(p enums.Parameter) *Column {
	if idx, ok := f.colIdx[p]; ok {
		return f.Columns[idx]
	}
	c := &Column{Param: p, Values: make([]float64, len(f.Keys)), Source: make([]enums.Provider, len(f.Keys))}
	for i := range c.Values {
		c.Values[i] = math.NaN()
	}
	f.colIdx[p] = len(f.Columns)
	f.Columns = append(f.Columns, c)
	return c
}

// AddRow appends one row identified by key, with the given per-parameter
// values; parameters present in the frame but absent from values are
// filled with NaN (spec §4.6 step 2: "missing columns filled with the
// parameter's NaN sentinel").
func (f *Frame) AddRow(key Key, values map[enums.Parameter]float64, source enums.Provider) {
	f.Keys = append(f.Keys, key)
	for _, c := range f.Columns {
		v, ok := values[c.Param]
		if !ok {
			v = math.NaN()
		}
		c.Values = append(c.Values, v)
		c.Source = append(c.Source, source)
	}
}

// Concat concatenates frames, unioning their column sets. Row order is
// the input order; callers that need determinism must sort before
// calling (spec §5).
func Concat(frames ...*Frame) *Frame {
	var params []enums.Parameter
	seen := map[enums.Parameter]bool{}
	for _, fr := range frames {
		for _, p := range fr.Params() {
			if !seen[p] {
				seen[p] = true
				params = append(params, p)
			}
		}
	}
	out := New(params)
	for _, fr := range frames {
		for i, key := range fr.Keys {
			values := make(map[enums.Parameter]float64, len(fr.Columns))
			var rowSource enums.Provider
			for _, c := range fr.Columns {
				values[c.Param] = c.Values[i]
			}
			if key.Source != "" {
				rowSource = key.Source
			} else if len(fr.Columns) > 0 {
				rowSource = fr.Columns[0].Source[i]
			}
			out.AddRow(key, values, rowSource)
		}
	}
	return out
}

// SortStable orders rows by (station, time, source) ascending, matching
// the façade's display ordering requirement (spec §3: "Index ordering
// irrelevant for semantics; façade sorts for display").
func (f *Frame) SortStable() {
	idx := make([]int, len(f.Keys))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := f.Keys[idx[a]], f.Keys[idx[b]]
		if ka.Station != kb.Station {
			return ka.Station < kb.Station
		}
		if ka.UnixSec != kb.UnixSec {
			return ka.UnixSec < kb.UnixSec
		}
		return ka.Source < kb.Source
	})
	f.reorder(idx)
}

func (f *Frame) reorder(idx []int) {
	newKeys := make([]Key, len(idx))
	for i, j := range idx {
		newKeys[i] = f.Keys[j]
	}
	f.Keys = newKeys
	for _, c := range f.Columns {
		newVals := make([]float64, len(idx))
		newSrc := make([]enums.Provider, len(idx))
		for i, j := range idx {
			newVals[i] = c.Values[j]
			newSrc[i] = c.Source[j]
		}
		c.Values = newVals
		c.Source = newSrc
	}
}

// FilterRows keeps only rows for which keep returns true.
func (f *Frame) FilterRows(keep func(Key) bool) *Frame {
	var idx []int
	for i, k := range f.Keys {
		if keep(k) {
			idx = append(idx, i)
		}
	}
	out := New(f.Params())
	for _, i := range idx {
		values := make(map[enums.Parameter]float64, len(f.Columns))
		var src enums.Provider
		for _, c := range f.Columns {
			values[c.Param] = c.Values[i]
			src = c.Source[i]
		}
		out.AddRow(f.Keys[i], values, src)
	}
	return out
}

// CountNonNaN returns the number of non-missing cells, overall (param ==
// "") or for a single column.
func (f *Frame) CountNonNaN(param enums.Parameter) int {
	n := 0
	for _, c := range f.Columns {
		if param != "" && c.Param != param {
			continue
		}
		for _, v := range c.Values {
			if !math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}
