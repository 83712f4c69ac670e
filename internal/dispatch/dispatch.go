// Package dispatch implements the provider-dispatch engine (spec §4.6):
// for each (station, candidate provider) pair, builds a ProviderRequest
// and invokes the adapter concurrently, then concatenates and filters
// the results into one Frame. Grounded on the teacher's concurrent fetch
// shape (internal/api.Client issuing one HTTP call per chunk) generalized
// from a single-provider loop to a fan-out across (station, provider)
// pairs, using golang.org/x/sync/errgroup for the cancellation-propagating
// concurrency spec §5 asks for.
package dispatch

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/providers"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// task is one (station, provider) unit of work.
type task struct {
	station  typing.Station
	provider enums.Provider
}

// candidateTasks builds the (station, provider) task list for req,
// applying spec §4.6 step 1's filters: granularity match (already
// implicit in CandidatesForStation's gran param), parameter intersection,
// country/identifier gating, coverage-window overlap (step 1a), and an
// optional explicit provider narrowing. start/end are the already
// timezone-resolved window (see requestedWindow), so coverage is checked
// against the same instants the adapters will be asked to fetch.
func candidateTasks(req typing.Request, start, end time.Time) []task {
	var tasks []task
	for _, station := range req.Stations {
		seen := map[enums.Provider]bool{}
		for _, param := range req.Parameters {
			for _, id := range providers.CandidatesForStation(req.Granularity, param, station, start, end) {
				if seen[id] {
					continue
				}
				if len(req.Providers) > 0 && !providerIn(req.Providers, id) {
					continue
				}
				seen[id] = true
				tasks = append(tasks, task{station: station, provider: id})
			}
		}
	}
	return tasks
}

func providerIn(list []enums.Provider, id enums.Provider) bool {
	for _, p := range list {
		if p == id {
			return true
		}
	}
	return false
}

// Run executes the dispatch engine for req: it builds the task list,
// fans out adapter calls concurrently (each cancellable via ctx), then
// concatenates and filters to [req.Start, req.End]. A per-task adapter
// error is logged by the adapter itself and treated as "no data" (spec
// §4.10: provider failures degrade, they never abort the whole request)
// UNLESS the adapter returns a genuine Go error, which aborts the group —
// reserved for programmer errors (e.g. a malformed cache payload), not
// upstream failures.
func Run(ctx context.Context, deps providers.Deps, req typing.Request) (*frame.Frame, error) {
	start, end := requestedWindow(req)

	tasks := candidateTasks(req, start, end)
	results := make([]*frame.Frame, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			adapter, ok := providers.Lookup(t.provider)
			if !ok {
				return nil
			}
			pr := typing.ProviderRequest{
				Station:    t.station,
				Provider:   t.provider,
				Parameters: req.Parameters,
				Start:      start,
				End:        end,
			}
			f, err := adapter(gctx, deps, pr)
			if err != nil {
				return err
			}
			results[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	nonNil := make([]*frame.Frame, 0, len(results))
	for _, f := range results {
		if f != nil && !f.Empty() {
			nonNil = append(nonNil, f)
		}
	}
	if len(nonNil) == 0 {
		return frame.New(req.Parameters), nil
	}

	out := frame.Concat(nonNil...)
	out.SortStable()
	return filterWindow(out, start, end), nil
}

// requestedWindow resolves req's [Start, End] bound to the actual UTC
// instants the dispatch engine should fetch and filter against (spec
// §4.6 step 4: "filter rows to [start, end] in the station's timezone
// when a timezone is requested; otherwise in naive UTC"). When
// req.Timezone names a loadable zone, Start/End are read as wall-clock
// times in that zone rather than as already being UTC — this is what
// lets the same "15:00–17:00" request resolve to a different set of
// UTC instants (and so a different row 0 value) depending on the zone.
func requestedWindow(req typing.Request) (time.Time, time.Time) {
	if req.Timezone == "" {
		return req.Start, req.End
	}
	loc, err := time.LoadLocation(req.Timezone)
	if err != nil {
		return req.Start, req.End
	}
	return reinterpretInLocation(req.Start, loc), reinterpretInLocation(req.End, loc)
}

// reinterpretInLocation rebuilds t's wall-clock fields against loc,
// producing the UTC instant that wall-clock time denotes in that zone.
func reinterpretInLocation(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// filterWindow keeps only rows within [start, end] (spec §4.6 step 4);
// a zero bound on either side is unbounded on that side.
func filterWindow(f *frame.Frame, start, end time.Time) *frame.Frame {
	if start.IsZero() && end.IsZero() {
		return f
	}
	startSec := int64(math.MinInt64)
	endSec := int64(math.MaxInt64)
	if !start.IsZero() {
		startSec = start.Unix()
	}
	if !end.IsZero() {
		endSec = end.Unix()
	}
	return f.FilterRows(func(k frame.Key) bool {
		return k.UnixSec >= startSec && k.UnixSec <= endSec
	})
}

// Candidates exposes candidateTasks's station/provider pairs for callers
// that need to preview dispatch without executing it (e.g. tests).
func Candidates(req typing.Request) []struct {
	Station  typing.Station
	Provider enums.Provider
} {
	start, end := requestedWindow(req)
	tasks := candidateTasks(req, start, end)
	out := make([]struct {
		Station  typing.Station
		Provider enums.Provider
	}, len(tasks))
	for i, t := range tasks {
		out[i] = struct {
			Station  typing.Station
			Provider enums.Provider
		}{t.station, t.provider}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Station.ID != out[j].Station.ID {
			return out[i].Station.ID < out[j].Station.ID
		}
		return out[i].Provider < out[j].Provider
	})
	return out
}
