// Package providers implements the provider registry and adapters (spec
// §4.4/§4.6): for a given (granularity, parameter), the registry returns
// the candidate providers capable of serving it, ordered by descending
// priority, the way original_source/meteostat/api/config.py's provider
// list is walked in priority order during dispatch.
package providers

import (
	"context"
	"sort"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/core/network"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
)

const coverageDateLayout = "2006-01-02"

// Deps bundles the shared collaborators every adapter needs: the fetch
// cache, an HTTP client and the process configuration. Adapters are pure
// functions of (Deps, ProviderRequest) so they can be unit tested against
// an httptest.Server without touching the real network.
type Deps struct {
	Cache  *cache.Cache
	Client *network.Client
	Config *config.Config
}

// Adapter fetches one (station, provider) task and returns it as a
// canonical Frame. A nil Frame with a nil error means "no data available"
// (spec §4.10: UnknownStation/NoDataAvailable return None, never throw);
// a non-nil error means the adapter itself failed unexpectedly.
type Adapter func(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error)

var registry = map[enums.Provider]Adapter{
	enums.MeteostatHourly:  MeteostatHourly,
	enums.MeteostatDaily:   MeteostatDaily,
	enums.MeteostatMonthly: MeteostatMonthly,

	enums.DWDHourly: DWDHourly,
	enums.DWDDaily:  DWDDaily,
	enums.DWDMosmix: DWDMosmix,
	enums.DWDPoi:    DWDPoi,

	enums.NOAAMetar:   NOAAMetar,
	enums.NOAAIsdLite: NOAAIsdLite,
	enums.NOAAGhcnd:   NOAAGhcnd,

	enums.MetNoForecast: MetNoForecast,

	enums.ECCCHourly: ECCCHourly,
	enums.ECCCDaily:  ECCCDaily,

	enums.GSAHourly:  GSAHourly,
	enums.GSADaily:   GSADaily,
	enums.GSAMonthly: GSAMonthly,
	enums.GSASynop:   GSASynop,
}

// Lookup returns the adapter registered for id, and whether one exists.
func Lookup(id enums.Provider) (Adapter, bool) {
	a, ok := registry[id]
	return a, ok
}

// IDs returns every registered provider id.
func IDs() []enums.Provider {
	return maps.Keys(registry)
}

// CandidatesFor returns the providers capable of serving parameter at
// granularity, ordered by descending priority then ascending id for
// ties — the deterministic ordering spec §5 requires before dispatch
// concatenation (e.g. spec §8 scenario 3: DWD_HOURLY > DWD_POI >
// DWD_MOSMIX at equal granularity).
func CandidatesFor(gran enums.Granularity, param enums.Parameter) []enums.Provider {
	var out []enums.Provider
	for id, meta := range enums.DefaultProviders {
		if meta.Granularity != gran {
			continue
		}
		if !meta.Parameters[param] {
			continue
		}
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b enums.Provider) int {
		ma, mb := enums.DefaultProviders[a], enums.DefaultProviders[b]
		if ma.Priority != mb.Priority {
			return mb.Priority - ma.Priority
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}

// CandidatesForStation narrows CandidatesFor to providers whose Depends
// identifiers the station actually carries and whose CoverageLo/CoverageHi
// window overlaps [start, end] (spec §4.6 step 1a: "a provider is a
// candidate for a request only if every identifier it depends on is
// present AND its declared coverage window overlaps the requested
// window"). A zero start or end is treated as unbounded on that side.
func CandidatesForStation(gran enums.Granularity, param enums.Parameter, station typing.Station, start, end time.Time) []enums.Provider {
	all := CandidatesFor(gran, param)
	out := make([]enums.Provider, 0, len(all))
	for _, id := range all {
		meta := enums.DefaultProviders[id]
		if !stationSatisfies(station, meta) {
			continue
		}
		if !coverageOverlaps(meta, start, end) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func stationSatisfies(s typing.Station, meta enums.ProviderMeta) bool {
	if len(meta.Countries) > 0 && !sliceContains(meta.Countries, s.Country) {
		return false
	}
	for _, dep := range meta.Depends {
		if !s.HasIdentifier(dep) {
			return false
		}
	}
	return true
}

// coverageOverlaps reports whether meta's declared [CoverageLo, CoverageHi]
// window overlaps the requested [start, end]. An unparseable or empty
// bound on either side is open, so a provider with no coverage bounds at
// all always overlaps.
func coverageOverlaps(meta enums.ProviderMeta, start, end time.Time) bool {
	if lo, ok := parseCoverageBound(meta.CoverageLo); ok && !end.IsZero() && end.Before(lo) {
		return false
	}
	if hi, ok := parseCoverageBound(meta.CoverageHi); ok && !start.IsZero() && start.After(hi) {
		return false
	}
	return true
}

func parseCoverageBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(coverageDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func sliceContains(hay []string, needle string) bool {
	for _, h := range hay {
		if h == needle {
			return true
		}
	}
	return false
}

// Priority returns the configured dispatch priority of id, used by the
// merge/squash engine's "larger wins" rule (spec §4.7).
func Priority(id enums.Provider) int {
	return enums.DefaultProviders[id].Priority
}

// sortedParams returns params sorted for deterministic iteration where
// Go map order would otherwise be unstable (adapters building df_dict
// column order, matching original_source's PARAMETER_MAPPING walk order).
func sortedParams(params []enums.Parameter) []enums.Parameter {
	out := append([]enums.Parameter(nil), params...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
