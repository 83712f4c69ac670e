// Package meteo is the public facade (spec §6): hourly/daily/monthly/
// normals/interpolate/merge plus the stations sub-surface, wiring
// validate -> dispatch -> merge/squash -> timeseries -> interpolate into
// the operations a caller actually invokes. Grounded on the teacher's
// cmd/cimis top-level Client wiring (one struct bundling config, cache,
// network and a catalog handle, exposing verb methods).
package meteo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/core/config"
	"github.com/dl-alexandre/meteo/internal/core/network"
	"github.com/dl-alexandre/meteo/internal/dispatch"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/errs"
	"github.com/dl-alexandre/meteo/internal/interpolate"
	"github.com/dl-alexandre/meteo/internal/merge"
	"github.com/dl-alexandre/meteo/internal/providers"
	"github.com/dl-alexandre/meteo/internal/stations"
	"github.com/dl-alexandre/meteo/internal/timeseries"
	"github.com/dl-alexandre/meteo/internal/typing"
	"github.com/dl-alexandre/meteo/internal/validate"
)

// Client bundles the collaborators every public operation needs:
// configuration, the on-disk cache, the HTTP client, and the station
// catalog handle.
type Client struct {
	Config  *config.Config
	Cache   *cache.Cache
	Network *network.Client
	Catalog *stations.Catalog
}

// Open builds a Client from cfg as given (config.Default() when cfg is
// nil; environment overrides apply only if the caller ran cfg.LoadEnv),
// opening (and lazily migrating) the station catalog at cfg's
// configured path.
func Open(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	c, err := cache.New(cfg.CacheDirectory, cfg.CacheEnable, 256)
	if err != nil {
		return nil, fmt.Errorf("meteo: opening cache: %w", err)
	}
	catalog, err := stations.Open(cfg.StationsDBFile)
	if err != nil {
		return nil, fmt.Errorf("meteo: opening station catalog: %w", err)
	}
	return &Client{
		Config:  cfg,
		Cache:   c,
		Network: network.New(),
		Catalog: catalog,
	}, nil
}

// Close releases the catalog handle.
func (cl *Client) Close() error { return cl.Catalog.Close() }

func (cl *Client) deps() providers.Deps {
	return providers.Deps{Cache: cl.Cache, Client: cl.Network, Config: cl.Config}
}

// run validates req, dispatches it across the provider fan-out, and
// returns a TimeSeries windowed to req's (possibly now-defaulted) bounds.
func (cl *Client) run(ctx context.Context, req typing.Request) (timeseries.TimeSeries, error) {
	validate.Normalize(&req, time.Now())
	if err := validate.Check(req, cl.Config.BlockLargeRequests); err != nil {
		return timeseries.TimeSeries{}, err
	}
	f, err := dispatch.Run(ctx, cl.deps(), req)
	if err != nil {
		return timeseries.TimeSeries{}, err
	}
	return timeseries.New(f, req.Stations, req.Granularity, req.Start, req.End), nil
}

func (cl *Client) resolveStations(ids []string) ([]typing.Station, error) {
	out := make([]typing.Station, 0, len(ids))
	for _, id := range ids {
		s, ok, err := cl.Catalog.Meta(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue // spec §4.10: UnknownStation -> caller receives fewer stations, no error
		}
		out = append(out, s)
	}
	return out, nil
}

// Hourly fetches hourly observations for the named stations over
// [start, end] (spec §6: "hourly(stations, start, end, parameters?,
// providers?, timezone?)"). providerIDs narrows dispatch to that
// explicit candidate set when non-empty; timezone, when non-empty,
// reinterprets start/end as wall-clock times in that IANA zone rather
// than naive UTC (spec §4.6 step 4).
func (cl *Client) Hourly(ctx context.Context, stationIDs []string, start, end time.Time, params []enums.Parameter, providerIDs []enums.Provider, timezone string) (timeseries.TimeSeries, error) {
	return cl.fetchGranularity(ctx, enums.Hourly, stationIDs, start, end, params, providerIDs, timezone)
}

// Daily fetches daily observations (spec §6).
func (cl *Client) Daily(ctx context.Context, stationIDs []string, start, end time.Time, params []enums.Parameter, providerIDs []enums.Provider, timezone string) (timeseries.TimeSeries, error) {
	return cl.fetchGranularity(ctx, enums.Daily, stationIDs, start, end, params, providerIDs, timezone)
}

// Monthly fetches monthly aggregates (spec §6).
func (cl *Client) Monthly(ctx context.Context, stationIDs []string, start, end time.Time, params []enums.Parameter, providerIDs []enums.Provider, timezone string) (timeseries.TimeSeries, error) {
	return cl.fetchGranularity(ctx, enums.Monthly, stationIDs, start, end, params, providerIDs, timezone)
}

// Normals fetches 30-year climate normals (spec §6); start/end select the
// normals period's representative years.
func (cl *Client) Normals(ctx context.Context, stationIDs []string, start, end time.Time, params []enums.Parameter, providerIDs []enums.Provider, timezone string) (timeseries.TimeSeries, error) {
	return cl.fetchGranularity(ctx, enums.Normals, stationIDs, start, end, params, providerIDs, timezone)
}

func (cl *Client) fetchGranularity(ctx context.Context, gran enums.Granularity, stationIDs []string, start, end time.Time, params []enums.Parameter, providerIDs []enums.Provider, timezone string) (timeseries.TimeSeries, error) {
	sts, err := cl.resolveStations(stationIDs)
	if err != nil {
		return timeseries.TimeSeries{}, err
	}
	if len(params) == 0 {
		params = enums.DefaultParameters[gran]
	}
	return cl.run(ctx, typing.Request{
		Granularity: gran,
		Stations:    sts,
		Parameters:  params,
		Providers:   providerIDs,
		Start:       start,
		End:         end,
		Timezone:    timezone,
	})
}

// Merge unions independently-fetched TimeSeries of matching granularity
// into one (spec §4.7/§6).
func Merge(series ...timeseries.TimeSeries) (timeseries.TimeSeries, error) {
	if len(series) == 0 {
		return timeseries.TimeSeries{}, errs.ErrEmptyMerge
	}
	mergeSeries := make([]merge.Series, len(series))
	for i, s := range series {
		mergeSeries[i] = merge.Series{Frame: s.Frame, Granularity: s.Granularity, Start: unixOrZero(s.Start), End: unixOrZero(s.End)}
	}
	result, err := merge.Merge(mergeSeries...)
	if err != nil {
		return timeseries.TimeSeries{}, err
	}
	stationSet := map[string]typing.Station{}
	for _, s := range series {
		for _, st := range s.Stations {
			stationSet[st.ID] = st
		}
	}
	stationsOut := make([]typing.Station, 0, len(stationSet))
	for _, st := range stationSet {
		stationsOut = append(stationsOut, st)
	}
	return timeseries.New(result.Frame, stationsOut, result.Granularity, timeFromUnix(result.Start), timeFromUnix(result.End)), nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeFromUnix(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// Interpolate produces a synthetic single-location TimeSeries at point by
// spatially weighting ts's stations (spec §4.9/§6). Assigns a fresh
// synthetic station id so repeated calls composed via Merge don't
// collide.
func Interpolate(ts timeseries.TimeSeries, point typing.Point, opts interpolate.Options) timeseries.TimeSeries {
	if opts.StationID == "" {
		opts.StationID = "interp-" + uuid.NewString()
	}
	return interpolate.Interpolate(ts, point, opts)
}
