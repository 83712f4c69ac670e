package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
	"github.com/dl-alexandre/meteo/internal/units"
)

// GeoSphere Austria Data Hub adapters, grounded directly on
// original_source/meteostat/providers/gsa/{shared,hourly,daily,monthly}.py.
// Per the GSA Open Question (spec.md §9), only this "timestamps +
// parameters-array" response layout is implemented; the older
// per-feature-time-field layout (providers/gsadh/*) is not ported.

// gsaGeoJSON mirrors the response shape every klima-v2-* resource
// returns: top-level timestamps array, features[0].properties.parameters
// holding one {data: []float64} entry per requested parameter.
type gsaGeoJSON struct {
	Timestamps []string `json:"timestamps"`
	Features   []struct {
		Properties struct {
			Parameters map[string]struct {
				Data []*float64 `json:"data"`
			} `json:"parameters"`
		} `json:"properties"`
	} `json:"features"`
}

func (g gsaGeoJSON) column(name string) ([]*float64, bool) {
	if len(g.Features) == 0 {
		return nil, false
	}
	p, ok := g.Features[0].Properties.Parameters[name]
	if !ok {
		return nil, false
	}
	return p.Data, true
}

var gsaHourlyParamMapping = map[string]enums.Parameter{
	"tl": enums.Temp, "rr": enums.Prcp, "p": enums.Pres,
	"ff": enums.WSpd, "dd": enums.WDir, "rf": enums.RHum, "so_h": enums.TSun,
}

var gsaDailyParamMapping = map[string]enums.Parameter{
	"tl_mittel": enums.Temp, "rr": enums.Prcp, "p_mittel": enums.Pres,
	"rf_mittel": enums.RHum, "so_h": enums.TSun,
}

var gsaMonthlyParamMapping = map[string]enums.Parameter{
	"tl_mittel": enums.Temp, "tlmin": enums.TXMn, "tlmax": enums.TXMx,
	"tlmin_mittel": enums.TMin, "tlmax_mittel": enums.TMax, "rf_mittel": enums.RHum,
	"rr": enums.Prcp, "vv_mittel": enums.WSpd, "p": enums.Pres,
	"so_h": enums.TSun, "bewm_mittel": enums.CldC,
}

func gsaFetch(ctx context.Context, d Deps, resourceID string, dateLayout string, mapping map[string]enums.Parameter, req typing.ProviderRequest, identKey string, stationIDOverride string) (*gsaGeoJSON, error) {
	inverse := make(map[enums.Parameter]string, len(mapping))
	for k, v := range mapping {
		inverse[v] = k
	}
	var gsaParams []string
	for _, p := range req.Parameters {
		if k, ok := inverse[p]; ok {
			gsaParams = append(gsaParams, k)
		}
	}
	if len(gsaParams) == 0 {
		logger.Info("providers: no mappable GSA parameters for station %s", req.Station.ID)
		return nil, nil
	}

	stationID := stationIDOverride
	if stationID == "" {
		stationID = req.Station.Identifiers[identKey]
	}
	if stationID == "" {
		return nil, nil
	}

	params := url.Values{}
	joined := ""
	for i, p := range gsaParams {
		if i > 0 {
			joined += ","
		}
		joined += p
	}
	params.Set("parameters", joined)
	params.Set("station_ids", stationID)
	params.Set("start", req.Start.Format(dateLayout))
	params.Set("end", req.End.Format(dateLayout))
	params.Set("output_format", "geojson")

	base := d.Config.GSAAPIBaseURL
	var out gsaGeoJSON
	ok, err := getJSON(ctx, d.Client, fmt.Sprintf("%s/station/historical/%s", base, resourceID), params, &out)
	if err != nil {
		return nil, err
	}
	if !ok || len(out.Timestamps) == 0 || len(out.Features) == 0 {
		return nil, nil
	}
	return &out, nil
}

func gsaBuildFrame(provider enums.Provider, stationID string, g *gsaGeoJSON, mapping map[string]enums.Parameter, wanted []enums.Parameter, postProcess func(enums.Parameter, float64) float64) *frame.Frame {
	f := frame.New(wanted)
	cols := make(map[enums.Parameter][]*float64, len(mapping))
	for gsaName, mp := range mapping {
		if data, ok := g.column(gsaName); ok {
			cols[mp] = data
		}
	}
	for i, ts := range g.Timestamps {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			t, err = time.Parse("2006-01-02T15:04", ts)
			if err != nil {
				continue
			}
		}
		values := make(map[enums.Parameter]float64, len(wanted))
		for _, p := range wanted {
			data, ok := cols[p]
			if !ok || i >= len(data) || data[i] == nil {
				continue
			}
			v := *data[i]
			if postProcess != nil {
				v = postProcess(p, v)
			}
			values[p] = v
		}
		buildRow(f, stationID, t, provider, values)
	}
	return f
}

// GSAHourly implements the klima-v2-1h resource (national identifier).
func GSAHourly(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.GSAHourly].Parameters)
	decorated := cache.Decorate(d.Cache, string(enums.GSAHourly), time.Duration(enums.TTLDay),
		cache.EncodeJSONT[gsaGeoJSON], cache.DecodeJSONT[gsaGeoJSON],
		func() (*gsaGeoJSON, error) {
			return gsaFetch(ctx, d, "klima-v2-1h", "2006-01-02T15:04", gsaHourlyParamMapping, req, "national", "")
		})
	g, err := decorated(cacheKeyFor(enums.GSAHourly, req))
	if err != nil || g == nil {
		return nil, err
	}
	f := gsaBuildFrame(enums.GSAHourly, req.Station.ID, g, gsaHourlyParamMapping, wanted, func(p enums.Parameter, v float64) float64 {
		switch p {
		case enums.WSpd:
			return units.MsToKmh(v)
		case enums.TSun:
			return units.HoursToMinutes(v)
		default:
			return v
		}
	})
	return f, nil
}

// GSADaily implements the klima-v2-1d resource (geosphere_id identifier,
// per the original's fetch() — unlike every other GSA resource, which
// keys off "national").
func GSADaily(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.GSADaily].Parameters)
	decorated := cache.Decorate(d.Cache, string(enums.GSADaily), time.Duration(enums.TTLWeek),
		cache.EncodeJSONT[gsaGeoJSON], cache.DecodeJSONT[gsaGeoJSON],
		func() (*gsaGeoJSON, error) {
			return gsaFetch(ctx, d, "klima-v2-1d", "2006-01-02", gsaDailyParamMapping, req, "geosphere_id", "")
		})
	g, err := decorated(cacheKeyFor(enums.GSADaily, req))
	if err != nil || g == nil {
		return nil, err
	}
	f := gsaBuildFrame(enums.GSADaily, req.Station.ID, g, gsaDailyParamMapping, wanted, func(p enums.Parameter, v float64) float64 {
		switch p {
		case enums.WSpd:
			return units.MsToKmh(v)
		case enums.TSun:
			return units.HoursToMinutes(v)
		default:
			return v
		}
	})
	return f, nil
}

// GSAMonthly implements the klima-v2-1m resource, including the
// pressure-to-MSL reduction that needs the station's elevation.
func GSAMonthly(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.GSAMonthly].Parameters)
	decorated := cache.Decorate(d.Cache, string(enums.GSAMonthly), time.Duration(enums.TTLMonth),
		cache.EncodeJSONT[gsaGeoJSON], cache.DecodeJSONT[gsaGeoJSON],
		func() (*gsaGeoJSON, error) {
			return gsaFetch(ctx, d, "klima-v2-1m", "2006-01-02", gsaMonthlyParamMapping, req, "national", "")
		})
	g, err := decorated(cacheKeyFor(enums.GSAMonthly, req))
	if err != nil || g == nil {
		return nil, err
	}
	elevation := req.Station.Elevation
	f := gsaBuildFrame(enums.GSAMonthly, req.Station.ID, g, gsaMonthlyParamMapping, wanted, func(p enums.Parameter, v float64) float64 {
		switch p {
		case enums.WSpd:
			return units.MsToKmh(v)
		case enums.TSun:
			return units.HoursToMinutes(v)
		case enums.CldC:
			return units.PercentageToOkta(v)
		default:
			return v
		}
	})
	if c := f.Col(enums.Pres); c != nil {
		tempCol := f.Col(enums.Temp)
		for i := range c.Values {
			if i < len(tempCol.Values) {
				c.Values[i] = units.PresToMsl(c.Values[i], tempCol.Values[i], &elevation)
			}
		}
	}
	return f, nil
}

var gsaSynopParamMapping = map[string]enums.Parameter{
	"tl": enums.Temp, "rr": enums.Prcp, "p": enums.Pres,
	"ff": enums.WSpd, "dd": enums.WDir, "rf": enums.RHum,
}

// GSASynop covers GeoSphere Austria's synoptic network through the hourly
// synop-v1-1h resource, grounded on the same shared.py helpers as GSAHourly but against the
// synop resource id and a lower dispatch priority (enums.GSASynop).
func GSASynop(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.GSASynop].Parameters)
	decorated := cache.Decorate(d.Cache, string(enums.GSASynop), time.Duration(enums.TTLDay),
		cache.EncodeJSONT[gsaGeoJSON], cache.DecodeJSONT[gsaGeoJSON],
		func() (*gsaGeoJSON, error) {
			return gsaFetch(ctx, d, "synop-v1-1h", "2006-01-02T15:04", gsaSynopParamMapping, req, "national", "")
		})
	g, err := decorated(cacheKeyFor(enums.GSASynop, req))
	if err != nil || g == nil {
		return nil, err
	}
	return gsaBuildFrame(enums.GSASynop, req.Station.ID, g, gsaSynopParamMapping, wanted, func(p enums.Parameter, v float64) float64 {
		if p == enums.WSpd {
			return units.MsToKmh(v)
		}
		return v
	}), nil
}
