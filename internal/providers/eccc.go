package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// Environment and Climate Change Canada adapters, grounded directly on
// original_source/meteostat/providers/eccc/{hourly,shared}.py: per-station
// timezone resolution via an abbreviation map, per-calendar-year batched
// fetch against the ECCC GeoMet OGC API, and two unit fixups (wind
// direction in tens of degrees, visibility in kilometres).

const ecccBatchLimit = 9000

// ecccTZAbbreviations maps the non-IANA abbreviations ECCC station
// metadata carries to a representative IANA zone, since Go's time
// package (unlike Python's pytz) has no abbreviation table of its own.
var ecccTZAbbreviations = map[string]string{
	"NST": "America/St_Johns", "NDT": "America/St_Johns",
	"AST": "America/Halifax", "ADT": "America/Halifax",
	"EST": "America/Toronto", "EDT": "America/Toronto",
	"CST": "America/Winnipeg", "CDT": "America/Winnipeg",
	"MST": "America/Edmonton", "MDT": "America/Edmonton",
	"PST": "America/Vancouver", "PDT": "America/Vancouver",
	"YST": "America/Whitehorse", "YDT": "America/Whitehorse",
}

func ecccResolveTZ(tz string) (*time.Location, bool) {
	if iana, ok := ecccTZAbbreviations[tz]; ok {
		tz = iana
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, false
	}
	return loc, true
}

var ecccHourlyProperties = map[string]enums.Parameter{
	"RELATIVE_HUMIDITY": enums.RHum, "WIND_DIRECTION": enums.WDir,
	"WIND_SPEED": enums.WSpd, "VISIBILITY": enums.Vsby,
	"PRECIP_AMOUNT": enums.Prcp, "TEMP": enums.Temp,
}

type ecccFeatureCollection struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

func ecccGetYear(ctx context.Context, d Deps, endpoint, climateID string, year int, loc *time.Location) (*ecccFeatureCollection, error) {
	startUTC := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	endUTC := time.Date(year, 12, 31, 23, 59, 59, 0, time.UTC)
	start := startUTC.In(loc).Format("2006-01-02T15:04:05")
	end := endUTC.In(loc).Format("2006-01-02T15:04:05")

	properties := ""
	for i, k := range []string{"UTC_DATE", "RELATIVE_HUMIDITY", "WIND_DIRECTION", "WIND_SPEED", "VISIBILITY", "PRECIP_AMOUNT", "TEMP"} {
		if i > 0 {
			properties += ","
		}
		properties += k
	}
	params := url.Values{}
	params.Set("CLIMATE_IDENTIFIER", climateID)
	params.Set("datetime", fmt.Sprintf("%s/%s", start, end))
	params.Set("f", "json")
	params.Set("properties", properties)
	params.Set("limit", fmt.Sprint(ecccBatchLimit))

	var out ecccFeatureCollection
	ok, err := getJSON(ctx, d.Client, endpoint, params, &out)
	if err != nil || !ok || len(out.Features) == 0 {
		return nil, err
	}
	return &out, nil
}

// ECCCHourly fetches every calendar year overlapping [req.Start, req.End]
// and concatenates them, matching the original's `range(...)` + safe_concat.
func ECCCHourly(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	climateID, ok := req.Station.Identifiers["national"]
	if !ok || req.Start.IsZero() || req.End.IsZero() {
		return nil, nil
	}
	tz := req.Station.Timezone
	loc, ok := ecccResolveTZ(tz)
	if !ok {
		return nil, nil
	}

	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.ECCCHourly].Parameters)
	out := frame.New(wanted)
	for year := req.Start.Year(); year <= req.End.Year(); year++ {
		y := year
		decorated := cache.Decorate(d.Cache, string(enums.ECCCHourly), time.Duration(enums.TTLDay),
			cache.EncodeJSONT[ecccFeatureCollection], cache.DecodeJSONT[ecccFeatureCollection],
			func() (*ecccFeatureCollection, error) { return ecccGetYear(ctx, d, d.Config.ECCCHourlyEndpoint, climateID, y, loc) })
		fc, err := decorated(fmt.Sprintf("%s|%s|%d", enums.ECCCHourly, climateID, y))
		if err != nil {
			return nil, err
		}
		if fc == nil {
			continue
		}
		for _, feat := range fc.Features {
			rawTime, _ := feat.Properties["UTC_DATE"].(string)
			t, err := time.Parse(time.RFC3339, rawTime)
			if err != nil {
				continue
			}
			values := make(map[enums.Parameter]float64, len(wanted))
			for propName, param := range ecccHourlyProperties {
				raw, ok := feat.Properties[propName]
				if !ok || raw == nil {
					continue
				}
				v, ok := raw.(float64)
				if !ok {
					continue
				}
				switch param {
				case enums.WDir:
					v *= 10 // ECCC reports wind direction in tens of degrees
				case enums.Vsby:
					v *= 1000 // km -> m
				}
				values[param] = v
			}
			buildRow(out, req.Station.ID, t, enums.ECCCHourly, values)
		}
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

// ECCCDaily mirrors ECCCHourly against the climate-daily collection; the
// parameter set (temp/tmin/tmax/prcp/snow/snwd) matches
// enums.DefaultProviders[ECCCDaily].
func ECCCDaily(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	climateID, ok := req.Station.Identifiers["national"]
	if !ok || req.Start.IsZero() || req.End.IsZero() {
		return nil, nil
	}
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.ECCCDaily].Parameters)

	var dailyProperties = map[string]enums.Parameter{
		"MEAN_TEMPERATURE": enums.Temp, "MIN_TEMPERATURE": enums.TMin, "MAX_TEMPERATURE": enums.TMax,
		"TOTAL_PRECIPITATION": enums.Prcp, "TOTAL_SNOW": enums.Snow, "SNOW_ON_GROUND": enums.SnWD,
	}
	properties := "LOCAL_DATE"
	for k := range dailyProperties {
		properties += "," + k
	}

	out := frame.New(wanted)
	for year := req.Start.Year(); year <= req.End.Year(); year++ {
		params := url.Values{}
		params.Set("CLIMATE_IDENTIFIER", climateID)
		params.Set("datetime", fmt.Sprintf("%d-01-01/%d-12-31", year, year))
		params.Set("f", "json")
		params.Set("properties", properties)
		params.Set("limit", fmt.Sprint(ecccBatchLimit))

		decorated := cache.Decorate(d.Cache, string(enums.ECCCDaily), time.Duration(enums.TTLDay),
			cache.EncodeJSONT[ecccFeatureCollection], cache.DecodeJSONT[ecccFeatureCollection],
			func() (*ecccFeatureCollection, error) {
				var fc ecccFeatureCollection
				ok, err := getJSON(ctx, d.Client, d.Config.ECCCDailyEndpoint, params, &fc)
				if err != nil || !ok || len(fc.Features) == 0 {
					return nil, err
				}
				return &fc, nil
			})
		fc, err := decorated(fmt.Sprintf("%s|%s|%d", enums.ECCCDaily, climateID, year))
		if err != nil {
			return nil, err
		}
		if fc == nil {
			continue
		}
		for _, feat := range fc.Features {
			rawDate, _ := feat.Properties["LOCAL_DATE"].(string)
			t, err := time.Parse(time.RFC3339, rawDate)
			if err != nil {
				continue
			}
			values := make(map[enums.Parameter]float64, len(wanted))
			for propName, param := range dailyProperties {
				raw, ok := feat.Properties[propName]
				if !ok || raw == nil {
					continue
				}
				if v, ok := raw.(float64); ok {
					values[param] = v
				}
			}
			buildRow(out, req.Station.ID, t, enums.ECCCDaily, values)
		}
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}
