package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// MetNoForecast is the one provider addressable by geographic point
// rather than station identifier (spec §4.9's interpolation note),
// grounded on config.metno_forecast_endpoint. Locationforecast's
// "compact" response is a CF-Covjson-like timeseries of instant and
// next_1_hours/next_6_hours detail blocks; this adapter reads the
// instant block only, which is all the committed parameter set needs.
type metnoCompact struct {
	Properties struct {
		Timeseries []struct {
			Time string `json:"time"`
			Data struct {
				Instant struct {
					Details map[string]float64 `json:"details"`
				} `json:"instant"`
			} `json:"data"`
		} `json:"timeseries"`
	} `json:"properties"`
}

var metnoDetailMapping = map[string]enums.Parameter{
	"air_temperature":          enums.Temp,
	"relative_humidity":        enums.RHum,
	"wind_from_direction":      enums.WDir,
	"wind_speed":               enums.WSpd,
	"air_pressure_at_sea_level": enums.Pres,
	"cloud_area_fraction":      enums.CldC,
}

func metnoEndpoint(template string, p typing.Point) string {
	endpoint := template
	endpoint = strings.ReplaceAll(endpoint, "{latitude}", strconv.FormatFloat(p.Latitude, 'f', 4, 64))
	endpoint = strings.ReplaceAll(endpoint, "{longitude}", strconv.FormatFloat(p.Longitude, 'f', 4, 64))
	alt := "0"
	if p.Elevation != nil {
		alt = strconv.FormatFloat(*p.Elevation, 'f', 0, 64)
	}
	return strings.ReplaceAll(endpoint, "{elevation}", alt)
}

// MetNoForecast fetches a locationforecast timeseries for the request
// station's coordinates (no station network of its own — every "station"
// is really a Point under the hood for this provider).
func MetNoForecast(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	var elevation *float64
	if req.Station.Elevation != 0 {
		e := req.Station.Elevation
		elevation = &e
	}
	point := typing.Point{Latitude: req.Station.Latitude, Longitude: req.Station.Longitude, Elevation: elevation}
	base, rawQuery, hasQuery := strings.Cut(metnoEndpoint(d.Config.MetNoEndpoint, point), "?")
	var params url.Values
	if hasQuery {
		params, _ = url.ParseQuery(rawQuery)
	}

	decorated := cache.Decorate(d.Cache, string(enums.MetNoForecast), time.Duration(enums.TTLHour),
		cache.EncodeJSONT[metnoCompact], cache.DecodeJSONT[metnoCompact],
		func() (*metnoCompact, error) {
			var out metnoCompact
			ok, err := getJSON(ctx, d.Client, base, params, &out)
			if err != nil || !ok {
				return nil, err
			}
			return &out, nil
		})
	resp, err := decorated(cacheKeyFor(enums.MetNoForecast, req))
	if err != nil || resp == nil {
		return nil, err
	}

	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.MetNoForecast].Parameters)
	f := frame.New(wanted)
	for _, entry := range resp.Properties.Timeseries {
		t, err := time.Parse(time.RFC3339, entry.Time)
		if err != nil {
			continue
		}
		if !req.Start.IsZero() && t.Before(req.Start) {
			continue
		}
		if !req.End.IsZero() && t.After(req.End) {
			continue
		}
		values := make(map[enums.Parameter]float64, len(wanted))
		for detailName, param := range metnoDetailMapping {
			if v, ok := entry.Data.Instant.Details[detailName]; ok {
				if param == enums.CldC {
					v = v / 12.5
				}
				values[param] = v
			}
		}
		buildRow(f, req.Station.ID, t, enums.MetNoForecast, values)
	}
	if f.Empty() {
		return nil, nil
	}
	return f, nil
}
