package providers

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// Deutscher Wetterdienst adapters, grounded on config.dwd_ftp_host
// (original_source/meteostat/api/config.py) and the priority ordering
// spec.md §8 scenario 3 makes explicit: DWD_HOURLY > DWD_POI > DWD_MOSMIX
// at equal granularity. DWD publishes its open-data archive over both FTP
// and an HTTPS mirror at the same host; the adapters use the HTTPS mirror
// so internal/core/network's plain Client suffices without a dedicated
// FTP client, matching the rest of the pack's preference for HTTP(S)
// transports. The column grammar of each product (CSV-in-ZIP for the
// historical archive, KMZ/XML for MOSMIX) is out of scope per spec §1; the
// fetch -> decode -> canonical-frame control flow is fully wired against a
// flattened per-station CSV representation.

func dwdHourlyURL(host, stationID string) string {
	return fmt.Sprintf("https://%s/climate_environment/CDC/observations_germany/climate/hourly/recent/%s_hourly.csv.gz", host, stationID)
}

func dwdDailyURL(host, stationID string) string {
	return fmt.Sprintf("https://%s/climate_environment/CDC/observations_germany/climate/daily/recent/%s_daily.csv.gz", host, stationID)
}

func dwdPoiURL(host, stationID string) string {
	return fmt.Sprintf("https://%s/weather/weather_reports/poi/%s-BEOB.csv", host, stationID)
}

func dwdMosmixURL(host, stationID string) string {
	return fmt.Sprintf("https://%s/weather/local_forecasts/mos/MOSMIX_S/all_stations/kml/MOSMIX_S_LATEST_%s.kmz", host, stationID)
}

// dwdFetchCSVGz fetches and decompresses a gzip CSV resource, returning
// its lines; a non-2xx response degrades to "no data" (nil, nil).
func dwdFetchCSVGz(ctx context.Context, d Deps, provider enums.Provider, url string) ([]string, error) {
	resp, err := d.Client.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("providers: %s: %w", provider, err)
	}
	if !resp.OK() {
		logger.Warn("providers: %s %s returned status %d", provider, url, resp.StatusCode)
		return nil, nil
	}
	gz, err := gzip.NewReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		logger.Warn("providers: %s: response not gzip: %v", provider, err)
		return nil, nil
	}
	defer gz.Close()
	var lines []string
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, nil
}

// dwdParseLine parses the flattened CDC historical-archive line layout used
// by every DWD product: the real CDC archive has semicolon-separated
// STATIONS_ID;MESS_DATUM;QN;...;value columns keyed by name. Parsing the
// real CDC header is out of scope; this expects a pre-normalized
// "timestamp;param=value;param=value..." line shape.
func dwdParseLine(line string, mapping map[string]enums.Parameter) (time.Time, map[enums.Parameter]float64, bool) {
	parts := strings.Split(line, ";")
	if len(parts) < 2 {
		return time.Time{}, nil, false
	}
	t, err := time.Parse("2006010215", strings.TrimSpace(parts[0]))
	if err != nil {
		t, err = time.Parse("20060102", strings.TrimSpace(parts[0]))
		if err != nil {
			return time.Time{}, nil, false
		}
	}
	values := make(map[enums.Parameter]float64)
	for _, kv := range parts[1:] {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		name, raw := strings.TrimSpace(kv[:eq]), strings.TrimSpace(kv[eq+1:])
		param, ok := mapping[name]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		values[param] = v
	}
	return t, values, true
}

var dwdHourlyMapping = map[string]enums.Parameter{
	"TT_TU": enums.Temp, "TD": enums.Dwpt, "RF_TU": enums.RHum, "R1": enums.Prcp,
	"D": enums.WDir, "F": enums.WSpd, "FX": enums.WPgt, "P": enums.Pres,
	"SD_SO": enums.TSun, "V_VV": enums.Vsby, "N": enums.CldC, "WW": enums.Coco,
}

var dwdDailyMapping = map[string]enums.Parameter{
	"TMK": enums.Temp, "TNK": enums.TMin, "TXK": enums.TMax, "RSK": enums.Prcp,
	"SHK_TAG": enums.SnWD, "FM": enums.WSpd, "FX": enums.WPgt,
	"PM": enums.Pres, "SDK": enums.TSun, "NM": enums.CldC,
}

func dwdBuildFrame(ctx context.Context, d Deps, provider enums.Provider, url string, mapping map[string]enums.Parameter, req typing.ProviderRequest) (*frame.Frame, error) {
	stationID, ok := req.Station.Identifiers["national"]
	if !ok {
		return nil, nil
	}
	url = strings.Replace(url, req.Station.ID, stationID, 1)

	decorated := cache.Decorate(d.Cache, string(provider), time.Duration(enums.TTLDay),
		cache.EncodeJSONT[[]string], cache.DecodeJSONT[[]string],
		func() (*[]string, error) {
			lines, err := dwdFetchCSVGz(ctx, d, provider, url)
			if err != nil || lines == nil {
				return nil, err
			}
			return &lines, nil
		})
	lines, err := decorated(cacheKeyFor(provider, req))
	if err != nil || lines == nil {
		return nil, err
	}

	wanted := wantedParams(req.Parameters, enums.DefaultProviders[provider].Parameters)
	f := frame.New(wanted)
	for _, line := range *lines {
		t, values, ok := dwdParseLine(line, mapping)
		if !ok {
			continue
		}
		buildRow(f, req.Station.ID, t, provider, values)
	}
	if f.Empty() {
		return nil, nil
	}
	return f, nil
}

// DWDHourly is the historical/recent hourly CDC archive.
func DWDHourly(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	return dwdBuildFrame(ctx, d, enums.DWDHourly, dwdHourlyURL(d.Config.DWDFTPHost, req.Station.ID), dwdHourlyMapping, req)
}

// DWDDaily is the historical/recent daily CDC archive.
func DWDDaily(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	return dwdBuildFrame(ctx, d, enums.DWDDaily, dwdDailyURL(d.Config.DWDFTPHost, req.Station.ID), dwdDailyMapping, req)
}

// DWDPoi is the point-of-interest near-real-time product (lower latency,
// lower historical depth than DWDHourly, hence its lower dispatch
// priority in enums.DefaultProviders).
func DWDPoi(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	return dwdBuildFrame(ctx, d, enums.DWDPoi, dwdPoiURL(d.Config.DWDFTPHost, req.Station.ID), dwdHourlyMapping, req)
}

// DWDMosmix is the statistical-forecast product, grounded on the same
// HTTPS mirror; it carries the lowest DWD priority since it's a forecast
// rather than an observation.
func DWDMosmix(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	return dwdBuildFrame(ctx, d, enums.DWDMosmix, dwdMosmixURL(d.Config.DWDFTPHost, req.Station.ID), dwdHourlyMapping, req)
}
