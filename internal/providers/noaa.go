package providers

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/cache"
	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// NOAA adapters: aviation METAR (near-real-time), ISD Lite (bulk hourly
// archive) and GHCN-Daily (bulk daily archive). Grounded on
// aviationweather_endpoint/aviationweather_user_agent in
// original_source/meteostat/api/config.py for METAR, and the same
// fetch-decompress-parse shape as the Meteostat bulk providers for the
// two archive adapters.

// metarTempRe extracts temperature/dewpoint (tenths-free, signed, M
// prefix for negative) from a raw METAR body, e.g. "12/08" or "M05/M09".
var metarTempRe = regexp.MustCompile(`\s(M?\d{2})/(M?\d{2})\s`)
var metarWindRe = regexp.MustCompile(`\s(\d{3})(\d{2})(?:G(\d{2}))?KT\s`)
var metarVisRe = regexp.MustCompile(`\s(\d{1,2})SM\s`)
var metarAltimeterRe = regexp.MustCompile(`\sA(\d{4})\s`)

func metarSigned(raw string) (float64, bool) {
	neg := strings.HasPrefix(raw, "M")
	raw = strings.TrimPrefix(raw, "M")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// parseMetar extracts the subset of fields the provider declares
// (temp, dwpt, wdir, wspd, pres, vsby, coco) from one raw METAR line.
// The full METAR grammar (remarks, runway visual range, etc.) is out of
// scope; this covers the body fields spec.md's provider table commits to.
func parseMetar(raw string) map[enums.Parameter]float64 {
	values := map[enums.Parameter]float64{}
	body := " " + raw + " "
	if m := metarTempRe.FindStringSubmatch(body); m != nil {
		if t, ok := metarSigned(m[1]); ok {
			values[enums.Temp] = t
		}
		if d, ok := metarSigned(m[2]); ok {
			values[enums.Dwpt] = d
		}
	}
	if m := metarWindRe.FindStringSubmatch(body); m != nil {
		if wdir, err := strconv.ParseFloat(m[1], 64); err == nil {
			values[enums.WDir] = wdir
		}
		if wspd, err := strconv.ParseFloat(m[2], 64); err == nil {
			values[enums.WSpd] = wspd * 1.852 // knots -> km/h
		}
	}
	if m := metarVisRe.FindStringSubmatch(body); m != nil {
		if vsby, err := strconv.ParseFloat(m[1], 64); err == nil {
			values[enums.Vsby] = vsby * 1609.34 // statute miles -> m
		}
	}
	if m := metarAltimeterRe.FindStringSubmatch(body); m != nil {
		if alt, err := strconv.ParseFloat(m[1], 64); err == nil {
			values[enums.Pres] = alt / 100 * 33.8639 // inHg(x100) -> hPa
		}
	}
	if strings.Contains(raw, "TS") {
		values[enums.Coco] = 25 // Thunderstorm
	} else if strings.Contains(raw, "RA") {
		values[enums.Coco] = 8 // Rain
	} else if strings.Contains(raw, "SN") {
		values[enums.Coco] = 15 // Snowfall
	} else if strings.Contains(raw, "FG") {
		values[enums.Coco] = 5 // Fog
	}
	return values
}

// NOAAMetar fetches the last 24h of raw METAR reports for a station's
// ICAO identifier and parses each into one hourly-resolution row.
func NOAAMetar(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	icao, ok := req.Station.Identifiers["icao"]
	if !ok {
		return nil, nil
	}
	endpoint := strings.ReplaceAll(d.Config.AviationWXEndpoint, "{station}", icao)
	// The endpoint template already embeds its own query string; split it
	// off so network.Client doesn't double-append a "?".
	base, rawQuery, _ := strings.Cut(endpoint, "?")
	params, _ := url.ParseQuery(rawQuery)

	decorated := cache.Decorate(d.Cache, string(enums.NOAAMetar), time.Duration(enums.TTLHour),
		cache.EncodeJSONT[[]string], cache.DecodeJSONT[[]string],
		func() (*[]string, error) {
			resp, err := d.Client.Get(ctx, base, params)
			if err != nil {
				return nil, fmt.Errorf("providers: noaa_metar: %w", err)
			}
			if !resp.OK() {
				logger.Warn("providers: noaa_metar %s returned status %d", base, resp.StatusCode)
				return nil, nil
			}
			lines := strings.Split(strings.TrimSpace(string(resp.Body)), "\n")
			return &lines, nil
		})
	lines, err := decorated(cacheKeyFor(enums.NOAAMetar, req))
	if err != nil || lines == nil {
		return nil, err
	}

	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.NOAAMetar].Parameters)
	f := frame.New(wanted)
	for _, raw := range *lines {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			continue
		}
		// METAR reports a "DDHHMMZ" timestamp as the second whitespace
		// token; anchor it to the request window's year/month since METAR
		// itself only carries day-of-month/time.
		t := req.End
		if len(fields) > 1 && len(fields[1]) == 7 {
			if day, err := strconv.Atoi(fields[1][:2]); err == nil {
				if hh, err := strconv.Atoi(fields[1][2:4]); err == nil {
					if mm, err := strconv.Atoi(fields[1][4:6]); err == nil {
						t = time.Date(req.End.Year(), req.End.Month(), day, hh, mm, 0, 0, time.UTC)
					}
				}
			}
		}
		values := parseMetar(raw)
		if len(values) == 0 {
			continue
		}
		buildRow(f, req.Station.ID, t, enums.NOAAMetar, values)
	}
	if f.Empty() {
		return nil, nil
	}
	return f, nil
}

// fetchNOAAArchive is the shared fetch+gunzip+line-split step for the two
// NOAA bulk archives (ISD Lite, GHCN-Daily), mirroring
// fetchMeteostatArchive's shape for the same class of product.
func fetchNOAAArchive(ctx context.Context, d Deps, provider enums.Provider, endpoint string) ([]string, error) {
	resp, err := d.Client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("providers: %s: %w", provider, err)
	}
	if !resp.OK() {
		logger.Warn("providers: %s %s returned status %d", provider, endpoint, resp.StatusCode)
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

// NOAAIsdLite parses the fixed-width ISD Lite hourly format: positional
// year month day hour air-temp dewpoint sea-level-pressure wind-direction
// wind-speed(tenths m/s), whitespace-separated, -9999 for missing.
func NOAAIsdLite(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	wmo, ok := req.Station.Identifiers["wmo"]
	if !ok || req.Start.IsZero() || req.End.IsZero() {
		return nil, nil
	}
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.NOAAIsdLite].Parameters)
	out := frame.New(wanted)
	for year := req.Start.Year(); year <= req.End.Year(); year++ {
		endpoint := strings.NewReplacer("{year}", strconv.Itoa(year), "{wmo}", wmo).Replace(d.Config.NOAAIsdLiteEndpoint)
		decorated := cache.Decorate(d.Cache, string(enums.NOAAIsdLite), time.Duration(enums.TTLDay),
			cache.EncodeJSONT[[]string], cache.DecodeJSONT[[]string],
			func() (*[]string, error) {
				lines, err := fetchNOAAArchive(ctx, d, enums.NOAAIsdLite, endpoint)
				if err != nil || lines == nil {
					return nil, err
				}
				return &lines, nil
			})
		lines, err := decorated(fmt.Sprintf("%s|%s|%d", enums.NOAAIsdLite, wmo, year))
		if err != nil {
			return nil, err
		}
		if lines == nil {
			continue
		}
		for _, line := range *lines {
			f := strings.Fields(line)
			if len(f) < 9 {
				continue
			}
			y, e1 := strconv.Atoi(f[0])
			mo, e2 := strconv.Atoi(f[1])
			da, e3 := strconv.Atoi(f[2])
			hh, e4 := strconv.Atoi(f[3])
			if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
				continue
			}
			t := time.Date(y, time.Month(mo), da, hh, 0, 0, 0, time.UTC)
			values := map[enums.Parameter]float64{}
			isdTenths(f[4], enums.Temp, values)
			isdTenths(f[5], enums.Dwpt, values)
			isdTenths(f[6], enums.Pres, values)
			if v, ok := isdRaw(f[7]); ok {
				values[enums.WDir] = v
			}
			isdTenths(f[8], enums.WSpd, values)
			buildRow(out, req.Station.ID, t, enums.NOAAIsdLite, values)
		}
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

func isdRaw(field string) (float64, bool) {
	v, err := strconv.Atoi(field)
	if err != nil || v == -9999 {
		return 0, false
	}
	return float64(v), true
}

func isdTenths(field string, param enums.Parameter, values map[enums.Parameter]float64) {
	if v, ok := isdRaw(field); ok {
		values[param] = v / 10
	}
}

// NOAAGhcnd parses the fixed-width .dly GHCN-Daily format: one line per
// (station, year, month, element) with 31 value/flag quintuples.
func NOAAGhcnd(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	wmo, ok := req.Station.Identifiers["wmo"]
	if !ok {
		return nil, nil
	}
	endpoint := strings.ReplaceAll(d.Config.NOAAGhcndEndpoint, "{wmo}", wmo)
	decorated := cache.Decorate(d.Cache, string(enums.NOAAGhcnd), time.Duration(enums.TTLWeek),
		cache.EncodeJSONT[[]string], cache.DecodeJSONT[[]string],
		func() (*[]string, error) {
			resp, err := d.Client.Get(ctx, endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("providers: noaa_ghcnd: %w", err)
			}
			if !resp.OK() {
				logger.Warn("providers: noaa_ghcnd %s returned status %d", endpoint, resp.StatusCode)
				return nil, nil
			}
			lines := strings.Split(string(resp.Body), "\n")
			return &lines, nil
		})
	lines, err := decorated(cacheKeyFor(enums.NOAAGhcnd, req))
	if err != nil || lines == nil {
		return nil, err
	}

	var ghcndElement = map[string]enums.Parameter{
		"TAVG": enums.Temp, "TMIN": enums.TMin, "TMAX": enums.TMax,
		"PRCP": enums.Prcp, "SNOW": enums.Snow, "SNWD": enums.SnWD,
	}
	wanted := wantedParams(req.Parameters, enums.DefaultProviders[enums.NOAAGhcnd].Parameters)
	byDay := map[int64]map[enums.Parameter]float64{}
	for _, line := range *lines {
		if len(line) < 269 {
			continue
		}
		year, e1 := strconv.Atoi(line[11:15])
		month, e2 := strconv.Atoi(line[15:17])
		element := line[17:21]
		if e1 != nil || e2 != nil {
			continue
		}
		param, ok := ghcndElement[element]
		if !ok {
			continue
		}
		for day := 1; day <= 31; day++ {
			offset := 21 + (day-1)*8
			if offset+5 > len(line) {
				break
			}
			raw := strings.TrimSpace(line[offset : offset+5])
			v, err := strconv.Atoi(raw)
			if err != nil || v == -9999 {
				continue
			}
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			scaled := float64(v) / 10
			if param == enums.Snow || param == enums.SnWD {
				scaled = float64(v) // mm already
			}
			row, ok := byDay[t.Unix()]
			if !ok {
				row = map[enums.Parameter]float64{}
				byDay[t.Unix()] = row
			}
			row[param] = scaled
		}
	}
	f := frame.New(wanted)
	for ts, values := range byDay {
		buildRow(f, req.Station.ID, time.Unix(ts, 0).UTC(), enums.NOAAGhcnd, values)
	}
	if f.Empty() {
		return nil, nil
	}
	f.SortStable()
	return f, nil
}
