package providers

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// Meteostat bulk-archive adapters (hourly/daily/monthly), grounded on
// original_source/meteostat/api/config.py's {hourly,daily,monthly}_endpoint
// templates: one gzip CSV file per (station[, year]). The upstream CSV
// column grammar itself is out of scope (spec §1: "individual upstream
// wire formats... are leaf functions conforming to a fixed contract"); the
// fetch -> gunzip -> parse -> canonical-frame control flow is fully wired
// and the parser understands the documented column layout
// (https://dev.meteostat.net/bulk/hourly.html): positional CSV columns
// date/hour, temp, dwpt, rhum, prcp, snow, wdir, wspd, wpgt, pres, tsun,
// coco for hourly; date, tavg, tmin, tmax, prcp, snow, wdir, wspd, wpgt,
// pres, tsun for daily.

var meteostatHourlyColumns = []enums.Parameter{
	"", "", enums.Temp, enums.Dwpt, enums.RHum, enums.Prcp, enums.Snow,
	enums.WDir, enums.WSpd, enums.WPgt, enums.Pres, enums.TSun, enums.Coco,
}

var meteostatDailyColumns = []enums.Parameter{
	"", enums.Temp, enums.TMin, enums.TMax, enums.Prcp, enums.Snow,
	enums.WDir, enums.WSpd, enums.WPgt, enums.Pres, enums.TSun,
}

var meteostatMonthlyColumns = []enums.Parameter{
	"", "", enums.Temp, enums.TMin, enums.TMax, enums.Prcp, enums.WSpd, enums.Pres, enums.TSun,
}

func fetchMeteostatArchive(ctx context.Context, d Deps, provider enums.Provider, endpoint string, dateCols int, columns []enums.Parameter, timeOf func(row []string) (time.Time, bool)) (*frame.Frame, error) {
	resp, err := d.Client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("providers: %s: %w", provider, err)
	}
	if !resp.OK() {
		logger.Warn("providers: %s archive %s returned status %d", provider, endpoint, resp.StatusCode)
		return nil, nil
	}

	gz, err := gzip.NewReader(strings.NewReader(string(resp.Body)))
	if err != nil {
		logger.Warn("providers: %s: not gzip, treating as empty: %v", provider, err)
		return nil, nil
	}
	defer gz.Close()

	f := frame.New(columns[dateCols:])
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		row := strings.Split(scanner.Text(), ",")
		if len(row) < len(columns) {
			continue
		}
		t, ok := timeOf(row)
		if !ok {
			continue
		}
		values := make(map[enums.Parameter]float64, len(columns))
		for i := dateCols; i < len(columns); i++ {
			p := columns[i]
			if p == "" || i >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				continue
			}
			values[p] = v
		}
		f.AddRow(frame.Key{Station: "", UnixSec: t.Unix()}, values, provider)
	}
	return f, nil
}

// stationEndpoint substitutes the station id (and, where present, year)
// placeholders in an endpoint template.
func stationEndpoint(template, station string, year int) string {
	out := strings.ReplaceAll(template, "{station}", station)
	if year > 0 {
		out = strings.ReplaceAll(out, "{year}", strconv.Itoa(year))
	}
	return out
}

// MeteostatHourly fetches the per-(station, year) bulk hourly archive.
func MeteostatHourly(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, nil
	}
	out := frame.New(wantedParams(req.Parameters, enums.DefaultProviders[enums.MeteostatHourly].Parameters))
	for year := req.Start.Year(); year <= req.End.Year(); year++ {
		endpoint := stationEndpoint(d.Config.MeteostatHourlyEndpoint, req.Station.ID, year)
		yf, err := fetchMeteostatArchive(ctx, d, enums.MeteostatHourly, endpoint, 2, meteostatHourlyColumns, func(row []string) (time.Time, bool) {
			t, err := time.Parse("2006-01-02 15", row[0]+" "+row[1])
			return t, err == nil
		})
		if err != nil {
			return nil, err
		}
		if yf != nil {
			for i, k := range yf.Keys {
				k.Station = req.Station.ID
				values := make(map[enums.Parameter]float64, len(yf.Columns))
				for _, c := range yf.Columns {
					values[c.Param] = c.Values[i]
				}
				out.AddRow(k, values, enums.MeteostatHourly)
			}
		}
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

// MeteostatDaily fetches the per-(station, year) bulk daily archive.
func MeteostatDaily(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, nil
	}
	out := frame.New(wantedParams(req.Parameters, enums.DefaultProviders[enums.MeteostatDaily].Parameters))
	for year := req.Start.Year(); year <= req.End.Year(); year++ {
		endpoint := stationEndpoint(d.Config.MeteostatDailyEndpoint, req.Station.ID, year)
		yf, err := fetchMeteostatArchive(ctx, d, enums.MeteostatDaily, endpoint, 1, meteostatDailyColumns, func(row []string) (time.Time, bool) {
			t, err := time.Parse("2006-01-02", row[0])
			return t, err == nil
		})
		if err != nil {
			return nil, err
		}
		if yf != nil {
			for i, k := range yf.Keys {
				k.Station = req.Station.ID
				values := make(map[enums.Parameter]float64, len(yf.Columns))
				for _, c := range yf.Columns {
					values[c.Param] = c.Values[i]
				}
				out.AddRow(k, values, enums.MeteostatDaily)
			}
		}
	}
	if out.Empty() {
		return nil, nil
	}
	return out, nil
}

// MeteostatMonthly fetches the single per-station bulk monthly archive
// (no year partitioning upstream).
func MeteostatMonthly(ctx context.Context, d Deps, req typing.ProviderRequest) (*frame.Frame, error) {
	endpoint := stationEndpoint(d.Config.MeteostatMonthlyEndpoint, req.Station.ID, 0)
	f, err := fetchMeteostatArchive(ctx, d, enums.MeteostatMonthly, endpoint, 2, meteostatMonthlyColumns, func(row []string) (time.Time, bool) {
		y, err1 := strconv.Atoi(strings.TrimSpace(row[0]))
		m, err2 := strconv.Atoi(strings.TrimSpace(row[1]))
		if err1 != nil || err2 != nil || m < 1 || m > 12 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC), true
	})
	if err != nil || f == nil {
		return nil, err
	}
	for i := range f.Keys {
		f.Keys[i].Station = req.Station.ID
	}
	if f.Empty() {
		return nil, nil
	}
	return f, nil
}
