// Package config implements the process-wide configuration surface (spec
// §6/§9). The Python original extracts type annotations at runtime to
// validate MS_* environment overrides; in Go we replace that with an
// explicit schema table of (key, kind, setter) entries, the way the
// teacher's cmdFetch/cmdQuery flags parse CIMIS_APP_KEY and hand-rolled
// "100MB"-style sizes (cmd/cimis/main.go's parseCacheSize): unknown keys
// are logged and dropped, parse/validate failures keep the default.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/enums"
)

// Config holds every tunable named in spec §6.
type Config struct {
	BlockLargeRequests bool

	CacheEnable    bool
	CacheDirectory string
	CacheTTL       time.Duration
	CacheAutoclean bool

	StationsDBTTL       time.Duration
	StationsDBEndpoints []string
	StationsDBFile      string

	LapseRateParameters []enums.Parameter

	MeteostatHourlyEndpoint  string
	MeteostatDailyEndpoint   string
	MeteostatMonthlyEndpoint string

	DWDFTPHost         string
	AviationWXEndpoint string
	AviationWXUA       string
	MetNoEndpoint      string
	MetNoUA            string
	GSAAPIBaseURL      string

	NOAAIsdLiteEndpoint string
	NOAAGhcndEndpoint   string

	ECCCHourlyEndpoint string
	ECCCDailyEndpoint  string
}

func homeCache(parts ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(append([]string{home}, parts...)...)
}

// Default returns the built-in configuration, matching
// original_source/meteostat/api/config.py's Config class.
func Default() *Config {
	return &Config{
		BlockLargeRequests: true,

		CacheEnable:    true,
		CacheDirectory: homeCache(".meteostat", "cache"),
		CacheTTL:       time.Duration(enums.TTLMonth),
		CacheAutoclean: true,

		StationsDBTTL: time.Duration(enums.TTLWeek),
		StationsDBEndpoints: []string{
			"https://data.meteostat.net/stations.db",
			"https://raw.githubusercontent.com/meteostat/weather-stations/master/stations.db",
		},
		StationsDBFile: homeCache(".meteostat", "stations.db"),

		LapseRateParameters: []enums.Parameter{enums.Temp, enums.TMin, enums.TMax},

		MeteostatHourlyEndpoint:  "https://data.meteostat.net/hourly/{year}/{station}.csv.gz",
		MeteostatDailyEndpoint:   "https://data.meteostat.net/daily/{year}/{station}.csv.gz",
		MeteostatMonthlyEndpoint: "https://data.meteostat.net/monthly/{station}.csv.gz",

		DWDFTPHost:         "opendata.dwd.de",
		AviationWXEndpoint: "https://aviationweather.gov/api/data/metar?ids={station}&format=raw&taf=false&hours=24",
		MetNoEndpoint:      "https://api.met.no/weatherapi/locationforecast/2.0/compact?lat={latitude}&lon={longitude}&altitude={elevation}",
		GSAAPIBaseURL:      "https://dataset.api.hub.geosphere.at/v1",

		NOAAIsdLiteEndpoint: "https://www.ncei.noaa.gov/pub/data/noaa/isd-lite/{year}/{wmo}-99999-{year}.gz",
		NOAAGhcndEndpoint:   "https://www.ncei.noaa.gov/pub/data/ghcn/daily/all/{wmo}.dly",

		ECCCHourlyEndpoint: "https://api.weather.gc.ca/collections/climate-hourly/items",
		ECCCDailyEndpoint:  "https://api.weather.gc.ca/collections/climate-daily/items",
	}
}

// schemaEntry binds one MS_<KEY> environment variable to a setter on a
// *Config, with a type-specific parser.
type schemaEntry struct {
	key   string
	apply func(c *Config, raw string) bool // false = parse/validate failure
}

func boolEntry(key string, set func(*Config, bool)) schemaEntry {
	return schemaEntry{key: key, apply: func(c *Config, raw string) bool {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		set(c, v)
		return true
	}}
}

func stringEntry(key string, set func(*Config, string)) schemaEntry {
	return schemaEntry{key: key, apply: func(c *Config, raw string) bool {
		set(c, raw)
		return true
	}}
}

func durationSecondsEntry(key string, set func(*Config, time.Duration)) schemaEntry {
	return schemaEntry{key: key, apply: func(c *Config, raw string) bool {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || secs < 0 {
			return false
		}
		set(c, time.Duration(secs)*time.Second)
		return true
	}}
}

func stringListEntry(key string, set func(*Config, []string)) schemaEntry {
	return schemaEntry{key: key, apply: func(c *Config, raw string) bool {
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return false
		}
		set(c, out)
		return true
	}}
}

var schema = []schemaEntry{
	boolEntry("BLOCK_LARGE_REQUESTS", func(c *Config, v bool) { c.BlockLargeRequests = v }),
	boolEntry("CACHE_ENABLE", func(c *Config, v bool) { c.CacheEnable = v }),
	stringEntry("CACHE_DIRECTORY", func(c *Config, v string) { c.CacheDirectory = v }),
	durationSecondsEntry("CACHE_TTL", func(c *Config, v time.Duration) { c.CacheTTL = v }),
	boolEntry("CACHE_AUTOCLEAN", func(c *Config, v bool) { c.CacheAutoclean = v }),
	durationSecondsEntry("STATIONS_DB_TTL", func(c *Config, v time.Duration) { c.StationsDBTTL = v }),
	stringListEntry("STATIONS_DB_ENDPOINTS", func(c *Config, v []string) { c.StationsDBEndpoints = v }),
	stringEntry("STATIONS_DB_FILE", func(c *Config, v string) { c.StationsDBFile = v }),
	stringEntry("METEOSTAT_HOURLY_ENDPOINT", func(c *Config, v string) { c.MeteostatHourlyEndpoint = v }),
	stringEntry("METEOSTAT_DAILY_ENDPOINT", func(c *Config, v string) { c.MeteostatDailyEndpoint = v }),
	stringEntry("METEOSTAT_MONTHLY_ENDPOINT", func(c *Config, v string) { c.MeteostatMonthlyEndpoint = v }),
	stringEntry("DWD_FTP_HOST", func(c *Config, v string) { c.DWDFTPHost = v }),
	stringEntry("AVIATIONWEATHER_ENDPOINT", func(c *Config, v string) { c.AviationWXEndpoint = v }),
	stringEntry("AVIATIONWEATHER_USER_AGENT", func(c *Config, v string) { c.AviationWXUA = v }),
	stringEntry("METNO_FORECAST_ENDPOINT", func(c *Config, v string) { c.MetNoEndpoint = v }),
	stringEntry("METNO_USER_AGENT", func(c *Config, v string) { c.MetNoUA = v }),
	stringEntry("GSA_API_BASE_URL", func(c *Config, v string) { c.GSAAPIBaseURL = v }),
	stringEntry("NOAA_ISD_LITE_ENDPOINT", func(c *Config, v string) { c.NOAAIsdLiteEndpoint = v }),
	stringEntry("NOAA_GHCND_ENDPOINT", func(c *Config, v string) { c.NOAAGhcndEndpoint = v }),
	stringEntry("ECCC_HOURLY_ENDPOINT", func(c *Config, v string) { c.ECCCHourlyEndpoint = v }),
	stringEntry("ECCC_DAILY_ENDPOINT", func(c *Config, v string) { c.ECCCDailyEndpoint = v }),
}

// LoadEnv applies MS_<KEY> overrides from the process environment onto c,
// in place. Unknown keys and values that fail to parse/validate are
// logged and skipped, leaving the default (spec §9).
func (c *Config) LoadEnv() {
	const prefix = "MS_"
	known := make(map[string]schemaEntry, len(schema))
	for _, e := range schema {
		known[e.key] = e
	}

	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 || !strings.HasPrefix(kv, prefix) {
			continue
		}
		key, raw := kv[len(prefix):eq], kv[eq+1:]
		entry, ok := known[key]
		if !ok {
			logger.Debug("config: environment variable MS_%s does not match any config property", key)
			continue
		}
		if !entry.apply(c, raw) {
			logger.Error("config: failed to parse/validate environment variable MS_%s", key)
		}
	}
}
