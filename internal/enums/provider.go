package enums

// Provider is a stable identifier for an upstream data source.
type Provider string

const (
	MeteostatHourly Provider = "meteostat_hourly"
	MeteostatDaily  Provider = "meteostat_daily"
	MeteostatMonthly Provider = "meteostat_monthly"

	DWDHourly Provider = "dwd_hourly"
	DWDDaily  Provider = "dwd_daily"
	DWDMosmix Provider = "dwd_mosmix"
	DWDPoi    Provider = "dwd_poi"

	NOAAMetar   Provider = "noaa_metar"
	NOAAIsdLite Provider = "noaa_isd_lite"
	NOAAGhcnd   Provider = "noaa_ghcnd"

	MetNoForecast Provider = "metno_forecast"

	ECCCHourly Provider = "eccc_hourly"
	ECCCDaily  Provider = "eccc_daily"

	GSAHourly  Provider = "gsa_hourly"
	GSADaily   Provider = "gsa_daily"
	GSAMonthly Provider = "gsa_monthly"
	GSASynop   Provider = "gsa_synop"
)

// ProviderMeta is the static metadata record for one Provider.
type ProviderMeta struct {
	ID          Provider
	Name        string
	Granularity Granularity
	Priority    int // larger wins in squash
	Grade       string
	License     string
	Parameters  map[Parameter]bool
	Countries   []string // empty = no restriction
	CoverageLo  string   // "YYYY-MM-DD", "" = open
	CoverageHi  string   // "YYYY-MM-DD", "" = open (now)
	Depends     []string // station.Identifiers keys required
}

func paramSet(ps ...Parameter) map[Parameter]bool {
	m := make(map[Parameter]bool, len(ps))
	for _, p := range ps {
		m[p] = true
	}
	return m
}

// DefaultProviders is the process-scoped provider catalog, grounded on
// original_source/meteostat/api/config.py and the providers/ adapters.
var DefaultProviders = map[Provider]ProviderMeta{
	MeteostatHourly: {
		ID: MeteostatHourly, Name: "Meteostat Bulk Hourly", Granularity: Hourly,
		Priority: 10, Grade: "B", License: "ODbL",
		Parameters: paramSet(Temp, Dwpt, RHum, Prcp, SnWD, WDir, WSpd, WPgt, Pres, TSun, CldC, Coco),
		Depends:    []string{},
	},
	MeteostatDaily: {
		ID: MeteostatDaily, Name: "Meteostat Bulk Daily", Granularity: Daily,
		Priority: 10, Grade: "B", License: "ODbL",
		Parameters: paramSet(Temp, TMin, TMax, RHum, Prcp, Snow, SnWD, WSpd, WPgt, Pres, TSun, CldC),
	},
	MeteostatMonthly: {
		ID: MeteostatMonthly, Name: "Meteostat Bulk Monthly", Granularity: Monthly,
		Priority: 10, Grade: "B", License: "ODbL",
		Parameters: paramSet(Temp, TMin, TMax, Prcp, WSpd, Pres, TSun),
	},
	// DWDHourly/DWDDaily carry a real CoverageLo: DWD's open Climate Data
	// Center historical archive only goes back to 1995 for the hourly/daily
	// station sets this adapter reads, so a request entirely before that
	// date has no DWD candidate regardless of Depends/Countries.
	DWDHourly: {
		ID: DWDHourly, Name: "Deutscher Wetterdienst Hourly", Granularity: Hourly,
		Priority: 30, Grade: "A", License: "CC-BY 4.0", Countries: []string{"DE"},
		Parameters: paramSet(Temp, Dwpt, RHum, Prcp, WDir, WSpd, WPgt, Pres, TSun, CldC, Vsby, Coco),
		Depends:    []string{"national"},
		CoverageLo: "1995-01-01",
	},
	// DWDPoi is the POI (point-of-interest) hourly product DWD began
	// publishing in 2014; it has no earlier backfill.
	DWDPoi: {
		ID: DWDPoi, Name: "Deutscher Wetterdienst POI", Granularity: Hourly,
		Priority: 20, Grade: "B", License: "CC-BY 4.0", Countries: []string{"DE"},
		Parameters: paramSet(Temp, Prcp, WDir, WSpd, Pres, Vsby, Coco),
		Depends:    []string{"national"},
		CoverageLo: "2014-01-01",
	},
	DWDMosmix: {
		ID: DWDMosmix, Name: "Deutscher Wetterdienst MOSMIX", Granularity: Hourly,
		Priority: 10, Grade: "C", License: "CC-BY 4.0", Countries: []string{"DE"},
		Parameters: paramSet(Temp, RHum, Prcp, WDir, WSpd, Pres, Coco),
		Depends:    []string{"national"},
	},
	DWDDaily: {
		ID: DWDDaily, Name: "Deutscher Wetterdienst Daily", Granularity: Daily,
		Priority: 30, Grade: "A", License: "CC-BY 4.0", Countries: []string{"DE"},
		Parameters: paramSet(Temp, TMin, TMax, RHum, Prcp, SnWD, WSpd, WPgt, Pres, TSun, CldC),
		Depends:    []string{"national"},
		CoverageLo: "1995-01-01",
	},
	NOAAMetar: {
		ID: NOAAMetar, Name: "NOAA Aviation METAR", Granularity: Hourly,
		Priority: 15, Grade: "B", License: "Public Domain",
		Parameters: paramSet(Temp, Dwpt, WDir, WSpd, Pres, Vsby, Coco),
		Depends:    []string{"icao"},
	},
	NOAAIsdLite: {
		ID: NOAAIsdLite, Name: "NOAA ISD Lite", Granularity: Hourly,
		Priority: 12, Grade: "B", License: "Public Domain",
		Parameters: paramSet(Temp, Dwpt, RHum, WDir, WSpd, Pres, Coco),
		Depends:    []string{"wmo"},
	},
	NOAAGhcnd: {
		ID: NOAAGhcnd, Name: "NOAA GHCN-Daily", Granularity: Daily,
		Priority: 12, Grade: "B", License: "Public Domain",
		Parameters: paramSet(Temp, TMin, TMax, Prcp, Snow, SnWD),
		Depends:    []string{"wmo"},
	},
	MetNoForecast: {
		ID: MetNoForecast, Name: "MET Norway Locationforecast", Granularity: Hourly,
		Priority: 5, Grade: "C", License: "CC-BY 4.0",
		Parameters: paramSet(Temp, RHum, Prcp, WDir, WSpd, Pres, CldC),
		Depends:    []string{}, // point-addressable, no station identifier needed
	},
	ECCCHourly: {
		ID: ECCCHourly, Name: "Environment and Climate Change Canada Hourly", Granularity: Hourly,
		Priority: 25, Grade: "A", License: "Open Government Licence – Canada", Countries: []string{"CA"},
		Parameters: paramSet(RHum, WDir, WSpd, Vsby, Prcp, Temp),
		Depends:    []string{"national"},
	},
	ECCCDaily: {
		ID: ECCCDaily, Name: "Environment and Climate Change Canada Daily", Granularity: Daily,
		Priority: 25, Grade: "A", License: "Open Government Licence – Canada", Countries: []string{"CA"},
		Parameters: paramSet(Temp, TMin, TMax, Prcp, Snow, SnWD),
		Depends:    []string{"national"},
	},
	GSAHourly: {
		ID: GSAHourly, Name: "GeoSphere Austria Hourly", Granularity: Hourly,
		Priority: 28, Grade: "A", License: "CC-BY 4.0", Countries: []string{"AT"},
		Parameters: paramSet(Temp, Prcp, Pres, WSpd, WDir, RHum, TSun),
		Depends:    []string{"national"},
	},
	GSADaily: {
		ID: GSADaily, Name: "GeoSphere Austria Daily", Granularity: Daily,
		Priority: 28, Grade: "A", License: "CC-BY 4.0", Countries: []string{"AT"},
		Parameters: paramSet(Temp, Prcp, Pres, RHum, TSun),
		Depends:    []string{"geosphere_id"},
	},
	GSAMonthly: {
		ID: GSAMonthly, Name: "GeoSphere Austria Monthly", Granularity: Monthly,
		Priority: 28, Grade: "A", License: "CC-BY 4.0", Countries: []string{"AT"},
		Parameters: paramSet(Temp, TXMn, TXMx, TMin, TMax, RHum, Prcp, WSpd, Pres, TSun, CldC),
		Depends:    []string{"national"},
	},
	GSASynop: {
		ID: GSASynop, Name: "GeoSphere Austria Synoptic", Granularity: Hourly,
		Priority: 18, Grade: "B", License: "CC-BY 4.0", Countries: []string{"AT"},
		Parameters: paramSet(Temp, Prcp, Pres, WSpd, WDir, RHum),
		Depends:    []string{"national"},
	},
}
