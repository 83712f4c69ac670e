// Package enums defines the stable identifiers shared across the engine:
// parameters, granularities, providers, units and cache TTLs.
package enums

import "time"

// Parameter is a stable identifier for an atomic meteorological measure.
type Parameter string

const (
	Temp  Parameter = "temp"  // Air temperature, °C
	TMin  Parameter = "tmin"  // Minimum air temperature, °C
	TMax  Parameter = "tmax"  // Maximum air temperature, °C
	TXMn  Parameter = "txmn"  // Minimum monthly average temperature, °C
	TXMx  Parameter = "txmx"  // Maximum monthly average temperature, °C
	RHum  Parameter = "rhum"  // Relative humidity, %
	Dwpt  Parameter = "dwpt"  // Dew point, °C
	Prcp  Parameter = "prcp"  // Precipitation, mm
	Snow  Parameter = "snow"  // Snowfall, mm
	SnWD  Parameter = "snwd"  // Snow depth, mm
	WDir  Parameter = "wdir"  // Wind direction, degrees (categorical)
	WSpd  Parameter = "wspd"  // Wind speed, km/h
	WPgt  Parameter = "wpgt"  // Wind gust, km/h
	Pres  Parameter = "pres"  // Sea-level air pressure, hPa
	TSun  Parameter = "tsun"  // Sunshine duration, minutes
	CldC  Parameter = "cldc"  // Cloud cover, okta (categorical)
	Vsby  Parameter = "vsby"  // Visibility, meters
	Coco  Parameter = "coco"  // Weather condition code (categorical)
)

// DType is the numeric storage type backing a Parameter's column.
type DType int

const (
	Float64 DType = iota
	Uint8
)

// Granularity is the sampling cadence.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Normals Granularity = "normals"
)

// Descriptor carries the static metadata for one Parameter.
type Descriptor struct {
	ID          Parameter
	Unit        string
	DType       DType
	Granularity []Granularity
	Categorical bool
	// Validate reports whether v is a plausible value for this parameter.
	// A nil Validate means any finite value passes.
	Validate func(v float64) bool
}

func rangeValidator(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

// Registry is the process-scoped table of all known parameters, keyed by id.
var Registry = map[Parameter]Descriptor{
	Temp: {ID: Temp, Unit: "C", DType: Float64, Granularity: []Granularity{Hourly, Daily, Monthly, Normals}, Validate: rangeValidator(-95, 60)},
	TMin: {ID: TMin, Unit: "C", DType: Float64, Granularity: []Granularity{Daily, Monthly, Normals}, Validate: rangeValidator(-95, 60)},
	TMax: {ID: TMax, Unit: "C", DType: Float64, Granularity: []Granularity{Daily, Monthly, Normals}, Validate: rangeValidator(-95, 60)},
	TXMn: {ID: TXMn, Unit: "C", DType: Float64, Granularity: []Granularity{Monthly, Normals}, Validate: rangeValidator(-95, 60)},
	TXMx: {ID: TXMx, Unit: "C", DType: Float64, Granularity: []Granularity{Monthly, Normals}, Validate: rangeValidator(-95, 60)},
	RHum: {ID: RHum, Unit: "%", DType: Float64, Granularity: []Granularity{Hourly, Daily, Monthly}, Validate: rangeValidator(0, 100)},
	Dwpt: {ID: Dwpt, Unit: "C", DType: Float64, Granularity: []Granularity{Hourly}, Validate: rangeValidator(-95, 60)},
	Prcp: {ID: Prcp, Unit: "mm", DType: Float64, Granularity: []Granularity{Hourly, Daily, Monthly, Normals}, Validate: rangeValidator(0, 2000)},
	Snow: {ID: Snow, Unit: "mm", DType: Float64, Granularity: []Granularity{Daily}, Validate: rangeValidator(0, 11000)},
	SnWD: {ID: SnWD, Unit: "mm", DType: Float64, Granularity: []Granularity{Daily}, Validate: rangeValidator(0, 11000)},
	WDir: {ID: WDir, Unit: "deg", DType: Uint8, Categorical: true, Granularity: []Granularity{Hourly}, Validate: rangeValidator(0, 360)},
	WSpd: {ID: WSpd, Unit: "km/h", DType: Float64, Granularity: []Granularity{Hourly, Daily, Monthly, Normals}, Validate: rangeValidator(0, 500)},
	WPgt: {ID: WPgt, Unit: "km/h", DType: Float64, Granularity: []Granularity{Hourly, Daily}, Validate: rangeValidator(0, 500)},
	Pres: {ID: Pres, Unit: "hPa", DType: Float64, Granularity: []Granularity{Hourly, Daily, Monthly}, Validate: rangeValidator(850, 1090)},
	TSun: {ID: TSun, Unit: "min", DType: Float64, Granularity: []Granularity{Hourly, Daily, Monthly}, Validate: rangeValidator(0, 1440)},
	CldC: {ID: CldC, Unit: "okta", DType: Uint8, Categorical: true, Granularity: []Granularity{Hourly, Daily, Monthly}, Validate: rangeValidator(0, 9)},
	Vsby: {ID: Vsby, Unit: "m", DType: Float64, Granularity: []Granularity{Hourly}, Validate: rangeValidator(0, 200000)},
	Coco: {ID: Coco, Unit: "", DType: Uint8, Categorical: true, Granularity: []Granularity{Hourly, Daily}, Validate: rangeValidator(1, 27)},
}

// DefaultParameters mirrors the original library's per-granularity default
// parameter sets used when the caller does not narrow the request.
var DefaultParameters = map[Granularity][]Parameter{
	Hourly:  {Temp, Dwpt, RHum, Prcp, SnWD, WDir, WSpd, WPgt, Pres, TSun, CldC, Vsby, Coco},
	Daily:   {Temp, TMin, TMax, RHum, Prcp, SnWD, WSpd, WPgt, Pres, TSun, CldC},
	Monthly: {Temp, TMin, TMax, Prcp, WSpd, Pres, TSun},
	Normals: {Temp, TMin, TMax, Prcp, WSpd, Pres, TSun},
}

// TTL enumerates the standard cache lifetimes used by provider adapters.
type TTL time.Duration

const (
	TTLHour  TTL = TTL(time.Hour)
	TTLDay   TTL = TTL(24 * time.Hour)
	TTLWeek  TTL = TTL(7 * 24 * time.Hour)
	TTLMonth TTL = TTL(30 * 24 * time.Hour)
	TTLYear  TTL = TTL(365 * 24 * time.Hour)
)
