// Package typing holds the core per-request and per-station value types
// shared across the engine (spec §3): Station, Point, Request,
// ProviderRequest, Inventory.
package typing

import (
	"fmt"
	"time"

	"github.com/dl-alexandre/meteo/internal/enums"
)

// Station is an immutable record describing one weather station.
type Station struct {
	ID          string
	Name        string
	Country     string
	Region      string
	Latitude    float64
	Longitude   float64
	Elevation   float64 // meters; zero is a valid, non-missing value
	Timezone    string  // IANA zone name, "" if unknown
	Identifiers map[string]string
}

// HasIdentifier reports whether the station carries the named alternate id.
func (s Station) HasIdentifier(key string) bool {
	if s.Identifiers == nil {
		return false
	}
	_, ok := s.Identifiers[key]
	return ok
}

// Point is a geographic coordinate, optionally with elevation.
//
// Elevation is a *float64 so that 0 (sea level) is distinguishable from
// "not provided" — spec §3/§4.9 calls this out as load-bearing for the
// lapse-rate correction.
type Point struct {
	Latitude  float64
	Longitude float64
	Elevation *float64
}

// NewPoint validates latitude/longitude ranges at construction.
func NewPoint(lat, lon float64, elevation *float64) (Point, error) {
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return Point{Latitude: lat, Longitude: lon, Elevation: elevation}, nil
}

// Inventory is a station's per-parameter data-availability window for one
// granularity.
type Inventory struct {
	StationID   string
	Granularity enums.Granularity
	Windows     map[enums.Parameter]TimeWindow
}

// TimeWindow is an inclusive [Start, End] bound; a zero value on either
// side means "unbounded on that side".
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Request is the user-facing query assembled by the public API funcs
// (daily/hourly/monthly/normals) before validation and dispatch.
type Request struct {
	Granularity enums.Granularity
	Stations    []Station
	Parameters  []enums.Parameter
	Providers   []enums.Provider // nil = use registry default candidate set
	Start       time.Time        // zero = unbounded / earliest available
	End         time.Time        // zero = "now" after validator normalization
	Timezone    string           // "" = naive UTC
}

// ProviderRequest is the per-(station, provider) task the dispatch engine
// hands to an adapter.
type ProviderRequest struct {
	Station    Station
	Provider   enums.Provider
	Parameters []enums.Parameter
	Start      time.Time
	End        time.Time
}

// CacheKey returns a stable, deterministic identifier for this task,
// suitable as the argument-tuple component of a cache key (spec §4.1/§9).
func (pr ProviderRequest) CacheKey() string {
	return fmt.Sprintf("%s|%s|%d|%d-%d",
		pr.Provider, pr.Station.ID, pr.Start.Unix(), pr.End.Unix(), len(pr.Parameters))
}
