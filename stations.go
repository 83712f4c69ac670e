package meteo

import (
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/stations"
	"github.com/dl-alexandre/meteo/internal/typing"
)

// StationsMeta returns one station's catalog record (spec §6:
// "stations.meta"); ok is false for an unknown id.
func (cl *Client) StationsMeta(id string) (typing.Station, bool, error) {
	return cl.Catalog.Meta(id)
}

// StationsNearby returns up to limit stations ordered by ascending
// great-circle distance from point (spec §6: "stations.nearby").
func (cl *Client) StationsNearby(point typing.Point, limit int) ([]stations.NearbyResult, error) {
	return cl.Catalog.Nearby(point, limit)
}

// StationsInventory returns a station's per-parameter data-availability
// window at one granularity (spec §6: "stations.inventory").
func (cl *Client) StationsInventory(id string, gran enums.Granularity) (typing.Inventory, error) {
	return cl.Catalog.Inventory(id, gran)
}

// StationsQuery runs an arbitrary read-only SQL statement against the
// station catalog (spec §6: "stations.query").
func (cl *Client) StationsQuery(sqlText string, args ...any) ([]stations.QueryRow, error) {
	return cl.Catalog.Query(sqlText, args...)
}
