// Package stations implements the embedded, read-only relational station
// catalog (spec §4.3): a sqlite-backed store of stations plus a
// (station, parameter, granularity, start, end) inventory table, with a
// great-circle nearest-neighbor query. Grounded on the teacher's
// metadata.Store (cmd/cimis/query.go: "Initialize metadata store" /
// "metadata.sqlite3"), generalized from a chunk index to the station
// schema spec.md describes, and on modernc.org/sqlite — the pure-Go
// driver already in the teacher's require block — so the module stays
// cgo-free.
package stations

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"math"
	"sync"
	"time"

	"modernc.org/sqlite"

	"github.com/dl-alexandre/meteo/internal/core/logger"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/typing"
)

var registerUDFsOnce sync.Once

// registerMathUDFs registers acos/cos/sin/radians/degrees as SQL scalar
// functions for the great-circle distance query (spec §4.3: "the store may lack
// native trig"). Registration happens once per process; it is idempotent
// by construction since every connection shares the same global driver
// function table, matching spec §5's "idempotent per connection" note.
func registerMathUDFs() {
	registerUDFsOnce.Do(func() {
		reg := func(name string, f func(float64) float64) {
			err := sqlite.RegisterDeterministicScalarFunction(name, 1,
				func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
					v, ok := toFloat(args[0])
					if !ok {
						return nil, fmt.Errorf("%s: non-numeric argument", name)
					}
					return f(v), nil
				})
			if err != nil {
				logger.Error("stations: register SQL function %s failed: %v", name, err)
			}
		}
		reg("radians", func(v float64) float64 { return v * math.Pi / 180 })
		reg("degrees", func(v float64) float64 { return v * 180 / math.Pi })
		reg("sin", math.Sin)
		reg("cos", math.Cos)
		// acos argument clamped to [-1, 1] to absorb floating-point
		// overshoot at identical or antipodal points (spec §4.3/§8).
		reg("acos", func(v float64) float64 {
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			return math.Acos(v)
		})
	})
}

func toFloat(v driver.Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Catalog is a read-only handle to the embedded station database. One
// handle may be shared by concurrent callers (spec §5: "one read-only
// handle per calling task" refers to logical ownership, not exclusivity —
// sql.DB itself pools connections safely).
type Catalog struct {
	db *sql.DB
}

// Open opens (and, if absent, initializes the schema of) the sqlite file
// at path.
func Open(path string) (*Catalog, error) {
	registerMathUDFs()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("stations: open %s: %w", path, err)
	}
	c := &Catalog{db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) ensureSchema() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS stations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	country TEXT,
	region TEXT,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	elevation REAL NOT NULL,
	timezone TEXT
);
CREATE TABLE IF NOT EXISTS station_identifiers (
	station_id TEXT NOT NULL REFERENCES stations(id),
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (station_id, key)
);
CREATE TABLE IF NOT EXISTS inventory (
	station_id TEXT NOT NULL REFERENCES stations(id),
	granularity TEXT NOT NULL,
	parameter TEXT NOT NULL,
	start_date TEXT,
	end_date TEXT,
	PRIMARY KEY (station_id, granularity, parameter)
);
`)
	if err != nil {
		return fmt.Errorf("stations: ensure schema: %w", err)
	}
	return nil
}

// Meta looks up a station by id. A missing id returns (Station{}, false,
// nil) — spec §4.10: "UnknownStation ... returns None (no throw)".
func (c *Catalog) Meta(id string) (typing.Station, bool, error) {
	row := c.db.QueryRow(`SELECT id, name, country, region, latitude, longitude, elevation, timezone FROM stations WHERE id = ?`, id)
	var s typing.Station
	var country, region, tz sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &country, &region, &s.Latitude, &s.Longitude, &s.Elevation, &tz); err != nil {
		if err == sql.ErrNoRows {
			return typing.Station{}, false, nil
		}
		return typing.Station{}, false, fmt.Errorf("stations: meta(%s): %w", id, err)
	}
	s.Country = country.String
	s.Region = region.String
	s.Timezone = tz.String

	idents, err := c.identifiers(id)
	if err != nil {
		return typing.Station{}, false, err
	}
	s.Identifiers = idents
	return s, true, nil
}

func (c *Catalog) identifiers(stationID string) (map[string]string, error) {
	rows, err := c.db.Query(`SELECT key, value FROM station_identifiers WHERE station_id = ?`, stationID)
	if err != nil {
		return nil, fmt.Errorf("stations: identifiers(%s): %w", stationID, err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// NearbyResult is one row of a nearby() query.
type NearbyResult struct {
	Station  typing.Station
	Distance float64 // meters
}

const earthRadiusMeters = 6371000.0

// Nearby returns up to limit stations ordered by ascending great-circle
// distance from point, computed in SQL using the haversine formula over
// the registered trig UDFs (spec §4.3).
func (c *Catalog) Nearby(point typing.Point, limit int) ([]NearbyResult, error) {
	const q = `
SELECT id, name, country, region, latitude, longitude, elevation, timezone,
	? * acos(
		cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?))
		+ sin(radians(?)) * sin(radians(latitude))
	) AS distance_m
FROM stations
ORDER BY distance_m ASC
LIMIT ?`
	rows, err := c.db.Query(q, earthRadiusMeters, point.Latitude, point.Longitude, point.Latitude, limit)
	if err != nil {
		return nil, fmt.Errorf("stations: nearby: %w", err)
	}
	defer rows.Close()

	var out []NearbyResult
	for rows.Next() {
		var s typing.Station
		var country, region, tz sql.NullString
		var dist float64
		if err := rows.Scan(&s.ID, &s.Name, &country, &region, &s.Latitude, &s.Longitude, &s.Elevation, &tz, &dist); err != nil {
			return nil, fmt.Errorf("stations: nearby scan: %w", err)
		}
		s.Country, s.Region, s.Timezone = country.String, region.String, tz.String
		idents, err := c.identifiers(s.ID)
		if err != nil {
			return nil, err
		}
		s.Identifiers = idents
		out = append(out, NearbyResult{Station: s, Distance: dist})
	}
	return out, rows.Err()
}

// Inventory returns the per-parameter availability window for a station
// at one granularity.
func (c *Catalog) Inventory(id string, gran enums.Granularity) (typing.Inventory, error) {
	rows, err := c.db.Query(`SELECT parameter, start_date, end_date FROM inventory WHERE station_id = ? AND granularity = ?`, id, string(gran))
	if err != nil {
		return typing.Inventory{}, fmt.Errorf("stations: inventory(%s): %w", id, err)
	}
	defer rows.Close()

	inv := typing.Inventory{StationID: id, Granularity: gran, Windows: map[enums.Parameter]typing.TimeWindow{}}
	for rows.Next() {
		var param string
		var start, end sql.NullString
		if err := rows.Scan(&param, &start, &end); err != nil {
			return typing.Inventory{}, err
		}
		w := typing.TimeWindow{}
		if start.Valid {
			w.Start, _ = time.Parse(time.RFC3339, start.String)
		}
		if end.Valid {
			w.End, _ = time.Parse(time.RFC3339, end.String)
		}
		inv.Windows[enums.Parameter(param)] = w
	}
	return inv, rows.Err()
}

// QueryRow is one row of an arbitrary Query call, as a column-name-keyed
// map of driver-native values.
type QueryRow map[string]any

// Query runs an arbitrary read-only SQL statement and returns its rows.
func (c *Catalog) Query(sqlText string, args ...any) ([]QueryRow, error) {
	rows, err := c.db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("stations: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []QueryRow
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := make(QueryRow, len(cols))
		for i, c := range cols {
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces a station record, used by the catalog
// refresh pipeline (out of scope per spec §1, but the write path backing
// `init`/refresh lives here since it's intrinsic to "embedded store").
func (c *Catalog) Upsert(s typing.Station) error {
	_, err := c.db.Exec(`
INSERT INTO stations (id, name, country, region, latitude, longitude, elevation, timezone)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name, country=excluded.country, region=excluded.region,
	latitude=excluded.latitude, longitude=excluded.longitude,
	elevation=excluded.elevation, timezone=excluded.timezone`,
		s.ID, s.Name, s.Country, s.Region, s.Latitude, s.Longitude, s.Elevation, s.Timezone)
	if err != nil {
		return fmt.Errorf("stations: upsert(%s): %w", s.ID, err)
	}
	for k, v := range s.Identifiers {
		if _, err := c.db.Exec(`INSERT INTO station_identifiers (station_id, key, value) VALUES (?, ?, ?)
			ON CONFLICT(station_id, key) DO UPDATE SET value=excluded.value`, s.ID, k, v); err != nil {
			return fmt.Errorf("stations: upsert identifier %s for %s: %w", k, s.ID, err)
		}
	}
	return nil
}
