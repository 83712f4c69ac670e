// Package validate implements the pre-dispatch request gates (spec §4.5).
package validate

import (
	"fmt"
	"time"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/errs"
	"github.com/dl-alexandre/meteo/internal/typing"
)

const (
	maxHourlyYears = 3
	maxDailyYears  = 30
	maxStations    = 10
)

// Normalize applies the validator's defaulting rules in place: an absent
// end date becomes now (spec §4.5), before the length/count checks run.
func Normalize(req *typing.Request, now time.Time) {
	if req.End.IsZero() {
		req.End = now
	}
}

// elapsedYears counts the number of complete years between start and end,
// the same "age" calculation dateutil.relativedelta uses: the calendar
// year difference, decremented by one if end's month/day falls before
// start's within the year. This is what makes Dec 31 1994 -> Jan 1 2025
// count as 30 complete years rather than 31, and why a 1990-01-01 ->
// 2020-12-31 daily request is exactly 30 years, not 31 (spec §8).
func elapsedYears(start, end time.Time) int {
	years := end.Year() - start.Year()
	if end.Month() < start.Month() || (end.Month() == start.Month() && end.Day() < start.Day()) {
		years--
	}
	return years
}

// Check applies the request validator's gates. enabled corresponds to
// the block_large_requests config flag; when false, every gate is
// skipped (spec §4.5/§8).
func Check(req typing.Request, enabled bool) error {
	if !enabled {
		return nil
	}

	if (req.Granularity == enums.Hourly || req.Granularity == enums.Daily) && req.Start.IsZero() {
		return fmt.Errorf("%w: hourly/daily requests without a start date are blocked (disable via block_large_requests=false)", errs.ErrRequestTooLarge)
	}

	if len(req.Stations) > maxStations {
		return fmt.Errorf("%w: requests with more than %d stations are blocked (disable via block_large_requests=false)",
			errs.ErrRequestTooLarge, maxStations)
	}

	if req.Start.IsZero() || req.End.IsZero() {
		return nil
	}
	years := elapsedYears(req.Start, req.End)

	switch req.Granularity {
	case enums.Hourly:
		if years > maxHourlyYears {
			return fmt.Errorf("%w: hourly requests longer than %d years are blocked (disable via block_large_requests=false)", errs.ErrRequestTooLarge, maxHourlyYears)
		}
	case enums.Daily:
		if years > maxDailyYears {
			return fmt.Errorf("%w: daily requests longer than %d years are blocked (disable via block_large_requests=false)", errs.ErrRequestTooLarge, maxDailyYears)
		}
	case enums.Monthly, enums.Normals:
		// no length cap
	}
	return nil
}
