package dispatch

import (
	"math"
	"testing"
	"time"

	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/typing"
)

func TestRequestedWindowPassesThroughWithoutTimezone(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)
	req := typing.Request{Start: start, End: end}

	gotStart, gotEnd := requestedWindow(req)
	if !gotStart.Equal(start) || !gotEnd.Equal(end) {
		t.Fatalf("expected naive start/end unchanged, got %v/%v", gotStart, gotEnd)
	}
}

// TestRequestedWindowShiftsByZoneOffset covers spec.md §8 scenario 2:
// a "15:00" wall-clock bound means something different in UTC depending
// on whether it's read as naive UTC or as Europe/Berlin (UTC+1 in
// January), so the resolved window's Unix seconds must differ by
// exactly one hour between the two.
func TestRequestedWindowShiftsByZoneOffset(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 17, 0, 0, 0, time.UTC)

	naiveStart, naiveEnd := requestedWindow(typing.Request{Start: start, End: end})

	berlin := typing.Request{Start: start, End: end, Timezone: "Europe/Berlin"}
	localStart, localEnd := requestedWindow(berlin)

	if naiveStart.Unix() == localStart.Unix() {
		t.Fatal("expected a timezone override to change the resolved window bound")
	}
	if got, want := naiveStart.Unix()-localStart.Unix(), int64(3600); got != want {
		t.Fatalf("expected a 1-hour shift for Europe/Berlin in January, got %ds", got)
	}
	if got, want := naiveEnd.Unix()-localEnd.Unix(), int64(3600); got != want {
		t.Fatalf("expected a 1-hour shift for Europe/Berlin in January, got %ds", got)
	}
}

func TestRequestedWindowIgnoresUnknownZone(t *testing.T) {
	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	req := typing.Request{Start: start, Timezone: "Not/A_Real_Zone"}
	got, _ := requestedWindow(req)
	if !got.Equal(start) {
		t.Fatalf("expected an unloadable zone to leave start unchanged, got %v", got)
	}
}

// buildHourlyFrame models three candidate rows at 2024-01-01T14:00Z,
// 15:00Z and 16:00Z, the way spec.md §8 scenario 2's station actually
// reports: different stations would differ, but this is one station
// with values recorded an hour apart.
func buildHourlyFrame() *frame.Frame {
	f := frame.New([]enums.Parameter{enums.Temp})
	f.AddRow(frame.Key{Station: "10637", UnixSec: time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC).Unix()}, map[enums.Parameter]float64{enums.Temp: 8.5}, enums.DWDHourly)
	f.AddRow(frame.Key{Station: "10637", UnixSec: time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC).Unix()}, map[enums.Parameter]float64{enums.Temp: 8.3}, enums.DWDHourly)
	f.AddRow(frame.Key{Station: "10637", UnixSec: time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC).Unix()}, map[enums.Parameter]float64{enums.Temp: 8.1}, enums.DWDHourly)
	return f
}

// TestFilterWindowTimezoneChangesSelectedRow reproduces spec.md §8
// scenario 2 at the filtering layer: requesting "15:00" naively selects
// the 8.3 row; requesting the same wall-clock bound under Europe/Berlin
// resolves to 14:00 UTC and selects the 8.5 row instead.
func TestFilterWindowTimezoneChangesSelectedRow(t *testing.T) {
	f := buildHourlyFrame()
	bound := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	naive := filterWindow(f, bound, bound)
	if naive.Len() != 1 || naive.Columns[0].Values[0] != 8.3 {
		t.Fatalf("expected the naive-UTC window to select temp 8.3, got %+v", naive.Columns[0].Values)
	}

	localStart, localEnd := requestedWindow(typing.Request{Start: bound, End: bound, Timezone: "Europe/Berlin"})
	local := filterWindow(f, localStart, localEnd)
	if local.Len() != 1 || local.Columns[0].Values[0] != 8.5 {
		t.Fatalf("expected the Europe/Berlin window to select temp 8.5, got %+v", local.Columns[0].Values)
	}
}

func TestFilterWindowUnboundedWhenBothZero(t *testing.T) {
	f := buildHourlyFrame()
	got := filterWindow(f, time.Time{}, time.Time{})
	if got.Len() != f.Len() {
		t.Fatalf("expected an unbounded window to keep every row, got %d of %d", got.Len(), f.Len())
	}
}

func TestFilterWindowHonorsOneSidedBounds(t *testing.T) {
	f := buildHourlyFrame()
	start := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)
	got := filterWindow(f, start, time.Time{})
	if got.Len() != 2 {
		t.Fatalf("expected rows from 15:00 onward (2 of 3), got %d", got.Len())
	}
	for _, v := range got.Columns[0].Values {
		if math.IsNaN(v) {
			t.Fatal("did not expect a NaN value in a hand-built frame")
		}
	}
}
