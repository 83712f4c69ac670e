package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"

	meteo "github.com/dl-alexandre/meteo"
	"github.com/dl-alexandre/meteo/internal/enums"
	"github.com/dl-alexandre/meteo/internal/frame"
	"github.com/dl-alexandre/meteo/internal/timeseries"
	"github.com/dl-alexandre/meteo/internal/units"
)

// granularity names one of the four fetch subcommands; the handler
// dispatches to the matching Client method.
type granularity int

const (
	hourly granularity = iota
	daily
	monthly
	normals
)

func granularityName(g granularity) string {
	switch g {
	case hourly:
		return "hourly"
	case daily:
		return "daily"
	case monthly:
		return "monthly"
	case normals:
		return "normals"
	}
	return "fetch"
}

// stationList accumulates repeated -station flags, grounded on the
// teacher's -stations comma-list flag (cmd/cimis/fetch.go).
type stationList []string

func (s *stationList) String() string { return strings.Join(*s, ",") }
func (s *stationList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// providerList accumulates repeated -provider flags, narrowing dispatch
// to an explicit candidate set (spec §6's "providers?" parameter).
type providerList []enums.Provider

func (p *providerList) String() string {
	ids := make([]string, len(*p))
	for i, id := range *p {
		ids[i] = string(id)
	}
	return strings.Join(ids, ",")
}
func (p *providerList) Set(v string) error {
	*p = append(*p, enums.Provider(v))
	return nil
}

const timeLayout = "2006-01-02T15:04"
const dateLayout = "2006-01-02"

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(dateLayout, s)
}

func cmdFetch(gran granularity, stationsDB string, args []string) {
	fs := flag.NewFlagSet(granularityName(gran), flag.ExitOnError)
	var stations stationList
	fs.Var(&stations, "station", "Station id (repeatable)")
	var providerIDs providerList
	fs.Var(&providerIDs, "provider", "Narrow dispatch to this provider id (repeatable)")
	start := fs.String("start", "", "Start date/time (YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	end := fs.String("end", "", "End date/time")
	tz := fs.String("tz", "", "IANA timezone: reinterprets start/end as local wall-clock time and localizes the displayed result")
	squash := fs.Bool("squash", true, "Collapse provider rows to one per (station, time)")
	sources := fs.Bool("sources", false, "Keep per-parameter source attribution when squashing (requires -squash); the printed table has no <param>_source columns")
	imperial := fs.Bool("imperial", false, "Convert output to imperial units")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}
	if len(stations) == 0 {
		log.Fatal("at least one -station is required")
	}

	startT, err := parseTime(*start)
	if err != nil {
		log.Fatalf("invalid -start: %v", err)
	}
	endT, err := parseTime(*end)
	if err != nil {
		log.Fatalf("invalid -end: %v", err)
	}

	cl, err := meteo.Open(loadConfig(stationsDB))
	if err != nil {
		log.Fatalf("opening client: %v", err)
	}
	defer cl.Close()

	ctx := context.Background()
	ts, err := fetchByGranularity(ctx, cl, gran, stations, startT, endT, providerIDs, *tz)
	if err != nil {
		log.Fatalf("fetch failed: %v", err)
	}

	opts := timeseries.DefaultFetchOptions()
	opts.Squash = *squash
	opts.Sources = *sources
	opts.Timezone = *tz
	if *imperial {
		opts.Units = units.Imperial
	}
	result := ts.Fetch(opts)
	printFrame(result.Frame)
}

func fetchByGranularity(ctx context.Context, cl *meteo.Client, gran granularity, stations []string, start, end time.Time, providerIDs []enums.Provider, timezone string) (timeseries.TimeSeries, error) {
	switch gran {
	case hourly:
		return cl.Hourly(ctx, stations, start, end, nil, providerIDs, timezone)
	case daily:
		return cl.Daily(ctx, stations, start, end, nil, providerIDs, timezone)
	case monthly:
		return cl.Monthly(ctx, stations, start, end, nil, providerIDs, timezone)
	case normals:
		return cl.Normals(ctx, stations, start, end, nil, providerIDs, timezone)
	}
	return timeseries.TimeSeries{}, fmt.Errorf("unknown granularity %d", gran)
}

// printFrame writes a tab-separated table. When stdout is a terminal it
// widens the separator to an aligned column via tabwriter; piped output
// stays plain tab-separated for downstream parsing.
func printFrame(f *frame.Frame) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	var w io.Writer = tw
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		w = os.Stdout
	}

	params := f.Params()
	fmt.Fprint(w, "station\ttime")
	for _, p := range params {
		fmt.Fprintf(w, "\t%s", p)
	}
	fmt.Fprintln(w)
	for i, k := range f.Keys {
		fmt.Fprintf(w, "%s\t%s", k.Station, time.Unix(k.UnixSec, 0).UTC().Format(time.RFC3339))
		for _, c := range f.Columns {
			fmt.Fprintf(w, "\t%v", c.Values[i])
		}
		fmt.Fprintln(w)
	}
	tw.Flush()
	fmt.Printf("\n%d rows, %d parameters\n", f.Len(), len(params))
}
