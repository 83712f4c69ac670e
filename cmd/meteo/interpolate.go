package main

import (
	"context"
	"flag"
	"log"

	meteo "github.com/dl-alexandre/meteo"
	"github.com/dl-alexandre/meteo/internal/interpolate"
	"github.com/dl-alexandre/meteo/internal/typing"
)

func cmdInterpolate(stationsDB string, args []string) {
	fs := flag.NewFlagSet("interpolate", flag.ExitOnError)
	var stations stationList
	fs.Var(&stations, "station", "Station id to draw from (repeatable)")
	start := fs.String("start", "", "Start date/time")
	end := fs.String("end", "", "End date/time")
	lat := fs.Float64("lat", 0, "Target point latitude")
	lon := fs.Float64("lon", 0, "Target point longitude")
	hasElevation := fs.Bool("has-elevation", false, "Whether -elevation should be applied (0 is a valid elevation)")
	elevation := fs.Float64("elevation", 0, "Target point elevation, meters")
	power := fs.Float64("power", 2, "IDW power exponent")
	lapseRate := fs.Float64("lapse-rate", 6.5, "Temperature lapse rate, K/km")
	lapseThreshold := fs.Float64("lapse-rate-threshold", 50, "Elevation difference cap for the distance term, meters")
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

	ts, err := cl.Hourly(context.Background(), stations, startT, endT, nil, nil, "")
	if err != nil {
		log.Fatalf("fetch failed: %v", err)
	}

	var elevPtr *float64
	if *hasElevation {
		elevPtr = elevation
	}
	point, err := typing.NewPoint(*lat, *lon, elevPtr)
	if err != nil {
		log.Fatalf("invalid point: %v", err)
	}

	opts := interpolate.OptionsFromConfig(cl.Config)
	opts.Power = *power
	opts.LapseRate = *lapseRate
	opts.LapseRateThreshold = *lapseThreshold

	result := meteo.Interpolate(ts, point, opts)
	printFrame(result.Frame)
}
