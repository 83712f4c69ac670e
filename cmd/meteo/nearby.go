package main

import (
	"flag"
	"fmt"
	"log"

	meteo "github.com/dl-alexandre/meteo"
	"github.com/dl-alexandre/meteo/internal/typing"
)

func cmdNearby(stationsDB string, args []string) {
	fs := flag.NewFlagSet("nearby", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Point latitude")
	lon := fs.Float64("lon", 0, "Point longitude")
	limit := fs.Int("limit", 5, "Maximum number of stations to return")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	cl, err := meteo.Open(loadConfig(stationsDB))
	if err != nil {
		log.Fatalf("opening client: %v", err)
	}
	defer cl.Close()

	point, err := typing.NewPoint(*lat, *lon, nil)
	if err != nil {
		log.Fatalf("invalid point: %v", err)
	}

	results, err := cl.StationsNearby(point, *limit)
	if err != nil {
		log.Fatalf("nearby query failed: %v", err)
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t%.0fm\n", r.Station.ID, r.Station.Name, r.Distance)
	}
}
