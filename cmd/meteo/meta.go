package main

import (
	"flag"
	"fmt"
	"log"

	meteo "github.com/dl-alexandre/meteo"
)

func cmdMeta(stationsDB string, args []string) {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}
	if fs.NArg() != 1 {
		log.Fatal("usage: meteo meta <station-id>")
	}

	cl, err := meteo.Open(loadConfig(stationsDB))
	if err != nil {
		log.Fatalf("opening client: %v", err)
	}
	defer cl.Close()

	station, ok, err := cl.StationsMeta(fs.Arg(0))
	if err != nil {
		log.Fatalf("meta lookup failed: %v", err)
	}
	if !ok {
		fmt.Println("station not found")
		return
	}
	fmt.Printf("ID:        %s\n", station.ID)
	fmt.Printf("Name:      %s\n", station.Name)
	fmt.Printf("Country:   %s\n", station.Country)
	fmt.Printf("Region:    %s\n", station.Region)
	fmt.Printf("Latitude:  %.4f\n", station.Latitude)
	fmt.Printf("Longitude: %.4f\n", station.Longitude)
	fmt.Printf("Elevation: %.0fm\n", station.Elevation)
	fmt.Printf("Timezone:  %s\n", station.Timezone)
	for k, v := range station.Identifiers {
		fmt.Printf("  %s: %s\n", k, v)
	}
}
