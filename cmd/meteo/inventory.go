package main

import (
	"flag"
	"fmt"
	"log"

	meteo "github.com/dl-alexandre/meteo"
	"github.com/dl-alexandre/meteo/internal/enums"
)

func cmdInventory(stationsDB string, args []string) {
	fs := flag.NewFlagSet("inventory", flag.ExitOnError)
	gran := fs.String("granularity", "daily", "hourly|daily|monthly|normals")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}
	if fs.NArg() != 1 {
		log.Fatal("usage: meteo inventory -granularity daily <station-id>")
	}

	cl, err := meteo.Open(loadConfig(stationsDB))
	if err != nil {
		log.Fatalf("opening client: %v", err)
	}
	defer cl.Close()

	inv, err := cl.StationsInventory(fs.Arg(0), enums.Granularity(*gran))
	if err != nil {
		log.Fatalf("inventory lookup failed: %v", err)
	}
	for param, window := range inv.Windows {
		fmt.Printf("%s\t%s .. %s\n", param, window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	}
}
