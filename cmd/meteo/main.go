// Main entry point for the meteo CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dl-alexandre/meteo/internal/core/config"
)

var (
	// Version is set during build
	Version = "dev"
	// GitCommit is set during build
	GitCommit = "unknown"
	// BuildTime is set during build
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	stationsDB := flag.String("stations-db", "", "Path to the station catalog sqlite file (overrides MS_STATIONS_DB_FILE)")
	flag.Parse()
	os.Args = append(os.Args[:1], flag.Args()...)
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("meteo %s (%s) built %s\n", Version, GitCommit, BuildTime)

	case "init":
		cmdInit(*stationsDB, os.Args[2:])

	case "daily":
		cmdFetch(daily, *stationsDB, os.Args[2:])

	case "hourly":
		cmdFetch(hourly, *stationsDB, os.Args[2:])

	case "monthly":
		cmdFetch(monthly, *stationsDB, os.Args[2:])

	case "normals":
		cmdFetch(normals, *stationsDB, os.Args[2:])

	case "interpolate":
		cmdInterpolate(*stationsDB, os.Args[2:])

	case "meta":
		cmdMeta(*stationsDB, os.Args[2:])

	case "nearby":
		cmdNearby(*stationsDB, os.Args[2:])

	case "inventory":
		cmdInventory(*stationsDB, os.Args[2:])

	case "stats":
		cmdStats(*stationsDB)

	case "verify":
		cmdVerify(*stationsDB)

	case "profile":
		cmdProfile(*stationsDB, os.Args[2:])

	case "register":
		cmdRegister()

	case "docs":
		cmdDocs()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func loadConfig(stationsDB string) *config.Config {
	cfg := config.Default()
	cfg.LoadEnv()
	if stationsDB != "" {
		cfg.StationsDBFile = stationsDB
	}
	return cfg
}

func printUsage() {
	fmt.Println(`Usage: meteo <command> [options]

Commands:
  version        Show version information
  init           Create the local cache directory and station catalog
  daily           Fetch daily observations
  hourly          Fetch hourly observations
  monthly         Fetch monthly aggregates
  normals         Fetch 30-year climate normals
  interpolate     Interpolate a time series to an arbitrary point
  meta            Show a station's catalog record
  nearby          Find stations near a point
  inventory       Show a station's per-parameter data availability
  stats           Show cache and catalog statistics
  verify          Verify cache integrity
  profile         CPU, memory, and performance profiling
  register        Open the Meteostat about page in a browser
  docs            Open the provider API documentation in a browser

Global Options:
  -stations-db string   Path to the station catalog sqlite file

Examples:
   # Initialize the local cache and catalog
   meteo init

   # Fetch 6 days of daily data for a German station
   meteo daily -station 10637 -start 2024-01-05 -end 2024-01-10

   # Fetch 3 hours of hourly data, localized to Europe/Berlin
   meteo hourly -station 10637 -start 2024-01-01T15:00 -end 2024-01-01T17:00 -tz Europe/Berlin

   # Interpolate to an arbitrary point using three nearby stations
   meteo interpolate -station 10637 -station 10635 -station 10532 -lat 50.3167 -lon 8.5 -has-elevation -elevation 320 -start 2024-01-10 -end 2024-01-11

   # Find the 5 nearest stations to a point
   meteo nearby -lat 50.3167 -lon 8.5 -limit 5`)
}
