package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	meteo "github.com/dl-alexandre/meteo"
)

func cmdStats(stationsDB string) {
	cl, err := meteo.Open(loadConfig(stationsDB))
	if err != nil {
		log.Fatalf("opening client: %v", err)
	}
	defer cl.Close()

	fmt.Println("Cache & Catalog Statistics")
	fmt.Println("==========================")
	fmt.Printf("Cache directory: %s\n", cl.Config.CacheDirectory)

	var files, bytes int64
	filepath.Walk(cl.Config.CacheDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		files++
		bytes += info.Size()
		return nil
	})
	fmt.Printf("Cached entries:  %d\n", files)
	fmt.Printf("Cache size:      %s\n", humanize.Bytes(uint64(bytes)))
	fmt.Printf("Station catalog: %s\n", cl.Config.StationsDBFile)

	rows, err := cl.StationsQuery(`SELECT count(*) AS n FROM stations`)
	if err != nil {
		fmt.Printf("Stations:        unavailable (%v)\n", err)
		return
	}
	if len(rows) == 1 {
		fmt.Printf("Stations:        %v\n", rows[0]["n"])
	}
}
