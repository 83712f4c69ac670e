package main

import (
	"flag"
	"fmt"
	"log"

	meteo "github.com/dl-alexandre/meteo"
)

func cmdInit(stationsDB string, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	cfg := loadConfig(stationsDB)
	cl, err := meteo.Open(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer cl.Close()

	fmt.Println("Cache and station catalog initialized successfully")
	fmt.Printf("Cache directory: %s\n", cfg.CacheDirectory)
	fmt.Printf("Station catalog: %s\n", cfg.StationsDBFile)
}
