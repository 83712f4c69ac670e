package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	meteo "github.com/dl-alexandre/meteo"
)

func cmdVerify(stationsDB string) {
	cl, err := meteo.Open(loadConfig(stationsDB))
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening client: %v\n", err)
		os.Exit(1)
	}
	defer cl.Close()

	var verified, failed int
	var verifiedBytes int64
	filepath.Walk(cl.Config.CacheDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			fmt.Printf("FAIL: %s - read error: %v\n", path, readErr)
			failed++
			return nil
		}
		if _, decErr := cl.Cache.DecodeBinary(raw); decErr != nil {
			fmt.Printf("FAIL: %s - decompress error: %v\n", path, decErr)
			failed++
			return nil
		}
		fmt.Printf("OK: %s (%s)\n", path, humanize.Bytes(uint64(len(raw))))
		verified++
		verifiedBytes += int64(len(raw))
		return nil
	})

	fmt.Printf("\nVerification complete: %d OK (%s), %d failed\n", verified, humanize.Bytes(uint64(verifiedBytes)), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
