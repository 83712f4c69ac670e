package main

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
)

type BrowserOpener interface {
	Open(url string) error
}

type systemBrowserOpener struct{}

func (s *systemBrowserOpener) Open(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	if _, err := exec.LookPath(cmd); err != nil {
		return fmt.Errorf("no browser command found: %s not found. Please install a browser or manually visit: %s", cmd, url)
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

var browserOpener BrowserOpener = &systemBrowserOpener{}

func openBrowser(url string) error {
	return browserOpener.Open(url)
}

func cmdRegister() {
	const registerURL = "https://meteostat.net/en/about"

	fmt.Println("Opening the Meteostat project page in your browser...")
	fmt.Printf("URL: %s\n", registerURL)

	if err := openBrowser(registerURL); err != nil {
		log.Fatalf("Failed to open browser: %v\nPlease manually visit: %s\n", err, registerURL)
	}

	fmt.Println("Browser opened successfully!")
	fmt.Println("\nMeteostat's bulk archive and DWD/NOAA/ECCC feeds are public and require no registration.")
	fmt.Println("A MET Norway Locationforecast request does require a descriptive User-Agent — set MS_METNO_UA.")
}

func cmdDocs() {
	const docsURL = "https://dev.meteostat.net/bulk/"

	fmt.Println("Opening the provider bulk-data documentation in your browser...")
	fmt.Printf("URL: %s\n", docsURL)

	if err := openBrowser(docsURL); err != nil {
		log.Fatalf("Failed to open browser: %v\nPlease manually visit: %s\n", err, docsURL)
	}

	fmt.Println("Browser opened successfully!")
}
