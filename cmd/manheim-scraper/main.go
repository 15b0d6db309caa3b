package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/jsamit27/ava/internal"
)

func main() {
	outDir := flag.String("out", "manheim_auction", "directory for manheim_locations.csv, state_summary.csv and by_state_csv/")
	baseURL := flag.String("base-url", "", "override https://site.manheim.com")
	delay := flag.Duration("delay", 1500*time.Millisecond, "pause between page requests")
	flag.Parse()

	application, err := internal.NewScraperApp(internal.ScraperOptions{
		OutDir:  *outDir,
		BaseURL: *baseURL,
		Delay:   *delay,
	}, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to initialize scraper: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Scraper run failed: %v", err)
	}
}
