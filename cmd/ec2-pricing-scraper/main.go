// Command ec2-pricing-scraper refreshes the bundled EC2 on-demand pricing
// catalog. It scrapes the legacy pricing endpoints and the calculator API,
// merges the result into the catalog file and rewrites it only when
// something actually changed.
//
// The run is a single pass: fetch, merge, write, exit. Any failure on an
// endpoint the catalog depends on exits non-zero and leaves the file alone.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rshade/ec2-pricing-scraper/internal/catalog"
	"github.com/rshade/ec2-pricing-scraper/internal/natsort"
	"github.com/rshade/ec2-pricing-scraper/internal/scrape"
)

func main() {
	config := parseConfig()

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q: %v\n", config.LogLevel, err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(level).With().
		Timestamp().
		Str("run_id", uuid.New().String()).
		Logger()

	// Inject logger into natsort for key ordering diagnostics
	natsort.SetLogger(logger)

	// Stock endpoints unless a YAML override is given
	scrapeConfig := scrape.DefaultConfig()
	if config.ScrapeConfig != "" {
		scrapeConfig, err = scrape.LoadConfig(config.ScrapeConfig)
		if err != nil {
			logger.Fatal().Err(err).Str("path", config.ScrapeConfig).Msg("Failed to load scrape config")
		}
	}

	// Wire the pipeline
	httpClient := &http.Client{Timeout: config.Timeout}
	scraper := scrape.New(scrapeConfig, httpClient, logger)
	store := catalog.NewStore(config.CatalogPath, logger)

	fmt.Println("Scraping EC2 pricing data (this may take up to 2 minutes)....")

	tables, err := scraper.Scrape(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("Scrape failed")
	}

	if _, err := store.Update(tables); err != nil {
		logger.Fatal().Err(err).Msg("Catalog update failed")
	}

	fmt.Println("Pricing data updated")
}
