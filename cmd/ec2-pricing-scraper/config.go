package main

import (
	"flag"
	"time"
)

// Config holds settings for one scrape run.
// CatalogPath names the pricing catalog to update, ScrapeConfig optionally
// points at a YAML file overriding the stock endpoints, Timeout bounds each
// endpoint request, and LogLevel sets the zerolog level.
type Config struct {
	CatalogPath  string
	ScrapeConfig string
	Timeout      time.Duration
	LogLevel     string
}

func parseConfig() *Config {
	config := &Config{}

	flag.StringVar(&config.CatalogPath, "catalog", "data/pricing.json", "Path to the pricing catalog file to update")
	flag.StringVar(&config.ScrapeConfig, "config", "", "Optional YAML file overriding regions, operating systems or endpoints")
	flag.DurationVar(&config.Timeout, "timeout", 2*time.Minute, "Timeout for each pricing endpoint request")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	flag.Parse()

	return config
}
