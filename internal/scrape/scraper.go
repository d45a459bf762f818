package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rshade/ec2-pricing-scraper/internal/catalog"
)

// defaultRequestTimeout bounds each endpoint request when the caller does
// not supply its own HTTP client.
const defaultRequestTimeout = 2 * time.Minute

// Scraper fetches EC2 on-demand pricing from the public endpoints and
// normalizes it into per-product-family price tables keyed by instance type
// and region.
type Scraper struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// New returns a Scraper that talks through the given HTTP client. A nil
// client gets a private one with the default request timeout.
func New(cfg Config, client *http.Client, logger zerolog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Scraper{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// Scrape runs the full fetch in the order the catalog update relies on:
// legacy endpoints first, then the calculator API per operating system and
// region. Legacy prices win; calculator prices only fill cells the legacy
// documents left empty. Every instance type observed anywhere gets a row in
// every family table, even if no region priced it.
//
// A failing legacy endpoint aborts the run. A calculator endpoint answering
// with a non-200 status only skips that (region, operating system) pair;
// regions appear and disappear from the calculator API all the time.
func (s *Scraper) Scrape(ctx context.Context) (map[string]catalog.PriceTable, error) {
	result := make(map[string]catalog.PriceTable, len(s.cfg.OSFamilies)+1)
	for _, f := range s.cfg.OSFamilies {
		result[f.Family] = catalog.PriceTable{}
	}
	if _, ok := result[legacyFamily]; !ok && len(s.cfg.LegacyEndpoints) > 0 {
		result[legacyFamily] = catalog.PriceTable{}
	}

	for _, endpoint := range s.cfg.LegacyEndpoints {
		if err := s.scrapeLegacy(ctx, endpoint, result[legacyFamily]); err != nil {
			return nil, err
		}
	}

	if s.cfg.CalculatorURL == "" {
		return result, nil
	}

	quotes, instances, err := s.scrapeCalculator(ctx)
	if err != nil {
		return nil, err
	}

	for _, f := range s.cfg.OSFamilies {
		table := result[f.Family]
		for instance := range instances {
			row, ok := table[instance]
			if !ok {
				row = catalog.RegionPriceMap{}
				table[instance] = row
			}
			for _, region := range s.cfg.Regions {
				if _, exists := row[region]; exists {
					// Legacy data wins; the calculator only fills gaps.
					continue
				}
				raw, ok := quotes[f.Family][region][instance]
				if !ok || !usable(raw) {
					continue
				}
				price, err := toFloat(raw)
				if err != nil {
					return nil, fmt.Errorf("calculator price for %s in %s: %w", instance, region, err)
				}
				row[region] = price
			}
		}
	}

	for family, table := range result {
		s.logger.Debug().Str("family", family).Int("instance_types", len(table)).Msg("Scraped product family")
	}
	return result, nil
}

// get performs one blocking GET against url and hands back the body and the
// HTTP status code. A transport failure is an error; what a non-200 status
// means is up to the caller.
func (s *Scraper) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request for %s: %w", url, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn().Err(closeErr).Str("url", url).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	return body, resp.StatusCode, nil
}

// usable reports whether a raw calculator quote denotes an actual price.
// Non-empty strings and non-zero numbers count; the zero default that stands
// in for a missing USD column does not.
func usable(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	}
	return false
}

// toFloat coerces a raw JSON price value to a float64. The endpoints mix
// string and number representations freely.
func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid price %q: %w", t, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("invalid price type %T", v)
	}
}
