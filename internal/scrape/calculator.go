package scrape

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// instanceTypeAttr is the calculator API attribute carrying the instance
// type identifier.
const instanceTypeAttr = "aws:ec2:instanceType"

// calculatorDocument is the shape of one calculator API regional pricing
// response. Price values stay loosely typed; the endpoint serves strings and
// numbers interchangeably.
type calculatorDocument struct {
	Prices []struct {
		Attributes map[string]string      `json:"attributes"`
		Price      map[string]interface{} `json:"price"`
	} `json:"prices"`
}

// quoteIndex holds raw USD quotes keyed by product family, region and
// instance type, exactly as the calculator API reported them.
type quoteIndex map[string]map[string]map[string]interface{}

// scrapeCalculator fetches every (operating system, region) pricing document
// and indexes the raw USD quotes. It also collects the union of instance
// types observed anywhere, so the final tables can carry a row for every
// instance type even in regions that never priced it.
func (s *Scraper) scrapeCalculator(ctx context.Context) (quoteIndex, map[string]struct{}, error) {
	quotes := make(quoteIndex, len(s.cfg.OSFamilies))
	instances := make(map[string]struct{})

	for _, f := range s.cfg.OSFamilies {
		if _, ok := quotes[f.Family]; !ok {
			quotes[f.Family] = make(map[string]map[string]interface{}, len(s.cfg.Regions))
		}
		for _, region := range s.cfg.Regions {
			url := fmt.Sprintf(s.cfg.CalculatorURL, region, f.OS)

			body, status, err := s.get(ctx, url)
			if err != nil {
				return nil, nil, err
			}
			if status != http.StatusOK {
				s.logger.Debug().
					Str("region", region).
					Str("os", f.OS).
					Int("status", status).
					Msg("No calculator pricing for region, skipping")
				continue
			}

			var doc calculatorDocument
			if err := json.Unmarshal(body, &doc); err != nil {
				return nil, nil, fmt.Errorf("failed to parse %s: %w", url, err)
			}
			if doc.Prices == nil {
				return nil, nil, fmt.Errorf("document at %s has no prices", url)
			}

			regionQuotes := make(map[string]interface{}, len(doc.Prices))
			for _, entry := range doc.Prices {
				// An entry without the attribute indexes under "".
				instance := entry.Attributes[instanceTypeAttr]
				instances[instance] = struct{}{}

				// A missing USD column indexes as zero, which the fill
				// pass treats as unavailable.
				var raw interface{} = float64(0)
				if v, ok := entry.Price["USD"]; ok {
					raw = v
				}
				regionQuotes[instance] = raw
			}
			quotes[f.Family][region] = regionQuotes

			s.logger.Debug().
				Str("region", region).
				Str("os", f.OS).
				Int("quotes", len(regionQuotes)).
				Msg("Scraped calculator region")
		}
	}
	return quotes, instances, nil
}
