package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rshade/ec2-pricing-scraper/internal/catalog"
	"github.com/rshade/ec2-pricing-scraper/internal/relaxedjson"
)

// legacyDocument is the shape both legacy pricing documents share, whether
// they arrive as plain JSON or as a callback-wrapped JavaScript literal.
// Only the columns the catalog needs are mapped; the documents carry plenty
// more.
type legacyDocument struct {
	Config struct {
		Regions []struct {
			Region        string `json:"region"`
			InstanceTypes []struct {
				Sizes []struct {
					Size         string `json:"size"`
					ValueColumns []struct {
						Prices map[string]interface{} `json:"prices"`
					} `json:"valueColumns"`
				} `json:"sizes"`
			} `json:"instanceTypes"`
		} `json:"regions"`
	} `json:"config"`
}

// scrapeLegacy fetches one legacy endpoint and folds its per-size USD prices
// into table. The URL suffix picks the parse strategy: .json bodies decode
// directly, .js bodies decode through the callback wrapper. Cells overwrite
// whatever an earlier endpoint put there. A price of "N/A" leaves the cell
// absent but still creates the instance type's row.
func (s *Scraper) scrapeLegacy(ctx context.Context, endpoint string, table catalog.PriceTable) error {
	body, status, err := s.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: bad status: %d", endpoint, status)
	}

	var doc legacyDocument
	switch {
	case strings.HasSuffix(endpoint, ".json"):
		if err := json.Unmarshal(body, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", endpoint, err)
		}
	case strings.HasSuffix(endpoint, ".js"):
		payload, err := relaxedjson.CallbackPayload(body)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", endpoint, err)
		}
		if err := relaxedjson.Decode(payload, &doc); err != nil {
			return fmt.Errorf("failed to parse %s: %w", endpoint, err)
		}
	default:
		return fmt.Errorf("legacy endpoint %s has no recognized suffix", endpoint)
	}

	if doc.Config.Regions == nil {
		return fmt.Errorf("document at %s has no config.regions", endpoint)
	}

	sizes := 0
	for _, region := range doc.Config.Regions {
		for _, instanceType := range region.InstanceTypes {
			for _, size := range instanceType.Sizes {
				if _, ok := table[size.Size]; !ok {
					table[size.Size] = catalog.RegionPriceMap{}
				}
				sizes++

				if len(size.ValueColumns) == 0 {
					return fmt.Errorf("size %s in %s has no price columns", size.Size, region.Region)
				}
				price, available, err := usdPrice(size.ValueColumns[0].Prices)
				if err != nil {
					return fmt.Errorf("size %s in %s: %w", size.Size, region.Region, err)
				}
				if !available {
					// Price not available
					continue
				}
				table[size.Size][region.Region] = price
			}
		}
	}

	s.logger.Debug().Str("url", endpoint).Int("sizes", sizes).Msg("Scraped legacy endpoint")
	return nil
}

// usdPrice reads the USD column of a legacy price cell. The sentinel "n/a"
// in any letter case means the price is unavailable; everything else must
// coerce to a float.
func usdPrice(prices map[string]interface{}) (float64, bool, error) {
	raw, ok := prices["USD"]
	if !ok {
		return 0, false, fmt.Errorf("no USD price")
	}
	switch p := raw.(type) {
	case string:
		if strings.EqualFold(p, "n/a") {
			return 0, false, nil
		}
		f, err := toFloat(p)
		if err != nil {
			return 0, false, err
		}
		return f, true, nil
	case float64:
		return p, true, nil
	default:
		return 0, false, fmt.Errorf("invalid USD price type %T", raw)
	}
}
