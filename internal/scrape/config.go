package scrape

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// legacyFamily is the product family legacy endpoint prices belong to. Both
// legacy endpoints serve Linux on-demand pricing.
const legacyFamily = "ec2_linux"

// OSFamily pairs a calculator API operating system identifier with the
// catalog product family its prices land in.
type OSFamily struct {
	OS     string `yaml:"os"`
	Family string `yaml:"family"`
}

// Config enumerates what a scrape run fetches. The zero value is unusable;
// start from DefaultConfig or LoadConfig.
type Config struct {
	// LegacyEndpoints are fetched first, in order. A .json suffix means the
	// body is plain JSON, a .js suffix means a callback-wrapped JavaScript
	// object literal. All legacy prices land in the ec2_linux family.
	LegacyEndpoints []string `yaml:"legacy_endpoints"`

	// CalculatorURL is the per-region pricing endpoint. It carries two %s
	// verbs, filled with the region and the operating system.
	CalculatorURL string `yaml:"calculator_url"`

	// Regions to request from the calculator endpoint, in order.
	Regions []string `yaml:"regions"`

	// OSFamilies maps calculator operating systems to product families, in
	// fetch order.
	OSFamilies []OSFamily `yaml:"operating_systems"`
}

// DefaultConfig returns the stock endpoint set: the deprecated-instance JSON
// document, the previous-generation JavaScript document, and the calculator
// API across every region the catalog tracks.
func DefaultConfig() Config {
	return Config{
		LegacyEndpoints: []string{
			// Deprecated instances (JSON format)
			"https://aws.amazon.com/ec2/pricing/json/linux-od.json",
			// Previous generation instances (JavaScript file)
			"https://a0.awsstatic.com/pricing/1/ec2/previous-generation/linux-od.min.js",
		},
		CalculatorURL: "https://calculator.aws/pricing/1.0/ec2/region/%s/ondemand/%s/index.json",
		Regions: []string{
			"us-east-1",
			"us-east-2",
			"us-west-1",
			"us-west-2",
			"us-gov-west-1",
			"eu-west-1",
			"eu-west-2",
			"eu-west-3",
			"eu-north-1",
			"eu-central-1",
			"ca-central-1",
			"ap-southeast-1",
			"ap-southeast-2",
			"ap-northeast-1",
			"ap-northeast-2",
			"ap-south-1",
			"sa-east-1",
			"cn-north-1",
		},
		OSFamilies: []OSFamily{
			{OS: "linux", Family: "ec2_linux"},
			{OS: "windows-std", Family: "ec2_windows"},
		},
	}
}

// LoadConfig reads a YAML scrape configuration from path. Absent fields keep
// their defaults, so a file may override just the region list.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if len(cfg.LegacyEndpoints) == 0 && cfg.CalculatorURL == "" {
		return Config{}, fmt.Errorf("no endpoints defined in config file %s", path)
	}
	if cfg.CalculatorURL != "" {
		if len(cfg.Regions) == 0 {
			return Config{}, fmt.Errorf("no regions defined in config file %s", path)
		}
		if len(cfg.OSFamilies) == 0 {
			return Config{}, fmt.Errorf("no operating systems defined in config file %s", path)
		}
		for _, f := range cfg.OSFamilies {
			if f.OS == "" || f.Family == "" {
				return Config{}, fmt.Errorf("operating system entries need both os and family in config file %s", path)
			}
		}
	}
	return cfg, nil
}
