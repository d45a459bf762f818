package scrape

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scrape.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestDefaultConfig validates the stock endpoint set the zero-flag run uses.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Len(t, cfg.LegacyEndpoints, 2)
	assert.True(t, strings.HasSuffix(cfg.LegacyEndpoints[0], ".json"), "first legacy endpoint must be the JSON document")
	assert.True(t, strings.HasSuffix(cfg.LegacyEndpoints[1], ".js"), "second legacy endpoint must be the JavaScript document")

	assert.Equal(t, 2, strings.Count(cfg.CalculatorURL, "%s"), "calculator URL needs region and OS verbs")

	assert.Len(t, cfg.Regions, 18)
	assert.Equal(t, "us-east-1", cfg.Regions[0])
	assert.Contains(t, cfg.Regions, "cn-north-1")
	assert.Contains(t, cfg.Regions, "us-gov-west-1")

	require.Len(t, cfg.OSFamilies, 2)
	assert.Equal(t, OSFamily{OS: "linux", Family: "ec2_linux"}, cfg.OSFamilies[0])
	assert.Equal(t, OSFamily{OS: "windows-std", Family: "ec2_windows"}, cfg.OSFamilies[1])
}

// TestLoadConfig validates YAML overrides layered over the defaults.
func TestLoadConfig(t *testing.T) {
	t.Run("partial override keeps defaults", func(t *testing.T) {
		path := writeConfig(t, `
regions:
  - us-east-1
  - eu-west-1
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"us-east-1", "eu-west-1"}, cfg.Regions)
		assert.Equal(t, DefaultConfig().LegacyEndpoints, cfg.LegacyEndpoints, "unset fields keep their defaults")
		assert.Equal(t, DefaultConfig().CalculatorURL, cfg.CalculatorURL)
		assert.Equal(t, DefaultConfig().OSFamilies, cfg.OSFamilies)
	})

	t.Run("full override", func(t *testing.T) {
		path := writeConfig(t, `
legacy_endpoints:
  - https://pricing.internal/linux-od.json
calculator_url: https://pricing.internal/1.0/ec2/region/%s/ondemand/%s/index.json
regions:
  - us-east-1
operating_systems:
  - os: linux
    family: ec2_linux
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://pricing.internal/linux-od.json"}, cfg.LegacyEndpoints)
		assert.Equal(t, []string{"us-east-1"}, cfg.Regions)
		assert.Equal(t, []OSFamily{{OS: "linux", Family: "ec2_linux"}}, cfg.OSFamilies)
	})

	t.Run("calculator disabled", func(t *testing.T) {
		path := writeConfig(t, `
calculator_url: ""
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Empty(t, cfg.CalculatorURL)
		assert.NotEmpty(t, cfg.LegacyEndpoints)
	})

	t.Run("no regions", func(t *testing.T) {
		path := writeConfig(t, `
regions: []
`)
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no regions defined")
	})

	t.Run("no operating systems", func(t *testing.T) {
		path := writeConfig(t, `
operating_systems: []
`)
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no operating systems defined")
	})

	t.Run("incomplete operating system entry", func(t *testing.T) {
		path := writeConfig(t, `
operating_systems:
  - os: linux
`)
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "os and family")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "regions: [")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})
}
