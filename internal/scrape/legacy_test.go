package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUSDPrice validates the legacy price cell reader: the case-insensitive
// "n/a" sentinel, string and numeric representations, and the error cases.
func TestUSDPrice(t *testing.T) {
	tests := []struct {
		name          string
		prices        map[string]interface{}
		want          float64
		wantAvailable bool
		wantErr       bool
	}{
		{
			name:          "numeric string",
			prices:        map[string]interface{}{"USD": "0.044"},
			want:          0.044,
			wantAvailable: true,
		},
		{
			name:          "plain number",
			prices:        map[string]interface{}{"USD": 0.175},
			want:          0.175,
			wantAvailable: true,
		},
		{
			name:   "uppercase sentinel",
			prices: map[string]interface{}{"USD": "N/A"},
		},
		{
			name:   "lowercase sentinel",
			prices: map[string]interface{}{"USD": "n/a"},
		},
		{
			name:   "mixed case sentinel",
			prices: map[string]interface{}{"USD": "N/a"},
		},
		{
			name:    "missing USD column",
			prices:  map[string]interface{}{"EUR": "0.040"},
			wantErr: true,
		},
		{
			name:    "unparsable string",
			prices:  map[string]interface{}{"USD": "soon"},
			wantErr: true,
		},
		{
			name:    "unexpected type",
			prices:  map[string]interface{}{"USD": true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, available, err := usdPrice(tt.prices)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, available)
			if tt.wantAvailable {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// TestScrapeLegacy_LaterEndpointWins validates that within the legacy pass,
// a later endpoint overwrites cells an earlier one populated.
func TestScrapeLegacy_LaterEndpointWins(t *testing.T) {
	first := `{"config": {"regions": [{"region": "us-east-1", "instanceTypes": [{"sizes": [
		{"size": "m1.small", "valueColumns": [{"prices": {"USD": "0.040"}}]}
	]}]}]}}`
	second := `callback({config:{regions:[{region:"us-east-1",instanceTypes:[{sizes:[
		{size:"m1.small",valueColumns:[{prices:{USD:"0.044"}}]}
	]}]}]}});`

	mux := http.NewServeMux()
	mux.HandleFunc("/first/linux-od.json", serveString(first))
	mux.HandleFunc("/second/linux-od.min.js", serveString(second))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	cfg := Config{
		LegacyEndpoints: []string{
			server.URL + "/first/linux-od.json",
			server.URL + "/second/linux-od.min.js",
		},
		OSFamilies: []OSFamily{{OS: "linux", Family: "ec2_linux"}},
	}
	scraper := New(cfg, server.Client(), zerolog.Nop())

	tables, err := scraper.Scrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.044, tables["ec2_linux"]["m1.small"]["us-east-1"])
}

// TestScrapeLegacy_MissingRegions validates that a syntactically valid
// document without the config.regions section kills the run instead of
// silently contributing nothing.
func TestScrapeLegacy_MissingRegions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pricing/linux-od.json", serveString(`{"vers": 0.01}`))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	cfg := Config{
		LegacyEndpoints: []string{server.URL + "/pricing/linux-od.json"},
		OSFamilies:      []OSFamily{{OS: "linux", Family: "ec2_linux"}},
	}
	scraper := New(cfg, server.Client(), zerolog.Nop())

	_, err := scraper.Scrape(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.regions")
}

// TestScrapeLegacy_UnrecognizedSuffix validates that an endpoint whose URL
// names neither format is rejected.
func TestScrapeLegacy_UnrecognizedSuffix(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pricing/linux-od.xml", serveString("<pricing/>"))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	cfg := Config{
		LegacyEndpoints: []string{server.URL + "/pricing/linux-od.xml"},
		OSFamilies:      []OSFamily{{OS: "linux", Family: "ec2_linux"}},
	}
	scraper := New(cfg, server.Client(), zerolog.Nop())

	_, err := scraper.Scrape(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recognized suffix")
}
