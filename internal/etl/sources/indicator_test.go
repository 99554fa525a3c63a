package sources_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketetl/internal/config"
	"marketetl/internal/etl"
	"marketetl/internal/etl/sources"
)

const gdpResponse = `[
  {"page":1,"pages":1,"per_page":50,"total":1},
  [
    {"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP (current US$)"},
     "country":{"id":"US","value":"United States"},
     "countryiso3code":"USA","date":"2022","value":25000000000000,
     "unit":"","obs_status":"","decimal":0},
    {"country":{"id":"US","value":"United States"},"date":"2021","value":23000000000000}
  ]
]`

func indicatorServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &gotURL
}

func indicatorConfig(baseURL string) config.Indicator {
	cfg := config.Default().Indicator
	cfg.BaseURL = baseURL
	return cfg
}

func TestIndicator_FirstEntry(t *testing.T) {
	srv, gotURL := indicatorServer(t, http.StatusOK, gdpResponse)

	res, err := sources.NewIndicator(indicatorConfig(srv.URL), 0).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/v2/country/US/indicator/NY.GDP.MKTP.CD?format=json", *gotURL)
	assert.Equal(t, etl.FetchOK, res.Status)
	assert.Equal(t, []string{"Country", "GDP ($)", "Year"}, res.Table.Columns())
	require.Equal(t, 1, res.Table.Len())
	assert.Equal(t, etl.Text("United States"), res.Table.Get(0, sources.ColumnCountry))
	assert.Equal(t, etl.Number(25000000000000), res.Table.Get(0, sources.ColumnGDP))
	assert.Equal(t, etl.Text("2022"), res.Table.Get(0, sources.ColumnYear))
}

func TestIndicator_YearOnlySentWhenFiltering(t *testing.T) {
	cfg := indicatorConfig("https://api.example.test")
	cfg.Year = "2019"
	assert.NotContains(t, sources.NewIndicator(cfg, 0).URL(), "date=")

	cfg.FilterByYear = true
	assert.Equal(t,
		"https://api.example.test/v2/country/US/indicator/NY.GDP.MKTP.CD?date=2019&format=json",
		sources.NewIndicator(cfg, 0).URL())
}

func TestIndicator_YearReflectsResponse(t *testing.T) {
	srv, _ := indicatorServer(t, http.StatusOK,
		`[{}, [{"country":{"value":"United States"},"value":1.5,"date":"2023"}]]`)

	cfg := indicatorConfig(srv.URL)
	cfg.Year = "2022"
	res, err := sources.NewIndicator(cfg, 0).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2023", res.Table.Get(0, sources.ColumnYear).String())
}

func TestIndicator_NullValue(t *testing.T) {
	srv, _ := indicatorServer(t, http.StatusOK,
		`[{}, [{"country":{"value":"United States"},"value":null,"date":"2024"}]]`)

	res, err := sources.NewIndicator(indicatorConfig(srv.URL), 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	assert.True(t, res.Table.Get(0, sources.ColumnGDP).IsNull())
	assert.Equal(t, 0, etl.Clean(res.Table).Len(), "a null value is dropped by cleaning")
}

func TestIndicator_NonOKIsSoftFailure(t *testing.T) {
	srv, _ := indicatorServer(t, http.StatusBadGateway, "upstream down")

	res, err := sources.NewIndicator(indicatorConfig(srv.URL), 0).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, etl.FetchEmpty, res.Status)
	assert.Equal(t, "Failed to retrieve World Bank data (HTTP 502)", res.Reason)
	assert.Equal(t, 0, res.Table.Len())
	assert.Equal(t, []string{"Country", "GDP ($)", "Year"}, res.Table.Columns())
}

func TestIndicator_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>error</html>`},
		{"object", `{"message":"nope"}`},
		{"error envelope", `[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`},
		{"null data", `[{"page":0,"total":0}, null]`},
		{"empty data", `[{"page":1}, []]`},
		{"data not array", `[{}, {"country":{}}]`},
		{"missing date", `[{}, [{"country":{"value":"US"},"value":1}]]`},
		{"value is text", `[{}, [{"country":{"value":"US"},"value":"big","date":"2022"}]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := indicatorServer(t, http.StatusOK, tt.body)

			res, err := sources.NewIndicator(indicatorConfig(srv.URL), 0).Fetch(context.Background())
			require.ErrorIs(t, err, etl.ErrUnexpectedShape)
			assert.Nil(t, res)
		})
	}
}
