package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketetl/internal/storage"
)

func upstream(t *testing.T, listingStatus int, indicatorBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(listingStatus)
		fmt.Fprint(w, `<h3 class="css-1egxyvc">Joe's Diner</h3><h3 class="css-1egxyvc">Taco Palace</h3>`)
	})
	mux.HandleFunc("/v2/country/US/indicator/NY.GDP.MKTP.CD", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, indicatorBody)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, baseURL string, extra ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "etl.yaml")
	dbPath := filepath.Join(dir, "market_expansion.db")
	cfg := fmt.Sprintf("listing:\n  base_url: %s\nindicator:\n  base_url: %s\nstore: %s\n", baseURL, baseURL, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0600))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, extra...))
	err := cmd.Execute()
	return out.String(), dbPath, err
}

func readTable(t *testing.T, dbPath, name string) [][]any {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()
	_, rows, err := db.ReadTable(ctx, name)
	require.NoError(t, err)
	return rows
}

const gdp = `[{"page":1},[{"country":{"value":"United States"},"value":25000000000000,"date":"2022"}]]`

func TestRootCmd_FullPipeline(t *testing.T) {
	srv := upstream(t, http.StatusOK, gdp)

	out, dbPath, err := runCLI(t, srv.URL, "--summary")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "ETL Pipeline Completed Successfully!"))
	assert.Contains(t, out, "yelp_businesses")
	assert.Regexp(t, `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`, out, "summary shows the run id")

	assert.Equal(t, [][]any{{"Joe's Diner"}, {"Taco Palace"}}, readTable(t, dbPath, "yelp_businesses"))
	assert.Equal(t, [][]any{{"United States", int64(25000000000000), "2022"}}, readTable(t, dbPath, "world_bank_gdp"))
}

func TestRootCmd_ListingSoftFailureContinues(t *testing.T) {
	srv := upstream(t, http.StatusForbidden, gdp)

	out, dbPath, err := runCLI(t, srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "ETL Pipeline Completed Successfully!")

	assert.Empty(t, readTable(t, dbPath, "yelp_businesses"))
	assert.Len(t, readTable(t, dbPath, "world_bank_gdp"), 1)
}

func TestRootCmd_ShapeErrorAborts(t *testing.T) {
	srv := upstream(t, http.StatusOK, `[{"page":0,"total":0},null]`)

	out, _, err := runCLI(t, srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response shape")
	assert.NotContains(t, out, "Completed Successfully")
}

func TestRootCmd_VerboseLogsToCommandOutput(t *testing.T) {
	srv := upstream(t, http.StatusOK, gdp)

	out, _, err := runCLI(t, srv.URL, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "etl: GET "+srv.URL+"/search?")
	assert.Contains(t, out, "/v2/country/US/indicator/NY.GDP.MKTP.CD?format=json -> 200")
	assert.Contains(t, out, "Data successfully loaded into world_bank_gdp table.")
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"Houston"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
