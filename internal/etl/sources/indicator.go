package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"marketetl/internal/config"
	"marketetl/internal/etl"
)

// ── Indicator Source ────────────────────────────────────────
// Reads one economic indicator entry from the World Bank REST API.
//
// Response shape:
//
//	[ {page metadata}, [ {"country": {"value": ...}, "value": n|null, "date": "..."}, ... ] ]

// Indicator table columns.
const (
	ColumnCountry = "Country"
	ColumnGDP     = "GDP ($)"
	ColumnYear    = "Year"
)

// Indicator fetches the first entry of an indicator series for a country.
type Indicator struct {
	cfg    config.Indicator
	client *resty.Client
	logger *log.Logger
}

// NewIndicator builds an indicator source. timeout 0 means none.
func NewIndicator(cfg config.Indicator, timeout time.Duration) *Indicator {
	return &Indicator{cfg: cfg, client: newClient(timeout)}
}

// SetLogger sends request-level log lines to l. nil turns them off.
func (s *Indicator) SetLogger(l *log.Logger) { s.logger = l }

func (s *Indicator) Name() string { return "indicator" }

func (s *Indicator) Columns() []string { return []string{ColumnCountry, ColumnGDP, ColumnYear} }

// URL returns the API URL. The year is only part of it when FilterByYear is set.
func (s *Indicator) URL() string {
	q := url.Values{}
	q.Set("format", "json")
	if s.cfg.FilterByYear && s.cfg.Year != "" {
		q.Set("date", s.cfg.Year)
	}
	path := fmt.Sprintf("/v2/country/%s/indicator/%s",
		url.PathEscape(s.cfg.Country), url.PathEscape(s.cfg.Code))
	return joinURL(s.cfg.BaseURL, path, q)
}

func (s *Indicator) Fetch(ctx context.Context) (*etl.FetchResult, error) {
	link := s.URL()
	res, err := get(ctx, s.client, link, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Printf("etl: GET %s -> %d", link, res.StatusCode())
	}

	if res.StatusCode() != http.StatusOK {
		return etl.SoftFailure(s.Columns(), fmt.Sprintf("Failed to retrieve World Bank data (HTTP %d)", res.StatusCode()))
	}

	entry, err := firstEntry(res.Body())
	if err != nil {
		return nil, err
	}

	t, err := etl.NewTable(s.Columns(), etl.Row{entry.country, entry.value, entry.date})
	if err != nil {
		return nil, err
	}
	return etl.Fetched(t), nil
}

type indicatorEntry struct {
	country etl.Value
	value   etl.Value
	date    etl.Value
}

// firstEntry decodes the response envelope and returns its first data entry.
// Any deviation from the expected layout is reported as etl.ErrUnexpectedShape.
func firstEntry(body []byte) (*indicatorEntry, error) {
	shapeErr := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", etl.ErrUnexpectedShape, fmt.Sprintf(format, args...))
	}

	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, shapeErr("top level is not an array: %v", err)
	}
	if len(envelope) < 2 {
		return nil, shapeErr("top-level array has %d element(s), want 2", len(envelope))
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(envelope[1], &entries); err != nil {
		return nil, shapeErr("data element is not an array of objects: %v", err)
	}
	if len(entries) == 0 {
		return nil, shapeErr("data array is empty")
	}
	raw := entries[0]

	for _, key := range []string{"country", "value", "date"} {
		if _, ok := raw[key]; !ok {
			return nil, shapeErr("entry has no %q field", key)
		}
	}

	var country struct {
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(raw["country"], &country); err != nil {
		return nil, shapeErr("country: %v", err)
	}
	var value *float64
	if err := json.Unmarshal(raw["value"], &value); err != nil {
		return nil, shapeErr("value: %v", err)
	}
	var date *string
	if err := json.Unmarshal(raw["date"], &date); err != nil {
		return nil, shapeErr("date: %v", err)
	}

	e := &indicatorEntry{country: etl.Null(), value: etl.Null(), date: etl.Null()}
	if country.Value != nil {
		e.country = etl.Text(*country.Value)
	}
	if value != nil {
		e.value = etl.Number(*value)
	}
	if date != nil {
		e.date = etl.Text(*date)
	}
	return e, nil
}
