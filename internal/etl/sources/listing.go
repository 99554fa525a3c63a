package sources

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"marketetl/internal/config"
	"marketetl/internal/etl"
)

// ── Listing Source ──────────────────────────────────────────
// Scrapes business names off a listing-search results page.

// ColumnBusinessName is the single column of the listing table.
const ColumnBusinessName = "Business Name"

// Listing fetches one search-results page and extracts business names.
type Listing struct {
	cfg    config.Listing
	client *resty.Client
	logger *log.Logger
}

// NewListing builds a listing source. timeout 0 means none.
func NewListing(cfg config.Listing, timeout time.Duration) *Listing {
	return &Listing{cfg: cfg, client: newClient(timeout)}
}

// SetLogger sends request-level log lines to l. nil turns them off.
func (s *Listing) SetLogger(l *log.Logger) { s.logger = l }

func (s *Listing) Name() string { return "listing" }

func (s *Listing) Columns() []string { return []string{ColumnBusinessName} }

// URL returns the search URL for the configured location and category.
func (s *Listing) URL() string {
	q := url.Values{}
	q.Set("find_desc", s.cfg.Category)
	q.Set("find_loc", s.cfg.Location)
	return joinURL(s.cfg.BaseURL, "/search", q)
}

func (s *Listing) Fetch(ctx context.Context) (*etl.FetchResult, error) {
	link := s.URL()
	res, err := get(ctx, s.client, link, map[string]string{"User-Agent": s.cfg.UserAgent})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Printf("etl: GET %s -> %d", link, res.StatusCode())
	}

	if res.StatusCode() != http.StatusOK {
		return etl.SoftFailure(s.Columns(), fmt.Sprintf("Failed to retrieve data from Yelp (HTTP %d)", res.StatusCode()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var rows []etl.Row
	doc.Find(s.cfg.Selector).Each(func(_ int, sel *goquery.Selection) {
		rows = append(rows, etl.Row{etl.Text(sel.Text())})
	})

	t, err := etl.NewTable(s.Columns(), rows...)
	if err != nil {
		return nil, err
	}
	return etl.Fetched(t), nil
}
