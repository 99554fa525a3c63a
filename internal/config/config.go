package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/andybalholm/cascadia"
)

// AppName is used for the config file name and XDG directory.
const AppName = "marketetl"

// Defaults for a run with no configuration.
const (
	DefaultLocation   = "Houston"
	DefaultCategory   = "restaurants"
	DefaultListingURL = "https://www.yelp.com"
	DefaultUserAgent  = "Mozilla/5.0"
	// DefaultSelector matches business-name headings on the listing page.
	// The class is generated upstream; when it changes the fetch quietly
	// yields zero rows.
	DefaultSelector = "h3.css-1egxyvc"

	DefaultIndicatorCode = "NY.GDP.MKTP.CD"
	DefaultCountry       = "US"
	DefaultYear          = "2022"
	DefaultIndicatorURL  = "https://api.worldbank.org"

	DefaultStore          = "market_expansion.db"
	DefaultListingTable   = "yelp_businesses"
	DefaultIndicatorTable = "world_bank_gdp"
)

var (
	ErrNoLocation      = errors.New("listing location is required")
	ErrNoCategory      = errors.New("listing category is required")
	ErrNoSelector      = errors.New("listing selector is required")
	ErrBadSelector     = errors.New("listing selector is not valid CSS")
	ErrNoUserAgent     = errors.New("listing user agent is required")
	ErrNoBaseURL       = errors.New("base urls are required")
	ErrNoIndicatorCode = errors.New("indicator code is required")
	ErrNoCountry       = errors.New("indicator country is required")
	ErrNoStore         = errors.New("store identifier is required")
	ErrNoTable         = errors.New("table names are required")
	ErrSameTable       = errors.New("listing and indicator tables must differ")
	ErrInvalidTimeout  = errors.New("http timeout must be 0 or at least 1ms")
)

// Listing configures the business-listing fetch.
type Listing struct {
	Location  string `yaml:"location"`
	Category  string `yaml:"category"`
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Selector  string `yaml:"selector"`
}

// Indicator configures the economic-indicator fetch.
type Indicator struct {
	Code    string `yaml:"code"`
	Country string `yaml:"country"`
	// Year is recorded but only sent to the API when FilterByYear is set;
	// otherwise the API answers with its most recent entry.
	Year         string `yaml:"year"`
	FilterByYear bool   `yaml:"filter_by_year"`
	BaseURL      string `yaml:"base_url"`
}

// Tables names the destination tables.
type Tables struct {
	Listings  string `yaml:"listings"`
	Indicator string `yaml:"indicator"`
}

// Config holds everything the pipeline driver needs.
type Config struct {
	Listing   Listing   `yaml:"listing"`
	Indicator Indicator `yaml:"indicator"`
	Tables    Tables    `yaml:"tables"`

	// Store identifies the relational store: a sqlite file path, or a
	// postgres:// or mysql:// URL.
	Store string `yaml:"store"`

	// HTTPTimeout bounds each fetch. Zero means no timeout. In YAML it
	// needs a unit ("15s"); a bare integer fails to decode.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Default returns the configuration of a run without a config file.
func Default() *Config {
	return &Config{
		Listing: Listing{
			Location:  DefaultLocation,
			Category:  DefaultCategory,
			BaseURL:   DefaultListingURL,
			UserAgent: DefaultUserAgent,
			Selector:  DefaultSelector,
		},
		Indicator: Indicator{
			Code:    DefaultIndicatorCode,
			Country: DefaultCountry,
			Year:    DefaultYear,
			BaseURL: DefaultIndicatorURL,
		},
		Tables: Tables{
			Listings:  DefaultListingTable,
			Indicator: DefaultIndicatorTable,
		},
		Store: DefaultStore,
	}
}

// XDGConfigDir returns the per-user config directory.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate returns the first problem found, or nil.
func (c *Config) Validate() error {
	switch {
	case c.Listing.Location == "":
		return ErrNoLocation
	case c.Listing.Category == "":
		return ErrNoCategory
	case c.Listing.Selector == "":
		return ErrNoSelector
	case c.Listing.UserAgent == "":
		return ErrNoUserAgent
	case c.Listing.BaseURL == "" || c.Indicator.BaseURL == "":
		return ErrNoBaseURL
	case c.Indicator.Code == "":
		return ErrNoIndicatorCode
	case c.Indicator.Country == "":
		return ErrNoCountry
	case c.Store == "":
		return ErrNoStore
	case c.Tables.Listings == "" || c.Tables.Indicator == "":
		return ErrNoTable
	case c.Tables.Listings == c.Tables.Indicator:
		return ErrSameTable
	case c.HTTPTimeout < 0, c.HTTPTimeout > 0 && c.HTTPTimeout < time.Millisecond:
		return fmt.Errorf("%w: got %s", ErrInvalidTimeout, c.HTTPTimeout)
	}
	if _, err := cascadia.Compile(c.Listing.Selector); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSelector, err)
	}
	return nil
}
