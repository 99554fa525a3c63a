package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// newClient builds the HTTP client for one source. Resty leaves non-2xx
// responses alone, so callers decide what a status code means.
func newClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// get issues one GET and drops idle connections afterwards, so nothing
// outlives the call.
func get(ctx context.Context, c *resty.Client, link string, headers map[string]string) (*resty.Response, error) {
	defer c.GetClient().CloseIdleConnections()

	res, err := c.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(link)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	return res, nil
}

// joinURL appends path to base, tolerating a trailing slash on base.
func joinURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
