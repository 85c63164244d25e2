package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/errors"
)

const (
	DefaultEndpoint  = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent = "glance/1.0 (+https://github.com/justyntemme/glance)"
	DefaultLimit     = 10
	DefaultTimeout   = 15 * time.Second

	// maxBody bounds how much of a response is read.
	maxBody = 4 << 20

	RateLimitedMessage = "rate limited: please wait a few seconds and try again"
)

// Limits are the result counts offered to the user.
var Limits = []int{5, 10, 15, 20}

// Client issues opensearch requests.
type Client struct {
	Endpoint  string
	UserAgent string
	HTTP      *http.Client
}

// NewClient returns a client for endpoint with the given request timeout.
// Empty arguments fall back to the defaults.
func NewClient(endpoint, userAgent string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// Search runs one query and returns its outcome. It never returns a
// partial result: either Results is set or Err is.
func (c *Client) Search(ctx context.Context, query string, limit int) Outcome {
	out := Outcome{Query: query}

	query = strings.TrimSpace(query)
	if query == "" {
		out.Err = errors.New(errors.InvalidInput, "empty query")
		return out
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := c.fetch(ctx, query, limit)
	if err != nil {
		debug.Log(debug.SEARCH, "Search %q: %v", query, err)
		out.Err = err
		return out
	}
	debug.Log(debug.SEARCH, "Search %q: %d results", query, len(results))
	out.Results = results
	return out
}

func (c *Client) fetch(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("format", "json")
	params.Set("namespace", "0")

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "search", "")
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.Transport, fmt.Sprintf("network error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.New(errors.RateLimited, RateLimitedMessage)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.Transport, "http error: "+resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, errors.New(errors.Transport, fmt.Sprintf("network error: %v", err))
	}
	return ParseResponse(body)
}
