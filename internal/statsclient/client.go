package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nicolastakashi/stats-viewer/api/models"
	"github.com/prometheus/client_golang/api"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// StatusError is returned for any non-2xx response other than 404.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

type Client struct {
	base         *url.URL
	client       api.Client
	roundTripper http.RoundTripper
	timeout      time.Duration
	now          func() time.Time
}

type Option func(*Client)

// WithTimeout bounds every fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithRoundTripper(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.roundTripper = rt
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New returns a client resolving document paths against baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid scheme for base URL %q, only 'http' and 'https' are supported", baseURL)
	}

	c := &Client{
		base:         base,
		roundTripper: api.DefaultRoundTripper,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client, err = api.NewClient(api.Config{
		Address:      baseURL,
		RoundTripper: otelhttp.NewTransport(c.roundTripper),
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return c, nil
}

// Statistics fetches the statistics document at path.
func (c *Client) Statistics(ctx context.Context, path string) (*models.StatisticsResponse, error) {
	var out models.StatisticsResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Databases fetches the list of available databases at path.
func (c *Client) Databases(ctx context.Context, path string) (*models.DatabaseList, error) {
	var out models.DatabaseList
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve returns the absolute URL of path, resolved like a relative link.
func (c *Client) Resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref), nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	u, err := c.Resolve(path)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, body, err := c.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("fetch %s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{StatusCode: resp.StatusCode, URL: u.Redacted()}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
