package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxBodySize caps how much of a response body is read. Documentation pages
// are well under it.
const MaxBodySize = 8 << 20 // 8MB

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

const userAgent = "versionboard (+https://github.com/jpalmerr/versionboard)"

// connection pooling limits; a run only talks to a handful of hosts
const (
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 4
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

// ErrBodyTooLarge is reported when a response body exceeds [MaxBodySize].
var ErrBodyTooLarge = errors.New("response body too large")

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the HTTP response body.
	Body []byte

	// StatusCode is the HTTP status code. Zero if the request failed before
	// receiving a response.
	StatusCode int

	// Location is the Location header, set on redirects that were not
	// followed.
	Location string

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request. nil means
	// the request completed, whatever the status.
	Error error
}

// Client is an HTTP client wrapper used for documentation pages.
//
// Timeouts are applied per request via context rather than as a global
// client timeout.
type Client struct {
	httpClient *http.Client
	noRedirect *http.Client
	timeout    time.Duration
}

// NewClient creates a [Client]. A non-positive timeout selects
// [DefaultTimeout].
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		MaxConnsPerHost:     defaultMaxConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport},
		noRedirect: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get fetches url, following redirects.
//
// Get always returns a Response; errors are captured in the Error field.
func (c *Client) Get(ctx context.Context, url string) Response {
	return c.do(ctx, c.httpClient, http.MethodGet, url)
}

// Probe requests url without following redirects. A 3xx answer is
// returned as is, with its Location.
func (c *Client) Probe(ctx context.Context, url string) Response {
	return c.do(ctx, c.noRedirect, http.MethodGet, url)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, url string) Response {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// read one byte past the cap to detect truncation
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}
	if len(body) > MaxBodySize {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, MaxBodySize),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool. Safe
// to call multiple times; the client remains usable.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
