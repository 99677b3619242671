package httpclient

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps an http.Client to pace outgoing requests. It never retries:
// a failed attempt is returned to the caller as is.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// NewClient creates a paced HTTP client. A non-positive requestsPerSecond disables pacing.
func NewClient(httpClient *http.Client, requestsPerSecond float64, burst int, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
		userAgent:  userAgent,
	}
}

// Do waits for a pacing slot and executes req once.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req.WithContext(ctx))
}
