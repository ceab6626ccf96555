package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client wraps an HTTP client with rate limiting and bounded retries. All
// external data sources share this so no single slow service can exceed
// its budget.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	MaxRetries uint64
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     int
}

// NewClient creates a rate-limited HTTP client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: opts.Timeout},
		Limiter:    rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec),
		MaxRetries: uint64(opts.MaxRetries),
	}
}

// DoRequest performs the request with rate limiting and a bounded number
// of exponential-backoff retries. The caller owns the response body.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.HTTPClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	strategy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.MaxRetries), ctx)
	if err := backoff.Retry(operation, strategy); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetJSON fetches the URL and decodes the JSON response into dst.
func (c *Client) GetJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.DoRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// HTTPStatusError represents a non-200 response.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %d", e.StatusCode)
}
