// Package polymarket provides a client for the Polymarket Gamma API.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ClientConfig tunes paging and retry behavior.
type ClientConfig struct {
	Limit          int
	MaxPages       int
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Client provides access to the Polymarket Gamma API.
type Client struct {
	gammaAPIURL string
	httpClient  *http.Client
	config      ClientConfig
}

// NewClient creates a new Polymarket client.
func NewClient(gammaAPIURL string, timeout time.Duration, config ClientConfig) *Client {
	if config.Limit <= 0 {
		config.Limit = 500
	}
	if config.MaxPages <= 0 {
		config.MaxPages = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelayBase <= 0 {
		config.RetryDelayBase = time.Second
	}
	return &Client{
		gammaAPIURL: gammaAPIURL,
		httpClient:  &http.Client{Timeout: timeout},
		config:      config,
	}
}

// FetchMarkets retrieves all active open markets for one polling cycle,
// paging through GET /markets until an empty page or MaxPages is reached.
// Records are returned undecoded; field validation is the normalizer's job.
func (c *Client) FetchMarkets(ctx context.Context) ([]json.RawMessage, error) {
	var records []json.RawMessage
	offset := 0

	for page := 0; page < c.config.MaxPages; page++ {
		batch, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch markets page at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}
		records = append(records, batch...)
		offset += c.config.Limit
	}

	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, offset int) ([]json.RawMessage, error) {
	u, err := url.Parse(c.gammaAPIURL + "/markets")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", strconv.Itoa(c.config.Limit))
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()

	resp, err := c.doRequest(ctx, u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	// Response is an array directly, not wrapped
	var batch []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode markets: %w", err)
	}

	return batch, nil
}

// doRequest performs an HTTP request with linear-backoff retry on transport
// errors and 5xx responses.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.config.MaxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelayBase * time.Duration(i+1)):
			}
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelayBase * time.Duration(i+1)):
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
