package smoketest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// HTTP status code constants.
const (
	statusOK = 200
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// recommend performs a single POST /recommend round trip.
func (c *HTTPClient) recommend(ctx context.Context, baseURL string, req recommendRequest) (*recommendResponse, error) {
	resp, err := c.Post(ctx, baseURL+"/recommend", req)
	if err != nil {
		return nil, fmt.Errorf("recommend request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("recommend returned status %d: %s", resp.StatusCode, string(body))
	}

	var rec recommendResponse
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode recommend response: %w", err)
	}
	return &rec, nil
}

// fetchStats retrieves the /stats snapshot as a loose map.
func (c *HTTPClient) fetchStats(ctx context.Context, baseURL string) (map[string]interface{}, error) {
	resp, err := c.Get(ctx, baseURL+"/stats")
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != statusOK {
		return nil, fmt.Errorf("stats returned status %d", resp.StatusCode)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}
	return stats, nil
}
