// Package gmaps wraps the Google Maps Web Service APIs: geocoding, places
// text search, place details, directions, and distance matrix.
//
// Each operation is one GET; the raw JSON is passed through an ordered
// field-resolution normalizer and rendered to markdown by the caller.
package gmaps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBase is used by tests to point the client at a fake server.
func NewClientWithBase(apiKey, baseURL string, httpClient *http.Client) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// get issues one request against a Maps endpoint and returns the raw body.
// Transport-level failures and non-200 statuses are provider errors.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to create maps request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "maps request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to read maps response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, toolerr.Providerf("maps request failed: status=%d body=%s", resp.StatusCode, truncate(string(body), 300))
	}

	return body, nil
}

// checkStatus inspects the Maps envelope status. ZERO_RESULTS (and the
// places-specific NOT_FOUND) become an empty-result failure carrying
// emptyMessage; any other non-OK status is a provider error.
func checkStatus(body []byte, emptyMessage string) error {
	status := gjson.GetBytes(body, "status").String()
	switch status {
	case "OK", "":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return toolerr.EmptyResult(emptyMessage)
	}

	if msg := gjson.GetBytes(body, "error_message").String(); msg != "" {
		return toolerr.Providerf("maps API error: %s (%s)", status, msg)
	}
	return toolerr.Providerf("maps API error: %s", status)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
