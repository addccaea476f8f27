// Package serpapi wraps the SerpAPI engines used by the quote and flight
// tools (google_finance, google_flights). The shared transport issues one
// GET per invocation; engine-specific normalizers turn the raw payload into
// closed result structures via ordered field resolution.
package serpapi

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nimbuslab/gtools/internal/toolerr"
)

const defaultBaseURL = "https://serpapi.com/search"

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

// search runs one engine query. SerpAPI signals application-level failures
// with a top-level "error" string on an otherwise-200 response; that is a
// provider error, not an empty result.
func (c *Client) search(ctx context.Context, engine string, params url.Values) ([]byte, error) {
	params.Set("engine", engine)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to create search request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "search request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, toolerr.WrapProvider(err, "failed to read search response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, toolerr.Providerf("search request failed: status=%d", resp.StatusCode)
	}

	if msg := gjson.GetBytes(body, "error").String(); msg != "" {
		return nil, toolerr.Providerf("search API error: %s", msg)
	}
	return body, nil
}
