package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client fetches artifacts from a remote model registry over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a registry client for the given base URI.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchLatest retrieves the newest artifact from the registry.
func (c *Client) FetchLatest(ctx context.Context) (*Artifact, error) {
	url := c.baseURL + "/artifacts/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry fetch: unexpected status %d", resp.StatusCode)
	}

	var artifact Artifact
	if err := json.NewDecoder(resp.Body).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("registry fetch: parse artifact: %w", err)
	}
	if artifact.Meta.Version == "" {
		return nil, fmt.Errorf("registry fetch: artifact has no version")
	}
	return &artifact, nil
}
