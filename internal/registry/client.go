// Package registry is the narrow client for registry-sourced installs:
// resolve a package name to an archive URL and version. Publishing,
// integrity hashing and auth live elsewhere.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultAPIBase = "https://skills.sh"

// Package is a resolved registry package.
type Package struct {
	Name       string
	Version    string
	ArchiveURL string
}

// Client talks to a skills registry API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client. An empty baseURL uses the public registry.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBase
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// Resolve looks up a package by name and returns its download location and
// current version.
func (c *Client) Resolve(ctx context.Context, name string) (*Package, error) {
	u := fmt.Sprintf("%s/api/v1/skills/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry resolve %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("registry resolve %s: not found", name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry resolve %s: status %d", name, resp.StatusCode)
	}

	var result struct {
		Name       string `json:"name"`
		Version    string `json:"version"`
		ArchiveURL string `json:"archive_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("registry resolve %s: %w", name, err)
	}
	if result.ArchiveURL == "" {
		return nil, fmt.Errorf("registry resolve %s: response missing archive_url", name)
	}

	return &Package{
		Name:       result.Name,
		Version:    result.Version,
		ArchiveURL: result.ArchiveURL,
	}, nil
}
