package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"diffpack/internal/difftree"
)

// DefaultTimeout bounds a single tarball download.
const DefaultTimeout = 60 * time.Second

// Client downloads and extracts package tarballs.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient returns a client using the given http.Client, or a default one
// with DefaultTimeout when nil.
func NewClient(httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{httpClient: httpClient, userAgent: userAgent}
}

// FetchPackage downloads one package version from a registry and extracts
// it into a file map.
func (c *Client) FetchPackage(ctx context.Context, reg, pkg, version string) (difftree.FileMap, error) {
	url, err := TarballURL(reg, pkg, version)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch tarball from %s", url)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch tarball from %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("Failed to fetch tarball from %s", url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch tarball from %s", url)
	}
	return Extract(data)
}
