package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrNoRelease is returned when a repository has no published, non-prerelease
// release with assets.
var ErrNoRelease = errors.New("no published release with assets")

// Asset is one downloadable artifact attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

// Release is the metadata for one published GitHub release.
type Release struct {
	Version    string  `json:"tag_name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// Client fetches release metadata and artifacts from GitHub.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a release client for api.github.com. A GITHUB_TOKEN in
// the environment is used for authenticated requests, which have a higher
// rate limit.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    "https://api.github.com",
		token:      os.Getenv("GITHUB_TOKEN"),
	}
}

// NewClientWithBaseURL creates a client against a custom API endpoint.
// Used by tests to point at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "ctxlaunch")
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// Latest returns the newest published release of repo ("owner/name") that is
// neither a draft nor a prerelease and has at least one asset.
func (c *Client) Latest(ctx context.Context, repo string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=30", c.baseURL, repo)
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching releases for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching releases for %s: status %d", repo, resp.StatusCode)
	}

	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("parsing releases for %s: %w", repo, err)
	}

	// The API returns releases newest first.
	for i := range releases {
		r := &releases[i]
		if r.Draft || r.Prerelease || len(r.Assets) == 0 {
			continue
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoRelease, repo)
}

// Download fetches an asset URL and returns its body. The caller must close
// the returned reader.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
