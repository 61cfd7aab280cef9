// Package registry talks to the CivitAI API: version metadata lookups
// and download URL construction.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultBaseURL is the production registry endpoint.
	DefaultBaseURL = "https://civitai.com"

	versionPath  = "/api/v1/model-versions/"
	downloadPath = "/api/download/models/"

	userAgent = "Mozilla/5.0 (compatible; civget)"
)

// File type values used by the registry manifest.
const (
	FileTypeModel = "Model"
	FileTypeVAE   = "VAE"
	FileTypeOther = "Other"
)

// FP is a floating point precision value from file metadata.
// The registry has served both bare numbers (16) and prefixed strings
// ("fp16"); both decode to the bare digits.
type FP string

// UnmarshalJSON accepts a JSON number or string.
func (f *FP) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		*f = ""
		return nil
	}
	*f = FP(strings.TrimPrefix(strings.ToLower(s), "fp"))
	return nil
}

// FileMetadata describes how a file was serialized.
type FileMetadata struct {
	Format string `json:"format"`
	Size   string `json:"size"`
	FP     FP     `json:"fp"`
}

// File is one downloadable entry in a version manifest.
type File struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Metadata FileMetadata `json:"metadata"`
}

// Version is the registry's file manifest for one model version.
type Version struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Files []File `json:"files"`
}

// Client performs authenticated reads against the registry API.
// The token is optional; anonymous reads may still succeed for
// public versions.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a registry client. Pass DefaultBaseURL outside of tests.
func NewClient(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{},
		logger:  logger,
	}
}

// Version fetches the file manifest for a model version.
func (c *Client) Version(ctx context.Context, versionID string) (*Version, error) {
	u := c.baseURL + versionPath + versionID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("fetching version metadata", "version", versionID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch version metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, URL: u}
	}

	var version Version
	if err := json.NewDecoder(resp.Body).Decode(&version); err != nil {
		return nil, &DecodeError{Err: err}
	}

	c.logger.Debug("fetched version metadata", "version", versionID, "files", len(version.Files))
	return &version, nil
}

// DownloadParams narrow a download URL to one specific file of a version.
// Empty fields are omitted from the query.
type DownloadParams struct {
	Type   string
	Format string
	Size   string
	FP     string
}

// DownloadURL builds the download endpoint URL for a model version.
func (c *Client) DownloadURL(versionID string, p DownloadParams) string {
	u := c.baseURL + downloadPath + versionID

	q := url.Values{}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Format != "" {
		q.Set("format", p.Format)
	}
	if p.Size != "" {
		q.Set("size", p.Size)
	}
	if p.FP != "" {
		q.Set("fp", p.FP)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}
