// Package hostcsv is the outbound client for the CSV hosting service
// the relay forwards data to. A template on the hosting side holds one
// dataset; uploads replace it wholesale and fetches read it back as
// JSON rows.
package hostcsv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"nsecli/internal/config"
	"nsecli/internal/infrastructure"
)

// maxErrorBody bounds how much of an upstream error response is kept
// in error messages.
const maxErrorBody = 512

// APIError is a non-success response from the hosting service.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("hosting service returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the hosting service's template data API. All calls
// authenticate with the configured API key; the template ID selects
// the dataset.
type Client struct {
	baseURL    string
	apiKey     string
	templateID string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a Client for the hosting service named in cfg.
func New(cfg config.RelayConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    cfg.HostBaseURL,
		apiKey:     cfg.APIKey,
		templateID: cfg.TemplateID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     infrastructure.WithComponent(logger, "hostcsv_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dataURL is the template's data endpoint.
func (c *Client) dataURL() string {
	return fmt.Sprintf("%s/templates/%s/data", c.baseURL, url.PathEscape(c.templateID))
}

// Upload replaces the template's dataset with csvData and returns the
// public URL the hosting service serves it under.
func (c *Client) Upload(ctx context.Context, csvData []byte) (string, error) {
	u := c.dataURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(csvData))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload csv: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", &APIError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload response missing hosted url")
	}

	c.logger.InfoContext(ctx, "CSV uploaded to hosting service",
		slog.Int("size_bytes", len(csvData)),
		slog.String("hosted_url", out.URL))
	return out.URL, nil
}

// Fetch reads the template's current dataset back as row objects.
func (c *Client) Fetch(ctx context.Context) ([]map[string]interface{}, error) {
	u := c.dataURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode dataset response: %w", err)
	}

	c.logger.DebugContext(ctx, "Dataset fetched from hosting service",
		slog.Int("rows", len(rows)))
	return rows, nil
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
