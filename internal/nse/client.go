package nse

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nsecli/internal/exporter"
	"nsecli/internal/infrastructure"
)

const (
	defaultBaseURL    = "https://www.nseindia.com"
	defaultArchiveURL = "https://archives.nseindia.com"
	defaultTimeout    = 30 * time.Second

	// timestampLayout stamps every artifact filename the client writes.
	timestampLayout = "20060102_150405"
)

// Format selects the file format derived tables are written in.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// browserHeaders is sent with every request. The exchange rejects
// requests that do not look like a browser, and Accept-Encoding
// identity keeps bodies uncompressed so raw payloads can be persisted
// verbatim.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "*/*",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Encoding": "identity",
	"Connection":      "keep-alive",
}

// Client downloads market data from the exchange. One Client carries
// one cookie session; API calls that sit behind the exchange's bot
// checks are preceded by a page visit on the same session to collect
// the cookies they require. A Client is not safe for concurrent use.
type Client struct {
	baseURL    string
	archiveURL string
	destDir    string
	timeout    time.Duration
	format     Format
	httpClient *http.Client
	logger     *slog.Logger
	xlsx       *exporter.XLSXWriter
	csv        *exporter.CSVWriter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The replacement
// should carry its own cookie jar if session cookies matter.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the exchange site root used for API calls and
// cookie warm-up pages.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithArchiveURL overrides the historical archive root used for
// bhavcopy downloads.
func WithArchiveURL(u string) Option {
	return func(c *Client) { c.archiveURL = strings.TrimRight(u, "/") }
}

// WithTimeout overrides the per-fetch deadline. Cookie warm-up
// requests are never subject to it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithFormat selects the derived-table output format. The raw payload
// is persisted verbatim either way.
func WithFormat(f Format) Option {
	return func(c *Client) {
		if f == FormatXLSX || f == FormatCSV {
			c.format = f
		}
	}
}

// New returns a Client that writes downloaded artifacts into destDir,
// creating the directory if it does not exist.
func New(destDir string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", destDir, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    defaultBaseURL,
		archiveURL: defaultArchiveURL,
		destDir:    destDir,
		timeout:    defaultTimeout,
		format:     FormatXLSX,
		httpClient: &http.Client{Jar: jar},
		logger:     infrastructure.WithComponent(logger, "nse_client"),
		xlsx:       exporter.NewXLSXWriter(nil),
		csv:        exporter.NewCSVWriter(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newRequest builds a GET request carrying the browser header set.
func (c *Client) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	return req, nil
}

// warmSession visits a regular site page so the exchange hands the
// session cookies its API endpoints check for. Failures are logged and
// swallowed; the API call that follows decides the outcome. No
// deadline is applied beyond whatever ctx already carries.
func (c *Client) warmSession(ctx context.Context, page string) {
	url := c.baseURL + page
	req, err := c.newRequest(ctx, url)
	if err != nil {
		c.logger.WarnContext(ctx, "Cookie warm-up request could not be built",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Cookie warm-up failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.DebugContext(ctx, "Cookie warm-up completed",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode))
}

// fetch GETs url under the per-fetch deadline and returns the body on
// HTTP 200. Transport failures and non-200 statuses come back as
// already-logged FetchErrors under op.
func (c *Client) fetch(ctx context.Context, op, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, url)
	if err != nil {
		return nil, c.fail(ctx, &FetchError{Op: op, URL: url, Kind: KindTransport, Err: err})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(ctx, &FetchError{Op: op, URL: url, Kind: KindTransport, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, c.fail(ctx, &FetchError{Op: op, URL: url, Kind: KindStatus, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(ctx, &FetchError{Op: op, URL: url, Kind: KindTransport, Err: err})
	}
	return body, nil
}

// fail logs fe at the severity its kind warrants and returns it. Empty
// results are routine, so they log as warnings; everything else is an
// error.
func (c *Client) fail(ctx context.Context, fe *FetchError) error {
	attrs := []any{
		slog.String("op", fe.Op),
		slog.String("url", fe.URL),
		slog.String("kind", string(fe.Kind)),
	}
	if fe.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status", fe.StatusCode))
	}
	if fe.Err != nil {
		attrs = append(attrs, slog.String("error", fe.Err.Error()))
	}

	if fe.Kind == KindEmpty {
		c.logger.WarnContext(ctx, "Download returned no data", attrs...)
	} else {
		c.logger.ErrorContext(ctx, "Download failed", attrs...)
	}
	return fe
}

// timestamp returns the filename stamp for artifacts written now.
func (c *Client) timestamp() string {
	return time.Now().Format(timestampLayout)
}

// writeTable writes the derived table next to the raw payload, in the
// configured format, and returns the path written. base carries no
// extension.
func (c *Client) writeTable(base string, table exporter.Table) (string, error) {
	path := filepath.Join(c.destDir, fmt.Sprintf("%s.%s", base, c.format))
	var err error
	if c.format == FormatCSV {
		err = c.csv.WriteTable(path, table)
	} else {
		err = c.xlsx.WriteTable(path, table)
	}
	if err != nil {
		return "", fmt.Errorf("write table %s: %w", path, err)
	}
	return path, nil
}
