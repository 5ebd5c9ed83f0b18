package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"nsecli/internal/exporter"
)

const (
	opIndexData    = "index_data"
	liveMarketPage = "/market-data/live-equity-market"
)

// indexFileCodes maps human-readable index names to the short codes
// used in artifact filenames. The upstream query always carries the
// original name.
var indexFileCodes = map[string]string{
	"NIFTY 50":          "NIFTY",
	"NIFTY BANK":        "BANKNIFTY",
	"NIFTY FIN SERVICE": "FINNIFTY",
}

// fileCodeFor returns the filename code for an index name. Unmapped
// names pass through with spaces made filename-safe.
func fileCodeFor(index string) string {
	if code, ok := indexFileCodes[index]; ok {
		return code
	}
	return strings.ReplaceAll(index, " ", "_")
}

// DownloadIndexData fetches the live constituent snapshot for the
// named index, persists the raw payload and a workbook built directly
// from the response's data array, and returns the table.
func (c *Client) DownloadIndexData(ctx context.Context, index string) (exporter.Table, error) {
	c.warmSession(ctx, liveMarketPage)

	u := fmt.Sprintf("%s/api/equity-stockIndices?index=%s", c.baseURL, url.QueryEscape(index))

	c.logger.InfoContext(ctx, "Downloading index data",
		slog.String("index", index),
		slog.String("url", u))

	body, err := c.fetch(ctx, opIndexData, u)
	if err != nil {
		return exporter.Table{}, err
	}

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return exporter.Table{}, c.fail(ctx, &FetchError{Op: opIndexData, URL: u, Kind: KindPayload, Err: err})
	}
	if payload.Data == nil {
		return exporter.Table{}, c.fail(ctx, &FetchError{Op: opIndexData, URL: u, Kind: KindPayload,
			Err: fmt.Errorf("response missing data array")})
	}

	table, err := tableFromRecords("Index Data", payload.Data)
	if err != nil {
		return exporter.Table{}, c.fail(ctx, &FetchError{Op: opIndexData, URL: u, Kind: KindPayload, Err: err})
	}

	code := fileCodeFor(index)
	stamp := c.timestamp()
	rawPath := filepath.Join(c.destDir, fmt.Sprintf("index_%s_%s.json", code, stamp))
	if err := os.WriteFile(rawPath, body, 0644); err != nil {
		return exporter.Table{}, fmt.Errorf("write index payload %s: %w", rawPath, err)
	}

	tablePath, err := c.writeTable(fmt.Sprintf("index_%s_%s", code, stamp), table)
	if err != nil {
		return exporter.Table{}, fmt.Errorf("write index table: %w", err)
	}

	c.logger.InfoContext(ctx, "Index data saved",
		slog.String("index", index),
		slog.String("file_code", code),
		slog.Int("rows", len(table.Rows)),
		slog.String("raw_path", rawPath),
		slog.String("table_path", tablePath))
	return table, nil
}
