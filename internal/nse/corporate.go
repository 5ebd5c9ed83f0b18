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
	opCorporateActions   = "corporate_actions"
	corporateActionsPage = "/companies-listing/corporate-filings-actions"
)

// DownloadCorporateActions fetches the corporate action listing for
// symbol, persists the raw payload and a derived workbook, and
// returns the table. The symbol is upper-cased for both the query and
// the filenames. An empty listing is reported as a KindEmpty failure
// rather than an empty table, with nothing written.
func (c *Client) DownloadCorporateActions(ctx context.Context, symbol string) (exporter.Table, error) {
	c.warmSession(ctx, corporateActionsPage)

	sym := strings.ToUpper(symbol)
	u := fmt.Sprintf("%s/api/corporate-actions?index=%s", c.baseURL, url.QueryEscape(sym))

	c.logger.InfoContext(ctx, "Downloading corporate actions",
		slog.String("symbol", sym),
		slog.String("url", u))

	body, err := c.fetch(ctx, opCorporateActions, u)
	if err != nil {
		return exporter.Table{}, err
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return exporter.Table{}, c.fail(ctx, &FetchError{Op: opCorporateActions, URL: u, Kind: KindPayload, Err: err})
	}
	if len(records) == 0 {
		return exporter.Table{}, c.fail(ctx, &FetchError{Op: opCorporateActions, URL: u, Kind: KindEmpty})
	}

	table, err := tableFromRecords("Corporate Actions", records)
	if err != nil {
		return exporter.Table{}, c.fail(ctx, &FetchError{Op: opCorporateActions, URL: u, Kind: KindPayload, Err: err})
	}

	stamp := c.timestamp()
	rawPath := filepath.Join(c.destDir, fmt.Sprintf("corporate_actions_%s_%s.json", sym, stamp))
	if err := os.WriteFile(rawPath, body, 0644); err != nil {
		return exporter.Table{}, fmt.Errorf("write corporate actions payload %s: %w", rawPath, err)
	}

	tablePath, err := c.writeTable(fmt.Sprintf("corporate_actions_%s_%s", sym, stamp), table)
	if err != nil {
		return exporter.Table{}, fmt.Errorf("write corporate actions table: %w", err)
	}

	c.logger.InfoContext(ctx, "Corporate actions saved",
		slog.String("symbol", sym),
		slog.Int("rows", len(table.Rows)),
		slog.String("raw_path", rawPath),
		slog.String("table_path", tablePath))
	return table, nil
}
