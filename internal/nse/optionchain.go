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
	opOptionChain   = "option_chain"
	optionChainPage = "/option-chain"
)

// indexSymbols routes option-chain requests to the indices endpoint
// instead of the per-equity one.
var indexSymbols = map[string]bool{
	"NIFTY":     true,
	"BANKNIFTY": true,
	"FINNIFTY":  true,
}

// DownloadOptionChain fetches the option chain for symbol, persists
// the raw payload and a flattened workbook, and returns the flattened
// rows. Only strikes quoted on both the call and put side are kept.
// A non-empty expiry keeps only entries whose expiry string matches it
// exactly, formatting included; no date parsing is attempted.
func (c *Client) DownloadOptionChain(ctx context.Context, symbol, expiry string) ([]OptionRow, error) {
	c.warmSession(ctx, optionChainPage)

	endpoint := "option-chain-equities"
	if indexSymbols[strings.ToUpper(symbol)] {
		endpoint = "option-chain-indices"
	}
	u := fmt.Sprintf("%s/api/%s?symbol=%s", c.baseURL, endpoint, url.QueryEscape(symbol))

	c.logger.InfoContext(ctx, "Downloading option chain",
		slog.String("symbol", symbol),
		slog.String("expiry", expiry),
		slog.String("url", u))

	body, err := c.fetch(ctx, opOptionChain, u)
	if err != nil {
		return nil, err
	}

	var envelope optionChainEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, c.fail(ctx, &FetchError{Op: opOptionChain, URL: u, Kind: KindPayload, Err: err})
	}
	if envelope.Records.Data == nil {
		return nil, c.fail(ctx, &FetchError{Op: opOptionChain, URL: u, Kind: KindPayload,
			Err: fmt.Errorf("response missing records.data")})
	}

	stamp := c.timestamp()
	rawPath := filepath.Join(c.destDir, fmt.Sprintf("option_chain_%s_%s.json", symbol, stamp))
	if err := os.WriteFile(rawPath, body, 0644); err != nil {
		return nil, fmt.Errorf("write option chain payload %s: %w", rawPath, err)
	}

	rows := make([]OptionRow, 0, len(envelope.Records.Data))
	for _, entry := range envelope.Records.Data {
		if expiry != "" && entry.ExpiryDate != expiry {
			continue
		}
		row, ok := flattenEntry(entry)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	table := exporter.Table{Name: "Option Chain", Headers: optionChainHeaders}
	for _, row := range rows {
		table.Rows = append(table.Rows, row.cells())
	}
	tablePath, err := c.writeTable(fmt.Sprintf("option_chain_%s_%s", symbol, stamp), table)
	if err != nil {
		return nil, fmt.Errorf("write option chain table: %w", err)
	}

	c.logger.InfoContext(ctx, "Option chain saved",
		slog.String("symbol", symbol),
		slog.Int("rows", len(rows)),
		slog.String("raw_path", rawPath),
		slog.String("table_path", tablePath))
	return rows, nil
}
