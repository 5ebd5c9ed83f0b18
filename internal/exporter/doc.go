// Package exporter writes tabular market data to disk.
//
// Two writers share a common Table input: XLSXWriter produces Excel
// workbooks via excelize and is the default output for fetched data,
// CSVWriter produces UTF-8 CSV files with a BOM prefix so Excel opens
// them correctly. Relative output paths resolve against the downloads
// directory when a config.Paths is supplied.
//
// Example usage:
//
//	writer := exporter.NewXLSXWriter(paths)
//	err := writer.WriteTable("option_chain_NIFTY.xlsx", exporter.Table{
//		Headers: []string{"strikePrice", "expiryDate"},
//		Rows:    [][]interface{}{{22500.0, "28-Aug-2025"}},
//	})
package exporter
