package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nsecli/internal/config"
)

// XLSXWriter writes tables as Excel workbooks
type XLSXWriter struct {
	paths *config.Paths
}

// NewXLSXWriter creates a new XLSX writer instance. paths may be nil when
// callers always supply absolute output paths.
func NewXLSXWriter(paths *config.Paths) *XLSXWriter {
	return &XLSXWriter{paths: paths}
}

// WriteTable writes a Table to an xlsx workbook with a single sheet.
// Numeric cells keep their native type so spreadsheets can compute on them.
func (w *XLSXWriter) WriteTable(filePath string, table Table) error {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Writing XLSX file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(table.Rows)))

	// Ensure directory exists
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if table.Name != "" {
		f.SetSheetName(sheet, table.Name)
		sheet = table.Name
	}

	if len(table.Headers) > 0 {
		headerRow := make([]interface{}, len(table.Headers))
		for i, h := range table.Headers {
			headerRow[i] = h
		}
		if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i := range table.Rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &table.Rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

// resolvePath resolves a relative path to the downloads directory
func (w *XLSXWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetDownloadPath(filePath)
}
