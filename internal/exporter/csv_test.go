package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsecli/internal/config"
)

func TestWriteCSV(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter(nil)

	filePath := filepath.Join(tmpDir, "test.csv")
	err := writer.WriteCSV(filePath, WriteOptions{
		Headers:   []string{"symbol", "price"},
		Records:   [][]string{{"NIFTY", "22500.50"}, {"BANKNIFTY", "48100.25"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)

	// BOM prefix present
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"symbol", "price"}, rows[0])
	assert.Equal(t, []string{"NIFTY", "22500.50"}, rows[1])
}

func TestWriteCSV_NoBOM(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter(nil)

	filePath := filepath.Join(tmpDir, "plain.csv")
	err := writer.WriteCSV(filePath, WriteOptions{
		Records: [][]string{{"a", "b"}},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
}

func TestWriteCSV_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter(nil)

	filePath := filepath.Join(tmpDir, "nested", "deeper", "out.csv")
	err := writer.WriteCSV(filePath, WriteOptions{
		Headers: []string{"only"},
	})
	require.NoError(t, err)

	_, err = os.Stat(filePath)
	assert.NoError(t, err)
}

func TestWriteSimpleCSV(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter(nil)

	filePath := filepath.Join(tmpDir, "simple.csv")
	err := writer.WriteSimpleCSV(filePath, []string{"h1", "h2"}, [][]string{{"v1", "v2"}})
	require.NoError(t, err)

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(data), "h1,h2")
	assert.Contains(t, string(data), "v1,v2")
}

func TestCSVWriter_WriteTable(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter(nil)

	filePath := filepath.Join(tmpDir, "table.csv")
	err := writer.WriteTable(filePath, Table{
		Headers: []string{"strikePrice", "openInterest", "symbol", "active"},
		Rows: [][]interface{}{
			{22500.0, int64(125000), "NIFTY", true},
			{22600.5, 0, "NIFTY", false},
		},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"22500.00", "125000", "NIFTY", "true"}, rows[1])
	assert.Equal(t, []string{"22600.50", "0", "NIFTY", "false"}, rows[2])
}

func TestCSVWriter_ResolvesRelativePaths(t *testing.T) {
	tmpDir := t.TempDir()
	writer := NewCSVWriter(&config.Paths{DownloadsDir: tmpDir})

	err := writer.WriteCSV("relative.csv", WriteOptions{
		Headers: []string{"x"},
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "relative.csv"))
	assert.NoError(t, err)
}
