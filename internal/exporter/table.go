package exporter

// Table is a tabular dataset ready for export. Rows hold native values
// so the XLSX writer can keep numeric cells numeric; the CSV writer
// formats them through the shared format helpers.
type Table struct {
	// Name becomes the sheet name in XLSX output. Empty keeps the
	// writer's default.
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}
