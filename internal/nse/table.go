package nse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"nsecli/internal/exporter"
)

// tableFromRecords builds a table straight from an array of upstream
// JSON objects, no per-row transformation. Column order follows the
// first record's key order in the document; records missing a column
// leave that cell empty.
func tableFromRecords(name string, records []json.RawMessage) (exporter.Table, error) {
	table := exporter.Table{Name: name}
	if len(records) == 0 {
		return table, nil
	}

	headers, err := objectKeys(records[0])
	if err != nil {
		return exporter.Table{}, fmt.Errorf("read column order: %w", err)
	}
	table.Headers = headers

	for i, raw := range records {
		var rec map[string]interface{}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return exporter.Table{}, fmt.Errorf("decode record %d: %w", i, err)
		}
		row := make([]interface{}, len(headers))
		for j, h := range headers {
			row[j] = rec[h]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// objectKeys returns the top-level keys of a JSON object in document
// order. encoding/json maps lose ordering, so the keys are walked with
// a token decoder instead.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		keys = append(keys, key)

		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// skipValue consumes one JSON value, descending through nested objects
// and arrays.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
