package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is the column-ordered table shape shared by the CSV and PDF
// renderers. Rows are keyed by header label; a missing key renders as an
// empty cell.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter turns a Dataset into RFC 4180 CSV, used for the timetable
// download endpoint.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the dataset, header row first, preserving header order in
// every record.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	records := make([][]string, 0, len(data.Rows)+1)
	records = append(records, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		records = append(records, record)
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
