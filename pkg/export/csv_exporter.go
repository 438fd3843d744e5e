package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// Dataset is a rectangular table. Every row and the optional footer must
// have exactly as many cells as there are headers.
type Dataset struct {
	Headers []string
	Rows    [][]string
	Footer  []string
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Headers))
		}
	}
	if d.Footer != nil && len(d.Footer) != len(d.Headers) {
		return fmt.Errorf("footer has %d cells, want %d", len(d.Footer), len(d.Headers))
	}
	return nil
}

// CSVExporter renders datasets as RFC 4180 CSV. Cells a spreadsheet would
// evaluate as a formula are prefixed with a single quote.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(neutralizeRow(data.Headers)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, row := range data.Rows {
		if err := writer.Write(neutralizeRow(row)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	if data.Footer != nil {
		if err := writer.Write(neutralizeRow(data.Footer)); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// formulaTriggers are the leading characters spreadsheets treat as a formula.
const formulaTriggers = "=+-@\t\r"

// NeutralizeFormula prefixes cell with a single quote when it would
// otherwise be evaluated as a formula.
func NeutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune(formulaTriggers, rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

func neutralizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = NeutralizeFormula(cell)
	}
	return out
}
