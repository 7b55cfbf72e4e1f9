package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeaders is returned when a dataset declares no columns.
var ErrNoHeaders = errors.New("export: dataset has no headers")

// Dataset is a header-ordered table shared by every renderer.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) record(row map[string]string) []string {
	values := make([]string, len(d.Headers))
	for i, header := range d.Headers {
		values[i] = row[header]
	}
	return values
}

// CSVExporter writes datasets as RFC 4180 text. Cells that a spreadsheet would
// evaluate as a formula are prefixed with a single quote.
type CSVExporter struct {
	Comma rune
}

// NewCSVExporter builds a comma separated exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{Comma: ','}
}

// Render returns the dataset as CSV bytes.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the dataset to w.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return ErrNoHeaders
	}
	out := csv.NewWriter(w)
	if e.Comma != 0 {
		out.Comma = e.Comma
	}
	if err := out.Write(data.Headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	for i, row := range data.Rows {
		values := data.record(row)
		for j := range values {
			values[j] = neutralizeFormula(values[j])
		}
		if err := out.Write(values); err != nil {
			return fmt.Errorf("csv row %d: %w", i+1, err)
		}
	}
	out.Flush()
	return out.Error()
}

func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
