package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serialises records against columns: one header row, no index
// column, UTF-8.
func WriteCSV(w io.Writer, columns []string, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.cells(columns)); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", r.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// EncodeCSV returns the CSV text for records as bytes.
func EncodeCSV(columns []string, records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, columns, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
