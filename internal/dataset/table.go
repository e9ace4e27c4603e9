package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Source column names the dashboards depend on.
const (
	ColumnName    = "Name"
	ColumnGenre   = "genre"
	ColumnMinutes = "Minutes"
	ColumnVotes   = "Votes"
	ColumnRating  = "Rating"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{ColumnName, ColumnGenre, ColumnMinutes, ColumnVotes, ColumnRating}

// naValues are the cell texts read as missing, matching the defaults of the
// pandas CSV reader the dataset was published for.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cell is one source value. Null cells carry no value.
type Cell struct {
	Value string
	Null  bool
}

// Row is one data row with the source line it started on.
type Row struct {
	Line  int
	Cells []Cell
}

// Table is the uncleaned tabular content of a source, header and rows
// verbatim.
type Table struct {
	Header []string
	Rows   []Row
}

// ColumnIndex returns the position of the first header equal to name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ParseTable reads comma-separated UTF-8 text with a header row. Rows
// shorter than the header are padded with null cells; longer rows are an
// error.
func ParseTable(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &ParseError{Err: errors.New("source is not valid UTF-8")}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, &ParseError{Err: errors.New("source is empty")}
	}
	if err != nil {
		return nil, csvParseError(err)
	}

	t := &Table{Header: header}
	for _, col := range RequiredColumns {
		if t.ColumnIndex(col) < 0 {
			return nil, &ParseError{Line: 1, Column: col, Err: errors.New("required column missing from header")}
		}
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		line, _ := r.FieldPos(0)
		if len(fields) > len(header) {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(header), len(fields)),
			}
		}

		cells := make([]Cell, len(header))
		for i := range cells {
			if i >= len(fields) || naValues[fields[i]] {
				cells[i] = Cell{Null: true}
				continue
			}
			cells[i] = Cell{Value: fields[i]}
		}
		t.Rows = append(t.Rows, Row{Line: line, Cells: cells})
	}

	return t, nil
}

func csvParseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}
