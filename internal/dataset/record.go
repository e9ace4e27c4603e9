package dataset

import (
	"slices"
	"strconv"
)

// Record is one cleaned title entry.
type Record struct {
	Name    string
	Genre   string
	Minutes int
	Votes   int
	Rating  float64

	// Values holds every source column in header order, with Minutes and
	// Votes replaced by their normalised text. Nil for hand-built records.
	Values []string
}

// cells returns the record laid out against columns.
func (r Record) cells(columns []string) []string {
	if len(r.Values) == len(columns) {
		return r.Values
	}
	out := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case ColumnName:
			out[i] = r.Name
		case ColumnGenre:
			out[i] = r.Genre
		case ColumnMinutes:
			out[i] = strconv.Itoa(r.Minutes)
		case ColumnVotes:
			out[i] = strconv.Itoa(r.Votes)
		case ColumnRating:
			out[i] = strconv.FormatFloat(r.Rating, 'f', -1, 64)
		}
	}
	return out
}

// Dataset is an immutable, ordered collection of cleaned records.
type Dataset struct {
	columns []string
	records []Record
}

// New builds a Dataset from columns and records. Both slices are copied.
// A nil columns slice defaults to RequiredColumns.
func New(columns []string, records []Record) *Dataset {
	if columns == nil {
		columns = RequiredColumns
	}
	return &Dataset{
		columns: slices.Clone(columns),
		records: slices.Clone(records),
	}
}

// Columns returns the column names in source order.
func (d *Dataset) Columns() []string {
	return slices.Clone(d.columns)
}

// Records returns a copy of the records in source order. Values slices are
// shared and must not be modified.
func (d *Dataset) Records() []Record {
	return slices.Clone(d.records)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}
