package dataset

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Clean drops incomplete rows and normalises the typed columns. It does not
// modify t.
//
// Minutes arrive as "<int> <unit>" and keep only the leading integer.
// Votes arrive as integer text with optional thousands separators.
// Any value that does not parse is a *ParseError; there is no fallback.
func Clean(t *Table) (*Dataset, error) {
	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		i := t.ColumnIndex(col)
		if i < 0 {
			return nil, &ParseError{Column: col, Err: errors.New("required column missing from header")}
		}
		idx[col] = i
	}

	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		if hasNull(row.Cells) {
			continue
		}

		minutesText := row.Cells[idx[ColumnMinutes]].Value
		minutes, err := ParseMinutes(minutesText)
		if err != nil {
			return nil, &ParseError{Line: row.Line, Column: ColumnMinutes, Value: minutesText, Err: err}
		}

		votesText := row.Cells[idx[ColumnVotes]].Value
		votes, err := ParseVotes(votesText)
		if err != nil {
			return nil, &ParseError{Line: row.Line, Column: ColumnVotes, Value: votesText, Err: err}
		}

		ratingText := row.Cells[idx[ColumnRating]].Value
		rating, err := strconv.ParseFloat(strings.TrimSpace(ratingText), 64)
		if err != nil {
			return nil, &ParseError{Line: row.Line, Column: ColumnRating, Value: ratingText, Err: err}
		}
		if math.IsInf(rating, 0) || math.IsNaN(rating) {
			return nil, &ParseError{Line: row.Line, Column: ColumnRating, Value: ratingText, Err: errNonFinite}
		}

		values := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			values[i] = c.Value
		}
		values[idx[ColumnMinutes]] = strconv.Itoa(minutes)
		values[idx[ColumnVotes]] = strconv.Itoa(votes)

		records = append(records, Record{
			Name:    row.Cells[idx[ColumnName]].Value,
			Genre:   row.Cells[idx[ColumnGenre]].Value,
			Minutes: minutes,
			Votes:   votes,
			Rating:  rating,
			Values:  values,
		})
	}

	return New(t.Header, records), nil
}

var errNonFinite = errors.New("rating must be a finite number")

// ParseMinutes parses the leading integer of a duration such as "90 min".
func ParseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		s = s[:i]
	}
	return parseCount(s)
}

// ParseVotes parses an integer that may carry comma thousands separators.
func ParseVotes(s string) (int, error) {
	return parseCount(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}

func hasNull(cells []Cell) bool {
	for _, c := range cells {
		if c.Null {
			return true
		}
	}
	return false
}
