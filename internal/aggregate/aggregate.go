// Package aggregate derives the genre distribution and the title ordering
// from cleaned records.
package aggregate

import (
	"slices"

	"github.com/marco/toonboard/internal/dataset"
)

// GenreCount is one genre with the number of records carrying it.
type GenreCount struct {
	Genre string
	Count int
}

// Distribution maps genres to record counts. Entries are ordered by count
// descending, ties in first-encounter order.
type Distribution []GenreCount

// Map returns the distribution as genre → count.
func (d Distribution) Map() map[string]int {
	m := make(map[string]int, len(d))
	for _, gc := range d {
		m[gc.Genre] = gc.Count
	}
	return m
}

// Total returns the sum of all counts.
func (d Distribution) Total() int {
	total := 0
	for _, gc := range d {
		total += gc.Count
	}
	return total
}

// Labels returns the genres in distribution order.
func (d Distribution) Labels() []string {
	labels := make([]string, len(d))
	for i, gc := range d {
		labels[i] = gc.Genre
	}
	return labels
}

// GenreDistribution counts occurrences of each distinct genre.
func GenreDistribution(records []dataset.Record) Distribution {
	index := make(map[string]int)
	var dist Distribution
	for _, r := range records {
		i, ok := index[r.Genre]
		if !ok {
			i = len(dist)
			index[r.Genre] = i
			dist = append(dist, GenreCount{Genre: r.Genre})
		}
		dist[i].Count++
	}

	slices.SortStableFunc(dist, func(a, b GenreCount) int {
		return b.Count - a.Count
	})
	return dist
}

// Genres returns the distinct genres of records in distribution order.
// These are the checklist labels.
func Genres(records []dataset.Record) []string {
	return GenreDistribution(records).Labels()
}

// FilterByGenre keeps records whose genre is in selected, preserving order.
// An empty selection keeps nothing.
func FilterByGenre(records []dataset.Record, selected []string) []dataset.Record {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]bool, len(selected))
	for _, g := range selected {
		want[g] = true
	}
	var out []dataset.Record
	for _, r := range records {
		if want[r.Genre] {
			out = append(out, r)
		}
	}
	return out
}

// TitleOrder returns the distinct names sorted by descending mean Minutes.
// Ties keep first-encounter order.
func TitleOrder(records []dataset.Record) []string {
	type group struct {
		name  string
		total int
		n     int
	}

	index := make(map[string]int)
	var groups []group
	for _, r := range records {
		i, ok := index[r.Name]
		if !ok {
			i = len(groups)
			index[r.Name] = i
			groups = append(groups, group{name: r.Name})
		}
		groups[i].total += r.Minutes
		groups[i].n++
	}

	// Compare a.total/a.n with b.total/b.n without division.
	slices.SortStableFunc(groups, func(a, b group) int {
		lhs := int64(b.total) * int64(a.n)
		rhs := int64(a.total) * int64(b.n)
		switch {
		case lhs < rhs:
			return -1
		case lhs > rhs:
			return 1
		}
		return 0
	})

	order := make([]string, len(groups))
	for i, g := range groups {
		order[i] = g.name
	}
	return order
}

// MeanMinutes returns the mean Minutes per distinct name.
func MeanMinutes(records []dataset.Record) map[string]float64 {
	totals := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range records {
		totals[r.Name] += r.Minutes
		counts[r.Name]++
	}
	means := make(map[string]float64, len(totals))
	for name, total := range totals {
		means[name] = float64(total) / float64(counts[name])
	}
	return means
}
