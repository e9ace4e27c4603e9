package aggregate

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/marco/toonboard/internal/dataset"
)

func rec(name, genre string, minutes int) dataset.Record {
	return dataset.Record{Name: name, Genre: genre, Minutes: minutes}
}

func TestGenreDistribution_Scenario(t *testing.T) {
	records := []dataset.Record{rec("x", "A", 1), rec("y", "A", 2), rec("z", "B", 3)}

	dist := GenreDistribution(records)

	assert.Equal(t, map[string]int{"A": 2, "B": 1}, dist.Map())
	assert.Equal(t, []string{"A", "B"}, dist.Labels())
	assert.Equal(t, 3, dist.Total())
}

func TestGenreDistribution_OrderedByCountThenEncounter(t *testing.T) {
	records := []dataset.Record{
		rec("1", "Drama", 1),
		rec("2", "Comedy", 1),
		rec("3", "Action", 1),
		rec("4", "Comedy", 1),
		rec("5", "Action", 1),
		rec("6", "Horror", 1),
	}

	want := Distribution{
		{"Comedy", 2},
		{"Action", 2},
		{"Drama", 1},
		{"Horror", 1},
	}
	if diff := cmp.Diff(want, GenreDistribution(records)); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestGenreDistribution_Empty(t *testing.T) {
	dist := GenreDistribution(nil)
	assert.Empty(t, dist)
	assert.Equal(t, 0, dist.Total())
	assert.Empty(t, dist.Map())
}

// Counts sum to the subset size for every subset.
func TestGenreDistribution_TotalMatchesSubset(t *testing.T) {
	genres := []string{"A", "B", "C", "D"}
	rng := rand.New(rand.NewSource(7))
	var records []dataset.Record
	for i := 0; i < 40; i++ {
		records = append(records, rec(fmt.Sprint(i), genres[rng.Intn(len(genres))], i))
	}

	for mask := 0; mask < 1<<len(genres); mask++ {
		var selected []string
		for i, g := range genres {
			if mask&(1<<i) != 0 {
				selected = append(selected, g)
			}
		}
		subset := FilterByGenre(records, selected)
		dist := GenreDistribution(subset)
		if dist.Total() != len(subset) {
			t.Errorf("selection %v: total %d, want %d", selected, dist.Total(), len(subset))
		}
		for _, gc := range dist {
			if !slices.Contains(selected, gc.Genre) {
				t.Errorf("selection %v: unexpected genre %q", selected, gc.Genre)
			}
		}
	}
}

func TestFilterByGenre(t *testing.T) {
	records := []dataset.Record{rec("x", "A", 1), rec("y", "A", 2), rec("z", "B", 3)}

	assert.Nil(t, FilterByGenre(records, nil))
	assert.Nil(t, FilterByGenre(records, []string{}))
	assert.Nil(t, FilterByGenre(records, []string{"Nope"}))

	got := FilterByGenre(records, []string{"B"})
	assert.Equal(t, []dataset.Record{rec("z", "B", 3)}, got)
	assert.Equal(t, map[string]int{"B": 1}, GenreDistribution(got).Map())
}

func TestTitleOrder(t *testing.T) {
	records := []dataset.Record{
		rec("Short", "A", 20),
		rec("Long", "A", 150),
		rec("Series", "B", 20),
		rec("Series", "B", 40),
		rec("Tie", "C", 30),
		rec("Medium", "C", 90),
	}

	// Series averages 30 and ties with Tie; Series was seen first.
	want := []string{"Long", "Medium", "Series", "Tie", "Short"}
	assert.Equal(t, want, TitleOrder(records))
}

func TestTitleOrder_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var records []dataset.Record
	for i := 0; i < 60; i++ {
		records = append(records, rec(fmt.Sprintf("t%d", rng.Intn(25)), "G", rng.Intn(200)))
	}

	order := TitleOrder(records)
	means := MeanMinutes(records)

	// Permutation of distinct names.
	assert.Len(t, order, len(means))
	seen := make(map[string]bool)
	for _, name := range order {
		assert.False(t, seen[name], "duplicate %q", name)
		seen[name] = true
		_, ok := means[name]
		assert.True(t, ok, "unknown name %q", name)
	}

	// Non-increasing means, so the first is the maximum.
	for i := 1; i < len(order); i++ {
		assert.GreaterOrEqual(t, means[order[i-1]], means[order[i]])
	}
}

func TestTitleOrder_Empty(t *testing.T) {
	assert.Empty(t, TitleOrder(nil))
}

func TestGenres(t *testing.T) {
	records := []dataset.Record{rec("x", "B", 1), rec("y", "A", 2), rec("z", "A", 3)}
	assert.Equal(t, []string{"A", "B"}, Genres(records))
}
