package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataset_Immutable(t *testing.T) {
	cols := []string{"Name", "genre", "Minutes", "Votes", "Rating"}
	recs := []Record{{Name: "A", Genre: "G", Minutes: 1}}
	ds := New(cols, recs)

	cols[0] = "changed"
	recs[0].Name = "changed"
	assert.Equal(t, "Name", ds.Columns()[0])
	assert.Equal(t, "A", ds.Records()[0].Name)

	got := ds.Records()
	got[0].Name = "mutated"
	assert.Equal(t, "A", ds.Records()[0].Name)

	gotCols := ds.Columns()
	gotCols[0] = "mutated"
	assert.Equal(t, "Name", ds.Columns()[0])
}

func TestDataset_Defaults(t *testing.T) {
	ds := New(nil, nil)
	assert.Equal(t, RequiredColumns, ds.Columns())
	assert.Equal(t, 0, ds.Len())

	var nilDS *Dataset
	assert.Equal(t, 0, nilDS.Len())
}
