package sheetsdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestA1(t *testing.T) {
	tests := []struct {
		row int
		col int
		a1  string
	}{
		{0, 0, "A1"},
		{0, 1, "B1"},
		{4, 2, "C5"},
		{9, 25, "Z10"},
		{9, 26, "AA10"},
		{9, 27, "AB10"},
		{9, 51, "AZ10"},
		{9, 52, "BA10"},
	}

	for _, test := range tests {
		assert.Equal(t, test.a1, a1(test.row, test.col))
	}
}

func TestRuns(t *testing.T) {
	tests := []struct {
		name    string
		indexes []int
		runs    [][2]int
	}{
		{"single", []int{3}, [][2]int{{3, 3}}},
		{"contiguous", []int{3, 4, 5}, [][2]int{{3, 5}}},
		{"disjoint", []int{1, 3, 4, 7}, [][2]int{{7, 7}, {3, 4}, {1, 1}}},
		{"unsorted with duplicates", []int{5, 1, 4, 5, 2}, [][2]int{{4, 5}, {1, 2}}},
		{"empty", nil, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.runs, runs(test.indexes))
		})
	}
}

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		area string
		row  int
	}{
		{"'sheetsdb/users'!A5:C5", 4},
		{"'sheetsdb/users'!A2", 1},
		{"Sheet1!B10:D10", 9},
	}

	for _, test := range tests {
		row, err := rowFromRange(test.area)
		require.NoError(t, err)
		assert.Equal(t, test.row, row)
	}

	if _, err := rowFromRange("garbage"); err == nil {
		t.Errorf("expected error for unparseable range")
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, []any{"Ann", "", 30.0}, clean([]any{"Ann", nil, 30.0}))
}
