package sheetsdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereValidate(t *testing.T) {
	schema := Schema{
		{"name", TypeString},
		{"age", TypeNumber},
		{"joined", TypeDatetime},
		{"tags", TypeJSON},
	}

	tests := []struct {
		name  string
		where Where
		ok    bool
	}{
		{"eq string", Where{"name", Eq, "Ann"}, true},
		{"eq number", Where{"age", Eq, 30}, true},
		{"eq datetime", Where{"joined", Eq, "2024-01-02T12:34:56Z"}, true},
		{"lt number", Where{"age", Lt, 30}, true},
		{"le number", Where{"age", Le, 30}, true},
		{"gt number", Where{"age", Gt, 30}, true},
		{"ge number", Where{"age", Ge, 30}, true},
		{"lt string", Where{"name", Lt, "Ann"}, false},
		{"gt datetime", Where{"joined", Gt, "2024-01-02T12:34:56Z"}, false},
		{"eq json", Where{"tags", Eq, "[]"}, false},
		{"unknown column", Where{"surname", Eq, "Smith"}, false},
		{"unknown comparator", Where{"age", Op("!="), 30}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.where.validate("users", schema)
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestWhereMatches(t *testing.T) {
	schema := Schema{
		{"name", TypeString},
		{"age", TypeNumber},
	}

	record := Record{
		"name": "Ann",
		"age":  30.0,
	}

	tests := []struct {
		name    string
		where   Where
		matches bool
	}{
		{"eq string", Where{"name", Eq, "Ann"}, true},
		{"eq string miss", Where{"name", Eq, "Bob"}, false},
		{"eq number", Where{"age", Eq, 30}, true},
		{"eq number from string", Where{"age", Eq, "30"}, true},
		{"lt", Where{"age", Lt, 31}, true},
		{"lt miss", Where{"age", Lt, 30}, false},
		{"le", Where{"age", Le, 30}, true},
		{"gt", Where{"age", Gt, 29}, true},
		{"gt miss", Where{"age", Gt, 30}, false},
		{"ge", Where{"age", Ge, 30}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.matches, test.where.matches(record, schema))
		})
	}
}

func TestWhereNeverMatchesEmptyCells(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}}
	record := Record{"name": "Ann", "age": nil}

	assert.False(t, Where{"age", Eq, 30}.matches(record, schema))
	assert.False(t, Where{"age", Lt, 30}.matches(record, schema))
}

func TestMatchesAll(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}}
	record := Record{"name": "Ann", "age": 30.0}

	assert.True(t, matchesAll(record, schema, nil))
	assert.True(t, matchesAll(record, schema, []Where{{"name", Eq, "Ann"}, {"age", Ge, 30}}))
	assert.False(t, matchesAll(record, schema, []Where{{"name", Eq, "Ann"}, {"age", Gt, 30}}))
}
