package sheetsdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		ok     bool
	}{
		{"valid", Schema{{"name", TypeString}, {"age", TypeNumber}}, true},
		{"all types", Schema{{"a", TypeString}, {"b", TypeNumber}, {"c", TypeDatetime}, {"d", TypeJSON}}, true},
		{"empty", Schema{}, false},
		{"unnamed column", Schema{{"", TypeString}}, false},
		{"duplicate column", Schema{{"name", TypeString}, {"name", TypeNumber}}, false},
		{"unknown type", Schema{{"name", "text"}}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.schema.Validate()
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSchemaRecord(t *testing.T) {
	schema := Schema{
		{"name", TypeString},
		{"age", TypeNumber},
		{"joined", TypeDatetime},
		{"tags", TypeJSON},
	}

	record, err := schema.Record([]any{"Ann", "30", "2024-01-02T12:34:56Z", `["a","b"]`})
	require.NoError(t, err)

	assert.Equal(t, "Ann", record["name"])
	assert.Equal(t, 30.0, record["age"])
	assert.Equal(t, "2024-01-02T12:34:56Z", record["joined"])
	assert.Equal(t, []any{"a", "b"}, record["tags"])
}

func TestSchemaRecordPadsShortRows(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}}

	record, err := schema.Record([]any{"Ann"})
	require.NoError(t, err)

	assert.Equal(t, "Ann", record["name"])
	assert.Nil(t, record["age"])
}

func TestSchemaRecordRejectsLongRows(t *testing.T) {
	schema := Schema{{"name", TypeString}}

	_, err := schema.Record([]any{"Ann", "30"})

	assert.Error(t, err)
}

func TestSchemaRecordRejectsBadCells(t *testing.T) {
	schema := Schema{{"age", TypeNumber}}

	_, err := schema.Record([]any{"thirty"})

	assert.Error(t, err)
}

func TestSchemaRecordEmptyCellsAreNil(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}, {"tags", TypeJSON}}

	record, err := schema.Record([]any{"", "", ""})
	require.NoError(t, err)

	assert.Nil(t, record["name"])
	assert.Nil(t, record["age"])
	assert.Nil(t, record["tags"])
}

func TestSchemaRow(t *testing.T) {
	schema := Schema{
		{"name", TypeString},
		{"age", TypeNumber},
		{"joined", TypeDatetime},
		{"tags", TypeJSON},
	}

	row, err := schema.Row(Record{
		"name":   "Ann",
		"age":    30,
		"joined": time.Date(2024, time.January, 2, 12, 34, 56, 0, time.UTC),
		"tags":   []string{"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"Ann", 30.0, "2024-01-02T12:34:56Z", `["a","b"]`}, row)
}

func TestSchemaRowMissingColumnsAreBlank(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}}

	row, err := schema.Row(Record{"name": "Ann"})
	require.NoError(t, err)

	assert.Equal(t, []any{"Ann", ""}, row)
}

func TestSchemaRowRejectsUnknownColumns(t *testing.T) {
	schema := Schema{{"name", TypeString}}

	_, err := schema.Row(Record{"surname": "Smith"})

	assert.Error(t, err)
}

func TestSchemaRowRoundTrip(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}, {"tags", TypeJSON}}

	row, err := schema.Row(Record{"name": "Ann", "age": 30, "tags": map[string]any{"x": 1.0}})
	require.NoError(t, err)

	record, err := schema.Record(row)
	require.NoError(t, err)

	assert.Equal(t, Record{"name": "Ann", "age": 30.0, "tags": map[string]any{"x": 1.0}}, record)
}

func TestSchemaIndex(t *testing.T) {
	schema := Schema{{"name", TypeString}, {"age", TypeNumber}}

	assert.Equal(t, 0, schema.Index("name"))
	assert.Equal(t, 1, schema.Index("age"))
	assert.Equal(t, -1, schema.Index("surname"))
}
