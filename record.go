package sheetsdb

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

type ColumnType string

const (
	TypeString   ColumnType = "string"
	TypeNumber   ColumnType = "number"
	TypeDatetime ColumnType = "datetime"
	TypeJSON     ColumnType = "json"
)

// Column is one column definition of a table schema.
type Column struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Schema is the ordered column list of a table. It mirrors the header row of
// the backing spreadsheet - column order in the schema is column order in
// the sheet.
type Schema []Column

// Record is one logical row, keyed by column name. Records are transient:
// they are constructed on read and translated back into positional rows on
// write.
type Record map[string]any

func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}

	return names
}

// Index returns the position of a named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}

	return -1
}

func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no columns")
	}

	seen := map[string]bool{}
	for _, c := range s {
		if c.Name == "" {
			return fmt.Errorf("schema has an unnamed column")
		}

		if seen[c.Name] {
			return fmt.Errorf("duplicate column name '%s'", c.Name)
		}

		seen[c.Name] = true

		switch c.Type {
		case TypeString, TypeNumber, TypeDatetime, TypeJSON:
		default:
			return fmt.Errorf("column '%s' has unrecognised type '%s'", c.Name, c.Type)
		}
	}

	return nil
}

// Record maps a positional row onto the schema, converting each cell to its
// column type. Rows shorter than the header are padded with nils. Rows
// longer than the header are rejected (the caller reports them as schema
// mismatches).
func (s Schema) Record(row []any) (Record, error) {
	if len(row) > len(s) {
		return nil, fmt.Errorf("row has %d cells, header has %d", len(row), len(s))
	}

	record := Record{}
	for i, c := range s {
		var raw any
		if i < len(row) {
			raw = row[i]
		}

		v, err := convert(raw, c.Type)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %v", c.Name, err)
		}

		record[c.Name] = v
	}

	return record, nil
}

// Row translates a record back into a positional row. Column names must all
// be valid; columns missing from the record become empty cells.
func (s Schema) Row(record Record) ([]any, error) {
	for name := range record {
		if s.Index(name) < 0 {
			return nil, fmt.Errorf("invalid column name '%s'", name)
		}
	}

	row := make([]any, len(s))
	for i, c := range s {
		v, ok := record[c.Name]
		if !ok || v == nil {
			row[i] = ""
			continue
		}

		cell, err := cell(v, c.Type)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %v", c.Name, err)
		}

		row[i] = cell
	}

	return row, nil
}

// convert coerces a raw cell value to its column type. Empty cells become
// nil regardless of type.
func convert(raw any, t ColumnType) (any, error) {
	if raw == nil || raw == "" {
		return nil, nil
	}

	switch t {
	case TypeString, TypeDatetime:
		return fmt.Sprintf("%v", raw), nil

	case TypeNumber:
		return toNumber(raw)

	case TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(fmt.Sprintf("%v", raw)), &v); err != nil {
			return nil, err
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unrecognised column type '%s'", t)
	}
}

// cell renders a typed value as a spreadsheet cell.
func cell(v any, t ColumnType) (any, error) {
	switch t {
	case TypeString, TypeDatetime:
		if ts, ok := v.(time.Time); ok {
			return ts.UTC().Format(time.RFC3339), nil
		}
		return fmt.Sprintf("%v", v), nil

	case TypeNumber:
		return toNumber(v)

	case TypeJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil

	default:
		return nil, fmt.Errorf("unrecognised column type '%s'", t)
	}
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%v is not a number", v)
	}
}
