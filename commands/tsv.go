package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/sheetsdb/sheetsdb"
)

// tableToTSV streams a select cursor to a TSV file: schema names as the
// header, one line per record, cells rendered by column type.
func tableToTSV(f io.Writer, schema sheetsdb.Schema, rows *sheetsdb.Rows) (int, error) {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(schema.Names()); err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		record := rows.Record()

		line := make([]string, len(schema))
		for i, column := range schema {
			cell, err := formatCell(record[column.Name], column.Type)
			if err != nil {
				return count, fmt.Errorf("row %d column '%s': %v", rows.Position(), column.Name, err)
			}

			line[i] = cell
		}

		if err := w.Write(line); err != nil {
			return count, err
		}

		count++
	}

	w.Flush()

	if err := rows.Err(); err != nil {
		return count, err
	}

	return count, w.Error()
}

// tsvToRecords parses a TSV file into records. The header line names the
// columns (a subset of the schema, in any order); cells are converted to
// their column types.
func tsvToRecords(f io.Reader, schema sheetsdb.Schema) ([]sheetsdb.Record, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true

	lines, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	// ... header
	columns := make([]sheetsdb.Column, len(lines[0]))
	for i, name := range lines[0] {
		name = strings.TrimSpace(name)

		ix := schema.Index(name)
		if ix < 0 {
			return nil, fmt.Errorf("unrecognised column '%s' in TSV header", name)
		}

		columns[i] = schema[ix]
	}

	// ... records
	records := make([]sheetsdb.Record, 0, len(lines)-1)
	for lineno, line := range lines[1:] {
		if len(line) != len(columns) {
			return nil, fmt.Errorf("line %d has %d fields, header has %d", lineno+2, len(line), len(columns))
		}

		record := sheetsdb.Record{}
		for i, cell := range line {
			v, err := parseCell(cell, columns[i].Type)
			if err != nil {
				return nil, fmt.Errorf("line %d column '%s': %v", lineno+2, columns[i].Name, err)
			}

			if v != nil {
				record[columns[i].Name] = v
			}
		}

		records = append(records, record)
	}

	return records, nil
}

func formatCell(v any, t sheetsdb.ColumnType) (string, error) {
	if v == nil {
		return "", nil
	}

	switch t {
	case sheetsdb.TypeNumber:
		return strconv.FormatFloat(v.(float64), 'f', -1, 64), nil

	case sheetsdb.TypeJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil

	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func parseCell(cell string, t sheetsdb.ColumnType) (any, error) {
	if cell == "" {
		return nil, nil
	}

	switch t {
	case sheetsdb.TypeNumber:
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a number", cell)
		}
		return f, nil

	case sheetsdb.TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(cell), &v); err != nil {
			return nil, err
		}
		return v, nil

	default:
		return cell, nil
	}
}
