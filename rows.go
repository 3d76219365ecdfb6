package sheetsdb

import (
	"context"

	"go.uber.org/zap"
)

// selectPageSize is the number of sheet rows fetched per round trip while
// streaming a select.
const selectPageSize = 200

// Rows is a streaming cursor over the rows of a select. It fetches the
// backing sheet a page at a time and evaluates the conditions incrementally,
// so a match near the top of a large sheet never loads the whole sheet.
//
// Malformed rows (more cells than the header, or cells that do not convert
// to their column type) are never yielded - they are skipped and reported as
// warnings.
//
// The context passed to Select governs all fetches made by the cursor.
type Rows struct {
	ctx    context.Context
	api    API
	table  string
	id     string
	schema Schema
	conds  []Where
	log    *zap.Logger

	page  [][]any
	index int
	next  int
	done  bool

	record   Record
	position int
	scanned  int
	skipped  int
	err      error
}

// Next advances to the next matching row. It returns false when the rows are
// exhausted or an error occurred; check Err afterwards.
func (rs *Rows) Next() bool {
	if rs.err != nil {
		return false
	}

	for {
		if rs.index >= len(rs.page) {
			if rs.done {
				return false
			}

			if err := rs.fetch(); err != nil {
				rs.err = err
				return false
			}

			if len(rs.page) == 0 {
				return false
			}
		}

		row := rs.page[rs.index]
		position := rs.next - len(rs.page) + rs.index - 1
		rs.index++

		if len(row) == 0 {
			continue
		}

		rs.scanned++

		if len(row) > len(rs.schema) {
			rs.skipped++
			rs.log.Warn("skipping malformed row",
				zap.String("table", rs.table),
				zap.Int("row", position),
				zap.Error(&SchemaMismatchError{Table: rs.table, Row: position, Want: len(rs.schema), Got: len(row)}))
			continue
		}

		record, err := rs.schema.Record(row)
		if err != nil {
			rs.skipped++
			rs.log.Warn("skipping malformed row",
				zap.String("table", rs.table),
				zap.Int("row", position),
				zap.Error(err))
			continue
		}

		if !matchesAll(record, rs.schema, rs.conds) {
			continue
		}

		rs.record = record
		rs.position = position

		return true
	}
}

// Record returns the current row. Only valid after a successful Next.
func (rs *Rows) Record() Record {
	return rs.record
}

// Position returns the current row's 0-based data position (the row directly
// below the header is position 0). Positions are only valid at the moment
// they are observed - a concurrent writer may shift them.
func (rs *Rows) Position() int {
	return rs.position
}

// Skipped returns the number of malformed rows passed over so far.
func (rs *Rows) Skipped() int {
	return rs.skipped
}

func (rs *Rows) Err() error {
	return rs.err
}

// Close releases the cursor. Further calls to Next return false.
func (rs *Rows) Close() {
	rs.done = true
	rs.page = nil
	rs.index = 0
}

func (rs *Rows) fetch() error {
	if rs.next == 0 {
		rs.next = 1 // skip the header row
	}

	page, err := rs.api.ReadRows(rs.ctx, rs.id, rs.next, selectPageSize)
	if err != nil {
		return err
	}

	rs.page = page
	rs.index = 0
	rs.next += len(page)

	if len(page) < selectPageSize {
		rs.done = true
	}

	return nil
}

// All drains the cursor into a slice. Convenience for callers that want the
// whole result set anyway.
func (rs *Rows) All() ([]Record, error) {
	defer rs.Close()

	records := []Record{}
	for rs.Next() {
		records = append(records, rs.Record())
	}

	return records, rs.Err()
}
