package sheetsdb

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Table is the accessor for one logical table. It is bound to the backing
// spreadsheet resolved through the registry at the time it was obtained and
// holds no row data of its own - every operation goes back to the sheet.
type Table struct {
	api      API
	registry *Registry
	name     string
	id       string
	schema   Schema
	log      *zap.Logger
}

// match is a row matched by a predicate scan: its data position and the raw
// cells observed at that position.
type match struct {
	position int
	row      []any
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) SpreadsheetID() string {
	return t.id
}

func (t *Table) Schema() Schema {
	return t.schema
}

// Select streams the rows matching the conditions.
func (t *Table) Select(ctx context.Context, conds ...Where) (*Rows, error) {
	if err := validateWhere(t.name, t.schema, conds); err != nil {
		return nil, err
	}

	return &Rows{
		ctx:    ctx,
		api:    t.api,
		table:  t.name,
		id:     t.id,
		schema: t.schema,
		conds:  conds,
		log:    t.log,
	}, nil
}

// Insert appends one record and returns its row position. The new row count
// is reported to the registry best-effort.
func (t *Table) Insert(ctx context.Context, record Record) (int, error) {
	row, err := t.schema.Row(record)
	if err != nil {
		return 0, err
	}

	index, err := t.api.AppendRow(ctx, t.id, row)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting into table '%s'", t.name)
	}

	position := index - 1

	// An append lands below all existing rows, so the landing index is also
	// the new data row count.
	t.reportStats(ctx, index)

	return position, nil
}

// Update applies the patch to every row matching the conditions and returns
// the number of rows updated.
//
// Row positions are recomputed defensively: each matched row is re-read
// immediately before it is written, and if it moved the sheet is rescanned
// once for it. A row that disappeared between match and mutate fails the
// operation with ErrConflict.
func (t *Table) Update(ctx context.Context, patch Record, conds ...Where) (int, error) {
	if len(patch) == 0 {
		return 0, fmt.Errorf("nothing to update")
	}

	if _, err := t.schema.Row(patch); err != nil {
		return 0, err
	}

	matches, total, err := t.scan(ctx, conds)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, m := range matches {
		position, err := t.recheck(ctx, m)
		if err != nil {
			return updated, err
		}

		row, err := t.patched(m.row, patch)
		if err != nil {
			return updated, err
		}

		if err := t.api.UpdateRow(ctx, t.id, position+1, row); err != nil {
			return updated, errors.Wrapf(err, "updating table '%s'", t.name)
		}

		updated++
	}

	if updated > 0 {
		t.reportStats(ctx, total)
	}

	return updated, nil
}

// Delete removes every row matching the conditions and returns the number of
// rows deleted. The same re-check discipline as Update applies; the deletes
// themselves go to the backend as a single batch.
func (t *Table) Delete(ctx context.Context, conds ...Where) (int, error) {
	matches, total, err := t.scan(ctx, conds)
	if err != nil {
		return 0, err
	}

	if len(matches) == 0 {
		return 0, nil
	}

	indexes := make([]int, 0, len(matches))
	for _, m := range matches {
		position, err := t.recheck(ctx, m)
		if err != nil {
			return 0, err
		}

		indexes = append(indexes, position+1)
	}

	if err := t.api.DeleteRows(ctx, t.id, indexes); err != nil {
		return 0, errors.Wrapf(err, "deleting from table '%s'", t.name)
	}

	t.reportStats(ctx, total-len(indexes))

	return len(indexes), nil
}

// Count scans the table and returns the number of data rows.
func (t *Table) Count(ctx context.Context) (int, error) {
	return countDataRows(ctx, t.api, t.id)
}

// scan collects the positions and raw cells of all rows matching the
// conditions, plus the total number of data rows seen.
func (t *Table) scan(ctx context.Context, conds []Where) ([]match, int, error) {
	if err := validateWhere(t.name, t.schema, conds); err != nil {
		return nil, 0, err
	}

	matches := []match{}
	total := 0

	index := 1
	for {
		page, err := t.api.ReadRows(ctx, t.id, index, selectPageSize)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "scanning table '%s'", t.name)
		}

		for i, row := range page {
			if len(row) == 0 {
				continue
			}

			total++

			if len(row) > len(t.schema) {
				continue
			}

			record, err := t.schema.Record(row)
			if err != nil {
				continue
			}

			if matchesAll(record, t.schema, conds) {
				matches = append(matches, match{
					position: index + i - 1,
					row:      row,
				})
			}
		}

		if len(page) < selectPageSize {
			break
		}

		index += len(page)
	}

	return matches, total, nil
}

// recheck re-reads a matched row at its observed position and verifies the
// cells are still those seen during the scan. If the row shifted it is
// located again with a single rescan; if it is gone the caller gets a
// ConflictError rather than a silent mutation of the wrong row.
func (t *Table) recheck(ctx context.Context, m match) (int, error) {
	rows, err := t.api.ReadRows(ctx, t.id, m.position+1, 1)
	if err != nil {
		return 0, errors.Wrapf(err, "re-checking row %d of table '%s'", m.position, t.name)
	}

	if len(rows) == 1 && sameRow(rows[0], m.row) {
		return m.position, nil
	}

	// Row moved - rescan once for it.
	index := 1
	for {
		page, err := t.api.ReadRows(ctx, t.id, index, selectPageSize)
		if err != nil {
			return 0, errors.Wrapf(err, "re-checking row of table '%s'", t.name)
		}

		for i, row := range page {
			if sameRow(row, m.row) {
				return index + i - 1, nil
			}
		}

		if len(page) < selectPageSize {
			break
		}

		index += len(page)
	}

	return 0, &ConflictError{Table: t.name, Reason: "row was modified or deleted by a concurrent writer"}
}

func (t *Table) patched(row []any, patch Record) ([]any, error) {
	record, err := t.schema.Record(row)
	if err != nil {
		return nil, err
	}

	for name, v := range patch {
		record[name] = v
	}

	return t.schema.Row(record)
}

// reportStats updates the cached statistics in the meta spreadsheet. Best
// effort only - a failure here never rolls back the data mutation.
func (t *Table) reportStats(ctx context.Context, numRows int) {
	if err := t.registry.UpdateStats(ctx, t.name, numRows, time.Now()); err != nil {
		t.log.Warn("stats update failed", zap.String("table", t.name), zap.Error(err))
	}
}

func sameRow(a, b []any) bool {
	for len(a) > 0 && a[len(a)-1] == "" {
		a = a[:len(a)-1]
	}

	for len(b) > 0 && b[len(b)-1] == "" {
		b = b[:len(b)-1]
	}

	return reflect.DeepEqual(a, b)
}

// countDataRows pages through a spreadsheet and counts its non-empty rows
// below the header.
func countDataRows(ctx context.Context, api API, spreadsheetID string) (int, error) {
	count := 0

	index := 1
	for {
		page, err := api.ReadRows(ctx, spreadsheetID, index, selectPageSize)
		if err != nil {
			return 0, err
		}

		for _, row := range page {
			if len(row) > 0 {
				count++
			}
		}

		if len(page) < selectPageSize {
			return count, nil
		}

		index += len(page)
	}
}
