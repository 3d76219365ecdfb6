// Package sheetsdbtest provides an in-memory spreadsheet backend for tests.
package sheetsdbtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/sheetsdb/sheetsdb"
)

type Sheet struct {
	Title string
	Rows  [][]any
}

// Fake implements sheetsdb.API over in-memory sheets. Tests can reach into
// Sheets directly to simulate concurrent writers, and set Err to force the
// next call to fail.
type Fake struct {
	mu     sync.Mutex
	Sheets map[string]*Sheet
	Err    error
	serial int
}

func New() *Fake {
	return &Fake{
		Sheets: map[string]*Sheet{},
	}
}

// Add creates a sheet with a fixed ID and initial rows.
func (f *Fake) Add(spreadsheetID, title string, rows ...[]any) *Sheet {
	f.mu.Lock()
	defer f.mu.Unlock()

	sheet := Sheet{
		Title: title,
		Rows:  rows,
	}

	f.Sheets[spreadsheetID] = &sheet

	return &sheet
}

func (f *Fake) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if err == context.DeadlineExceeded {
			return fmt.Errorf("%w: %v", sheetsdb.ErrTimeout, err)
		}
		return err
	}

	if f.Err != nil {
		err := f.Err
		f.Err = nil
		return err
	}

	return nil
}

func (f *Fake) sheet(spreadsheetID string) (*Sheet, error) {
	sheet, ok := f.Sheets[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("%w: spreadsheet %s", sheetsdb.ErrNotFound, spreadsheetID)
	}

	return sheet, nil
}

func (f *Fake) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*sheetsdb.SpreadsheetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(ctx); err != nil {
		return nil, err
	}

	sheet, err := f.sheet(spreadsheetID)
	if err != nil {
		return nil, err
	}

	return &sheetsdb.SpreadsheetInfo{
		ID:    spreadsheetID,
		Title: sheet.Title,
		URL:   sheetsdb.SpreadsheetURL(spreadsheetID),
	}, nil
}

func (f *Fake) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(ctx); err != nil {
		return "", err
	}

	f.serial++
	spreadsheetID := fmt.Sprintf("fake-%d", f.serial)

	f.Sheets[spreadsheetID] = &Sheet{
		Title: title,
	}

	return spreadsheetID, nil
}

func (f *Fake) ReadRows(ctx context.Context, spreadsheetID string, start, count int) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(ctx); err != nil {
		return nil, err
	}

	sheet, err := f.sheet(spreadsheetID)
	if err != nil {
		return nil, err
	}

	if start >= len(sheet.Rows) {
		return nil, nil
	}

	end := start + count
	if end > len(sheet.Rows) {
		end = len(sheet.Rows)
	}

	window := make([][]any, 0, end-start)
	for _, row := range sheet.Rows[start:end] {
		window = append(window, append([]any{}, row...))
	}

	return window, nil
}

func (f *Fake) AppendRow(ctx context.Context, spreadsheetID string, row []any) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(ctx); err != nil {
		return 0, err
	}

	sheet, err := f.sheet(spreadsheetID)
	if err != nil {
		return 0, err
	}

	sheet.Rows = append(sheet.Rows, append([]any{}, row...))

	return len(sheet.Rows) - 1, nil
}

func (f *Fake) UpdateRow(ctx context.Context, spreadsheetID string, index int, row []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(ctx); err != nil {
		return err
	}

	sheet, err := f.sheet(spreadsheetID)
	if err != nil {
		return err
	}

	for len(sheet.Rows) <= index {
		sheet.Rows = append(sheet.Rows, []any{})
	}

	sheet.Rows[index] = append([]any{}, row...)

	return nil
}

func (f *Fake) DeleteRows(ctx context.Context, spreadsheetID string, indexes []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(ctx); err != nil {
		return err
	}

	sheet, err := f.sheet(spreadsheetID)
	if err != nil {
		return err
	}

	doomed := map[int]bool{}
	for _, ix := range indexes {
		doomed[ix] = true
	}

	rows := make([][]any, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		if !doomed[i] {
			rows = append(rows, row)
		}
	}

	sheet.Rows = rows

	return nil
}
