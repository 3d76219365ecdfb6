package sheetsdb

import (
	"context"
	"fmt"
)

// SpreadsheetInfo is the subset of spreadsheet metadata the SDK cares about.
type SpreadsheetInfo struct {
	ID    string
	Title string
	URL   string
}

// API is the row-level contract with the spreadsheet backend. Row indexes
// are 0-based sheet rows - the header row of a table is row 0 and data rows
// start at row 1.
//
// All methods honour the context deadline; an expired deadline surfaces as
// ErrTimeout.
type API interface {
	// GetSpreadsheet fetches spreadsheet metadata (no cell data).
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error)

	// CreateSpreadsheet creates a spreadsheet with a single sheet and
	// returns its ID.
	CreateSpreadsheet(ctx context.Context, title string) (string, error)

	// ReadRows reads a window of up to count rows starting at row start.
	// A short (or empty) result means the end of the data.
	ReadRows(ctx context.Context, spreadsheetID string, start, count int) ([][]any, error)

	// AppendRow appends a row below the existing data and returns the
	// 0-based row index it landed at.
	AppendRow(ctx context.Context, spreadsheetID string, row []any) (int, error)

	// UpdateRow overwrites the cells of one row, starting at column 0.
	UpdateRow(ctx context.Context, spreadsheetID string, index int, row []any) error

	// DeleteRows removes the rows at the given indexes in one batch.
	DeleteRows(ctx context.Context, spreadsheetID string, indexes []int) error
}

// SpreadsheetURL returns the browser link for a spreadsheet ID.
func SpreadsheetURL(spreadsheetID string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", spreadsheetID)
}
