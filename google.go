package sheetsdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheets implements API on the Google Sheets v4 service. Each table
// spreadsheet is expected to hold its data in the first sheet (sheetId 0).
type GoogleSheets struct {
	service *sheets.Service
}

func NewGoogleSheets(service *sheets.Service) *GoogleSheets {
	return &GoogleSheets{
		service: service,
	}
}

// NewGoogleSheetsClient builds the Sheets service from an authorized HTTP
// client (as produced by the oauth2 flow).
func NewGoogleSheetsClient(ctx context.Context, client *http.Client) (*GoogleSheets, error) {
	service, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%v)", err)
	}

	return NewGoogleSheets(service), nil
}

func (g *GoogleSheets) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error) {
	spreadsheet, err := g.service.Spreadsheets.Get(spreadsheetID).IncludeGridData(false).Context(ctx).Do()
	if err != nil {
		return nil, apiError(err)
	}

	return &SpreadsheetInfo{
		ID:    spreadsheet.SpreadsheetId,
		Title: spreadsheet.Properties.Title,
		URL:   spreadsheet.SpreadsheetUrl,
	}, nil
}

func (g *GoogleSheets) CreateSpreadsheet(ctx context.Context, title string) (string, error) {
	rq := sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:      title,
			Locale:     "en",
			AutoRecalc: "ON_CHANGE",
			TimeZone:   "UTC",
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					SheetId: 0,
					Title:   title,
					Index:   0,
				},
			},
		},
	}

	spreadsheet, err := g.service.Spreadsheets.Create(&rq).Context(ctx).Do()
	if err != nil {
		return "", apiError(err)
	}

	return spreadsheet.SpreadsheetId, nil
}

func (g *GoogleSheets) ReadRows(ctx context.Context, spreadsheetID string, start, count int) ([][]any, error) {
	if start < 0 || count < 1 {
		return nil, fmt.Errorf("invalid row range %d+%d", start, count)
	}

	area := fmt.Sprintf("%d:%d", start+1, start+count)

	response, err := g.service.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return nil, apiError(err)
	}

	return response.Values, nil
}

func (g *GoogleSheets) AppendRow(ctx context.Context, spreadsheetID string, row []any) (int, error) {
	vr := sheets.ValueRange{
		MajorDimension: "ROWS",
		Range:          "A:A",
		Values:         [][]any{clean(row)},
	}

	response, err := g.service.Spreadsheets.Values.
		Append(spreadsheetID, "A:A", &vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		IncludeValuesInResponse(false).
		Context(ctx).
		Do()
	if err != nil {
		return 0, apiError(err)
	}

	if response.Updates == nil {
		return 0, fmt.Errorf("append response missing updated range")
	}

	index, err := rowFromRange(response.Updates.UpdatedRange)
	if err != nil {
		return 0, err
	}

	return index, nil
}

func (g *GoogleSheets) UpdateRow(ctx context.Context, spreadsheetID string, index int, row []any) error {
	area := fmt.Sprintf("%s:%s", a1(index, 0), a1(index, len(row)-1))

	vr := sheets.ValueRange{
		MajorDimension: "ROWS",
		Range:          area,
		Values:         [][]any{clean(row)},
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption:        "RAW",
		IncludeValuesInResponse: false,
		Data:                    []*sheets.ValueRange{&vr},
	}

	if _, err := g.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return apiError(err)
	}

	return nil
}

func (g *GoogleSheets) DeleteRows(ctx context.Context, spreadsheetID string, indexes []int) error {
	if len(indexes) == 0 {
		return nil
	}

	// Deletes are grouped into contiguous runs and applied bottom-up so that
	// earlier requests in the batch do not shift the rows of later ones.
	requests := []*sheets.Request{}
	for _, run := range runs(indexes) {
		requests = append(requests, &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "ROWS",
					StartIndex: int64(run[0]),
					EndIndex:   int64(run[1] + 1),
				},
			},
		})
	}

	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests:                     requests,
		IncludeSpreadsheetInResponse: false,
	}

	if _, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return apiError(err)
	}

	return nil
}

// runs splits a set of row indexes into contiguous [first,last] runs,
// ordered bottom-up.
func runs(indexes []int) [][2]int {
	if len(indexes) == 0 {
		return nil
	}

	unique := map[int]bool{}
	for _, ix := range indexes {
		unique[ix] = true
	}

	sorted := make([]int, 0, len(unique))
	for ix := range unique {
		sorted = append(sorted, ix)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	list := [][2]int{}
	run := [2]int{sorted[0], sorted[0]}
	for _, ix := range sorted[1:] {
		if ix == run[0]-1 {
			run[0] = ix
		} else {
			list = append(list, run)
			run = [2]int{ix, ix}
		}
	}

	return append(list, run)
}

// a1 converts a 0-based row/column index pair to A1 notation.
func a1(row, col int) string {
	if row < 0 || col < 0 {
		panic(fmt.Sprintf("invalid cell index %d,%d", row, col))
	}

	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	column := ""
	if first := col/len(letters) - 1; first >= 0 {
		column = string(letters[first])
	}
	column += string(letters[col%len(letters)])

	return fmt.Sprintf("%s%d", column, row+1)
}

var updatedRange = regexp.MustCompile(`![A-Z]+([0-9]+)(?::[A-Z]+[0-9]+)?$`)

// rowFromRange extracts the 0-based row index from an updated range like
// 'sheetsdb/users'!A5:C5.
func rowFromRange(area string) (int, error) {
	match := updatedRange.FindStringSubmatch(area)
	if len(match) < 2 {
		return 0, fmt.Errorf("unexpected updated range '%s'", area)
	}

	row, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, fmt.Errorf("unexpected updated range '%s'", area)
	}

	return row - 1, nil
}

func clean(row []any) []any {
	cleaned := make([]any, len(row))
	for i, v := range row {
		if v == nil {
			cleaned[i] = ""
		} else {
			cleaned[i] = v
		}
	}

	return cleaned
}

// apiError maps backend failures onto the SDK error kinds.
func apiError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 404 {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return err
}
