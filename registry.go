package sheetsdb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MetaTitle is the required title of the meta spreadsheet.
const MetaTitle = "sheetsdb/meta"

var metaHeader = []any{"name", "spreadsheet_id", "columns", "num_rows", "last_modified"}

// MetaEntry is one row of the meta spreadsheet - the routing entry for one
// logical table. NumRows and LastModified are best-effort caches and may lag
// behind the backing sheet.
type MetaEntry struct {
	Name          string    `json:"name"`
	SpreadsheetID string    `json:"spreadsheet_id"`
	Columns       Schema    `json:"columns"`
	NumRows       int       `json:"num_rows"`
	LastModified  time.Time `json:"last_modified"`
}

// URL returns the browser link for the entry's backing spreadsheet.
func (e MetaEntry) URL() string {
	return SpreadsheetURL(e.SpreadsheetID)
}

// Registry is the routing table from logical table names to backing
// spreadsheets, persisted as rows of the meta spreadsheet. Every read goes
// back to the sheet - the meta spreadsheet may be shared between processes
// and stale routing would send writes to the wrong backing sheet.
type Registry struct {
	api           API
	spreadsheetID string
	log           *zap.Logger
}

func NewRegistry(api API, metaSpreadsheetID string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}

	return &Registry{
		api:           api,
		spreadsheetID: metaSpreadsheetID,
		log:           log,
	}
}

func (r *Registry) SpreadsheetID() string {
	return r.spreadsheetID
}

// Resolve looks up the meta entry for a table. It fails with ErrNotFound if
// the table has not been registered - it never creates a table implicitly.
func (r *Registry) Resolve(ctx context.Context, table string) (MetaEntry, error) {
	entries, _, err := r.load(ctx)
	if err != nil {
		return MetaEntry{}, err
	}

	for _, entry := range entries {
		if entry.Name == table {
			return entry, nil
		}
	}

	return MetaEntry{}, &NotFoundError{Table: table}
}

// Register adds a routing entry for a table. It fails with ErrConflict if
// the name is already registered. If the backing spreadsheet is still empty
// its header row is written from the schema.
func (r *Registry) Register(ctx context.Context, table, spreadsheetID string, schema Schema) (MetaEntry, error) {
	if table == "" {
		return MetaEntry{}, fmt.Errorf("table name is required")
	}

	if err := schema.Validate(); err != nil {
		return MetaEntry{}, err
	}

	entries, _, err := r.load(ctx)
	if err != nil {
		return MetaEntry{}, err
	}

	for _, entry := range entries {
		if entry.Name == table {
			return MetaEntry{}, &ConflictError{Table: table, Reason: "already registered"}
		}
	}

	if err := r.writeHeaderIfEmpty(ctx, spreadsheetID, schema); err != nil {
		return MetaEntry{}, errors.Wrapf(err, "initialising spreadsheet for table '%s'", table)
	}

	entry := MetaEntry{
		Name:          table,
		SpreadsheetID: spreadsheetID,
		Columns:       schema,
		NumRows:       0,
		LastModified:  time.Now().UTC(),
	}

	row, err := metaRow(entry)
	if err != nil {
		return MetaEntry{}, err
	}

	if len(entries) == 0 {
		// First entry - make sure the meta sheet has its header row.
		if err := r.api.UpdateRow(ctx, r.spreadsheetID, 0, metaHeader); err != nil {
			return MetaEntry{}, errors.Wrap(err, "writing meta spreadsheet header")
		}
	}

	if _, err := r.api.AppendRow(ctx, r.spreadsheetID, row); err != nil {
		return MetaEntry{}, errors.Wrapf(err, "registering table '%s'", table)
	}

	return entry, nil
}

// List returns all registered tables in the order they appear in the meta
// spreadsheet.
func (r *Registry) List(ctx context.Context) ([]MetaEntry, error) {
	entries, _, err := r.load(ctx)

	return entries, err
}

// UpdateStats rewrites the cached row count and last-modified timestamp of a
// table's meta entry.
func (r *Registry) UpdateStats(ctx context.Context, table string, numRows int, at time.Time) error {
	if numRows < 0 {
		return fmt.Errorf("invalid row count %d", numRows)
	}

	entries, positions, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i, entry := range entries {
		if entry.Name != table {
			continue
		}

		entry.NumRows = numRows
		entry.LastModified = at.UTC()

		row, err := metaRow(entry)
		if err != nil {
			return err
		}

		return r.api.UpdateRow(ctx, r.spreadsheetID, positions[i], row)
	}

	return &NotFoundError{Table: table}
}

// RefreshStats recounts the rows of every registered table (concurrently)
// and writes the counts back to the meta spreadsheet. The write-back is best
// effort - a failed update is logged and does not fail the refresh.
func (r *Registry) RefreshStats(ctx context.Context) ([]MetaEntry, error) {
	entries, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]int, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, entry := range entries {
		g.Go(func() error {
			count, err := countDataRows(gctx, r.api, entry.SpreadsheetID)
			if err != nil {
				return errors.Wrapf(err, "counting rows of table '%s'", entry.Name)
			}

			counts[i] = count

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range entries {
		if entries[i].NumRows == counts[i] {
			continue
		}

		entries[i].NumRows = counts[i]
		if err := r.UpdateStats(ctx, entries[i].Name, counts[i], now); err != nil {
			r.log.Warn("stats update failed", zap.String("table", entries[i].Name), zap.Error(err))
		} else {
			entries[i].LastModified = now
		}
	}

	return entries, nil
}

// load reads the whole meta spreadsheet. It returns the entries plus the
// sheet row index of each, for in-place stats updates. Malformed rows are
// skipped with a warning.
func (r *Registry) load(ctx context.Context) ([]MetaEntry, []int, error) {
	if r.spreadsheetID == "" {
		return nil, nil, ErrSetupRequired
	}

	entries := []MetaEntry{}
	positions := []int{}

	index := 0
	for {
		rows, err := r.api.ReadRows(ctx, r.spreadsheetID, index, selectPageSize)
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading meta spreadsheet")
		}

		for _, row := range rows {
			if index == 0 {
				// Header row - an empty meta sheet is a valid empty registry.
				index++
				continue
			}

			entry, err := parseMetaRow(row)
			if err != nil {
				r.log.Warn("skipping malformed meta row", zap.Int("row", index), zap.Error(err))
				index++
				continue
			}

			entries = append(entries, entry)
			positions = append(positions, index)
			index++
		}

		if len(rows) < selectPageSize {
			break
		}
	}

	return entries, positions, nil
}

func (r *Registry) writeHeaderIfEmpty(ctx context.Context, spreadsheetID string, schema Schema) error {
	rows, err := r.api.ReadRows(ctx, spreadsheetID, 0, 1)
	if err != nil {
		return err
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}

	header := make([]any, len(schema))
	for i, c := range schema {
		header[i] = c.Name
	}

	return r.api.UpdateRow(ctx, spreadsheetID, 0, header)
}

func metaRow(entry MetaEntry) ([]any, error) {
	columns, err := json.Marshal(entry.Columns)
	if err != nil {
		return nil, err
	}

	return []any{
		entry.Name,
		entry.SpreadsheetID,
		string(columns),
		strconv.Itoa(entry.NumRows),
		entry.LastModified.UTC().Format(time.RFC3339),
	}, nil
}

func parseMetaRow(row []any) (MetaEntry, error) {
	if len(row) < 3 {
		return MetaEntry{}, fmt.Errorf("meta row has %d cells, expected at least 3", len(row))
	}

	entry := MetaEntry{
		Name:          fmt.Sprintf("%v", row[0]),
		SpreadsheetID: fmt.Sprintf("%v", row[1]),
	}

	if entry.Name == "" || entry.SpreadsheetID == "" {
		return MetaEntry{}, fmt.Errorf("meta row missing name or spreadsheet ID")
	}

	if err := json.Unmarshal([]byte(fmt.Sprintf("%v", row[2])), &entry.Columns); err != nil {
		return MetaEntry{}, fmt.Errorf("invalid column definitions (%v)", err)
	}

	if err := entry.Columns.Validate(); err != nil {
		return MetaEntry{}, fmt.Errorf("invalid column definitions (%v)", err)
	}

	if len(row) > 3 {
		n, err := toNumber(row[3])
		if err != nil {
			return MetaEntry{}, fmt.Errorf("invalid row count (%v)", err)
		}
		entry.NumRows = int(n)
	}

	if len(row) > 4 {
		t, err := time.Parse(time.RFC3339, fmt.Sprintf("%v", row[4]))
		if err != nil {
			return MetaEntry{}, fmt.Errorf("invalid last-modified timestamp (%v)", err)
		}
		entry.LastModified = t
	}

	return entry, nil
}
