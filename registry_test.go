package sheetsdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sheetsdb/sheetsdb"
	"github.com/sheetsdb/sheetsdb/sheetsdbtest"
)

var users = sheetsdb.Schema{
	{Name: "name", Type: sheetsdb.TypeString},
	{Name: "age", Type: sheetsdb.TypeNumber},
}

const usersColumns = `[{"name":"name","type":"string"},{"name":"age","type":"number"}]`

func metaSheet(fake *sheetsdbtest.Fake, rows ...[]any) {
	all := append([][]any{{"name", "spreadsheet_id", "columns", "num_rows", "last_modified"}}, rows...)

	fake.Add("meta", sheetsdb.MetaTitle, all...)
}

func TestRegistryResolve(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake, []any{"users", "sheet-1", usersColumns, "2", "2024-01-02T12:34:56Z"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	entry, err := registry.Resolve(context.Background(), "users")
	require.NoError(t, err)

	assert.Equal(t, "users", entry.Name)
	assert.Equal(t, "sheet-1", entry.SpreadsheetID)
	assert.Equal(t, users, entry.Columns)
	assert.Equal(t, 2, entry.NumRows)
	assert.Equal(t, time.Date(2024, time.January, 2, 12, 34, 56, 0, time.UTC), entry.LastModified.UTC())
}

func TestRegistryResolveUnknownTable(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake)

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	_, err := registry.Resolve(context.Background(), "users")

	assert.ErrorIs(t, err, sheetsdb.ErrNotFound)
}

func TestRegistryRequiresSetup(t *testing.T) {
	fake := sheetsdbtest.New()

	registry := sheetsdb.NewRegistry(fake, "", zap.NewNop())

	_, err := registry.Resolve(context.Background(), "users")
	assert.ErrorIs(t, err, sheetsdb.ErrSetupRequired)

	_, err = registry.List(context.Background())
	assert.ErrorIs(t, err, sheetsdb.ErrSetupRequired)
}

func TestRegistryRegister(t *testing.T) {
	fake := sheetsdbtest.New()
	fake.Add("meta", sheetsdb.MetaTitle)
	fake.Add("sheet-1", "sheetsdb/users")

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	entry, err := registry.Register(context.Background(), "users", "sheet-1", users)
	require.NoError(t, err)

	assert.Equal(t, "users", entry.Name)
	assert.Equal(t, "sheet-1", entry.SpreadsheetID)

	// header row written to the empty backing sheet
	require.NotEmpty(t, fake.Sheets["sheet-1"].Rows)
	assert.Equal(t, []any{"name", "age"}, fake.Sheets["sheet-1"].Rows[0])

	// meta sheet has its header plus the new entry
	require.Len(t, fake.Sheets["meta"].Rows, 2)
	assert.Equal(t, []any{"name", "spreadsheet_id", "columns", "num_rows", "last_modified"}, fake.Sheets["meta"].Rows[0])
	assert.Equal(t, "users", fake.Sheets["meta"].Rows[1][0])
	assert.Equal(t, "sheet-1", fake.Sheets["meta"].Rows[1][1])

	resolved, err := registry.Resolve(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, users, resolved.Columns)
}

func TestRegistryRegisterKeepsExistingHeader(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake)
	fake.Add("sheet-1", "sheetsdb/users",
		[]any{"name", "age"},
		[]any{"Ann", "30"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	_, err := registry.Register(context.Background(), "users", "sheet-1", users)
	require.NoError(t, err)

	// pre-existing data untouched
	require.Len(t, fake.Sheets["sheet-1"].Rows, 2)
	assert.Equal(t, []any{"Ann", "30"}, fake.Sheets["sheet-1"].Rows[1])
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake, []any{"users", "sheet-1", usersColumns, "0", "2024-01-02T12:34:56Z"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	_, err := registry.Register(context.Background(), "users", "sheet-2", users)

	assert.ErrorIs(t, err, sheetsdb.ErrConflict)
}

func TestRegistryRegisterInvalidSchema(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake)

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	_, err := registry.Register(context.Background(), "users", "sheet-1", sheetsdb.Schema{})
	assert.Error(t, err)

	_, err = registry.Register(context.Background(), "", "sheet-1", users)
	assert.Error(t, err)
}

func TestRegistryList(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake,
		[]any{"users", "sheet-1", usersColumns, "2", "2024-01-02T12:34:56Z"},
		[]any{"orders", "sheet-2", `[{"name":"sku","type":"string"}]`, "0", "2024-01-02T12:34:56Z"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	entries, err := registry.List(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "users", entries[0].Name)
	assert.Equal(t, "orders", entries[1].Name)
}

func TestRegistryListSkipsMalformedRows(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake,
		[]any{"users", "sheet-1", usersColumns, "2", "2024-01-02T12:34:56Z"},
		[]any{"broken", "sheet-2", "not json", "0", "2024-01-02T12:34:56Z"},
		[]any{"orders", "sheet-3", `[{"name":"sku","type":"string"}]`, "0", "2024-01-02T12:34:56Z"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	entries, err := registry.List(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "users", entries[0].Name)
	assert.Equal(t, "orders", entries[1].Name)
}

func TestRegistryUpdateStats(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake,
		[]any{"users", "sheet-1", usersColumns, "2", "2024-01-02T12:34:56Z"},
		[]any{"orders", "sheet-2", `[{"name":"sku","type":"string"}]`, "0", "2024-01-02T12:34:56Z"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	at := time.Date(2024, time.March, 4, 5, 6, 7, 0, time.UTC)

	err := registry.UpdateStats(context.Background(), "orders", 17, at)
	require.NoError(t, err)

	entry, err := registry.Resolve(context.Background(), "orders")
	require.NoError(t, err)

	assert.Equal(t, 17, entry.NumRows)
	assert.Equal(t, at, entry.LastModified.UTC())

	// other entries untouched
	entry, err = registry.Resolve(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.NumRows)
}

func TestRegistryUpdateStatsUnknownTable(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake)

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	err := registry.UpdateStats(context.Background(), "users", 1, time.Now())

	assert.ErrorIs(t, err, sheetsdb.ErrNotFound)
}

func TestRegistryRefreshStats(t *testing.T) {
	fake := sheetsdbtest.New()
	metaSheet(fake,
		[]any{"users", "sheet-1", usersColumns, "0", "2024-01-02T12:34:56Z"})
	fake.Add("sheet-1", "sheetsdb/users",
		[]any{"name", "age"},
		[]any{"Ann", "30"},
		[]any{"Bob", "42"})

	registry := sheetsdb.NewRegistry(fake, "meta", zap.NewNop())

	entries, err := registry.RefreshStats(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].NumRows)

	// count written back to the meta sheet
	entry, err := registry.Resolve(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.NumRows)
}
