package sheetsdb_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetsdb/sheetsdb"
	"github.com/sheetsdb/sheetsdb/sheetsdbtest"
)

func usersTable(t *testing.T, fake *sheetsdbtest.Fake, rows ...[]any) *sheetsdb.Table {
	t.Helper()

	metaSheet(fake, []any{"users", "sheet-1", usersColumns, "0", "2024-01-02T12:34:56Z"})

	all := append([][]any{{"name", "age"}}, rows...)
	fake.Add("sheet-1", "sheetsdb/users", all...)

	sdk := sheetsdb.New(fake, "meta")

	table, err := sdk.Table(context.Background(), "users")
	require.NoError(t, err)

	return table
}

func TestRowsStreaming(t *testing.T) {
	fake := sheetsdbtest.New()
	table := usersTable(t, fake,
		[]any{"Ann", "30"},
		[]any{"Bob", "42"},
		[]any{"Chris", "30"})

	rows, err := table.Select(context.Background(), sheetsdb.Where{Column: "age", Op: sheetsdb.Eq, Value: 30})
	require.NoError(t, err)
	defer rows.Close()

	names := []string{}
	positions := []int{}
	for rows.Next() {
		names = append(names, rows.Record()["name"].(string))
		positions = append(positions, rows.Position())
	}

	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Ann", "Chris"}, names)
	assert.Equal(t, []int{0, 2}, positions)
}

func TestRowsNoConditionsMatchEverything(t *testing.T) {
	fake := sheetsdbtest.New()
	table := usersTable(t, fake,
		[]any{"Ann", "30"},
		[]any{"Bob", "42"})

	rows, err := table.Select(context.Background())
	require.NoError(t, err)

	records, err := rows.All()
	require.NoError(t, err)

	assert.Len(t, records, 2)
}

func TestRowsPagination(t *testing.T) {
	data := [][]any{}
	for i := 0; i < 450; i++ {
		data = append(data, []any{fmt.Sprintf("user-%d", i), fmt.Sprintf("%d", i)})
	}

	fake := sheetsdbtest.New()
	table := usersTable(t, fake, data...)

	rows, err := table.Select(context.Background(), sheetsdb.Where{Column: "age", Op: sheetsdb.Ge, Value: 440})
	require.NoError(t, err)

	records, err := rows.All()
	require.NoError(t, err)

	require.Len(t, records, 10)
	assert.Equal(t, "user-440", records[0]["name"])
	assert.Equal(t, "user-449", records[9]["name"])
}

func TestRowsPositionAcrossPages(t *testing.T) {
	data := [][]any{}
	for i := 0; i < 250; i++ {
		data = append(data, []any{fmt.Sprintf("user-%d", i), fmt.Sprintf("%d", i)})
	}

	fake := sheetsdbtest.New()
	table := usersTable(t, fake, data...)

	rows, err := table.Select(context.Background(), sheetsdb.Where{Column: "name", Op: sheetsdb.Eq, Value: "user-249"})
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	assert.Equal(t, 249, rows.Position())
	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}

func TestRowsSkipMalformedRows(t *testing.T) {
	fake := sheetsdbtest.New()
	table := usersTable(t, fake,
		[]any{"Ann", "30"},
		[]any{"Bob", "42", "extra cell"},
		[]any{"Chris", "not a number"},
		[]any{"Dora", "19"})

	rows, err := table.Select(context.Background())
	require.NoError(t, err)

	records, err := rows.All()
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Ann", records[0]["name"])
	assert.Equal(t, "Dora", records[1]["name"])
	assert.Equal(t, 2, rows.Skipped())
}

func TestRowsRejectsInvalidConditions(t *testing.T) {
	fake := sheetsdbtest.New()
	table := usersTable(t, fake)

	_, err := table.Select(context.Background(), sheetsdb.Where{Column: "name", Op: sheetsdb.Lt, Value: "Ann"})
	assert.Error(t, err)

	_, err = table.Select(context.Background(), sheetsdb.Where{Column: "surname", Op: sheetsdb.Eq, Value: "Smith"})
	assert.Error(t, err)
}

func TestRowsSurfaceReadErrors(t *testing.T) {
	fake := sheetsdbtest.New()
	table := usersTable(t, fake, []any{"Ann", "30"})

	fake.Err = fmt.Errorf("quota exceeded")

	rows, err := table.Select(context.Background())
	require.NoError(t, err)

	assert.False(t, rows.Next())
	assert.Error(t, rows.Err())
}

func TestRowsClose(t *testing.T) {
	fake := sheetsdbtest.New()
	table := usersTable(t, fake,
		[]any{"Ann", "30"},
		[]any{"Bob", "42"})

	rows, err := table.Select(context.Background())
	require.NoError(t, err)

	require.True(t, rows.Next())
	rows.Close()

	assert.False(t, rows.Next())
	assert.NoError(t, rows.Err())
}
