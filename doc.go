/*
Package sheetsdb exposes Google Sheets as a relational-style datastore.

A single well-known "meta" spreadsheet acts as the routing table: one row per
logical table, mapping the table name to the spreadsheet holding its data
plus cached bookkeeping (column definitions, row count, last-modified). Each
table spreadsheet stores its schema as the header row and its records as the
rows below it.

Application code works with the SDK facade, which composes the meta registry
and the table accessor:

	sdk, err := sheetsdb.NewService(ctx, client, metaSpreadsheetID)
	...
	rows, err := sdk.Select(ctx, "users", sheetsdb.Where{Column: "name", Op: sheetsdb.Eq, Value: "Ann"})

The httpd subpackage integrates the SDK with a web application (per-request
SDK injection and the first-time setup pages), and cmd/sheetsdb is a command
line front end:

  - authorise, to authorise sheetsdb to access the Google Sheets API
  - setup, to create or confirm the meta spreadsheet
  - create-table, to create and register a new table
  - tables, to list the table registry
  - get and put, to move table data in and out as TSV files
  - update and delete, to mutate matching rows
  - serve, to run the web integration shim
*/
package sheetsdb
