package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
)

var PutCmd = Put{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Put struct {
	command
	table string
	file  string
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Inserts the records from a TSV file into a table"
}

func (cmd *Put) Usage() string {
	return "--table <name> --file <file>"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] put [options] --table <name> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Inserts the records from a TSV file into a table. The TSV header names the")
	fmt.Println("  columns; columns missing from the file are left empty")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s put --table users --file "users.tsv"`+"\n", APP)
	fmt.Println()
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.table, "table", cmd.table, "Table name")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file")

	return flagset
}

func (cmd *Put) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.table) == "" {
		return fmt.Errorf("--table is a required option")
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	sdk, err := cmd.sdk(ctx, settings)
	if err != nil {
		return err
	}

	table, err := sdk.Table(ctx, cmd.table)
	if err != nil {
		return err
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	records, err := tsvToRecords(f, table.Schema())
	if err != nil {
		return fmt.Errorf("invalid TSV file (%v)", err)
	}

	for i, record := range records {
		if _, err := table.Insert(ctx, record); err != nil {
			return fmt.Errorf("inserted %d of %d record(s) (%v)", i, len(records), err)
		}
	}

	infof("inserted %d record(s) from %s into table %s", len(records), cmd.file, cmd.table)

	return nil
}
