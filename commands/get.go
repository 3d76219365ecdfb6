package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var GetCmd = Get{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Get struct {
	command
	table string
	where multiflag
	file  string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the rows matching a set of conditions and stores them to a TSV file"
}

func (cmd *Get) Usage() string {
	return "--table <name> [--where <condition>] [--file <file>]"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --table <name> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the rows of a table matching the --where conditions to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug get --table users --where "name=Ann" --file "users.tsv"`+"\n", APP)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("get")

	flagset.StringVar(&cmd.table, "table", cmd.table, "Table name")
	flagset.Var(&cmd.where, "where", "Condition e.g. 'name=Ann' or 'age>=30'. May be repeated")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<table> <yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.table) == "" {
		return fmt.Errorf("--table is a required option")
	}

	where, err := parseWhere(cmd.where)
	if err != nil {
		return err
	}

	file := cmd.file
	if file == "" {
		file = fmt.Sprintf("%s %s.tsv", cmd.table, time.Now().Format("2006-01-02T150405"))
	}

	sdk, err := cmd.sdk(ctx, settings)
	if err != nil {
		return err
	}

	table, err := sdk.Table(ctx, cmd.table)
	if err != nil {
		return err
	}

	rows, err := table.Select(ctx, where...)
	if err != nil {
		return err
	}

	defer rows.Close()

	tmp, err := os.CreateTemp(os.TempDir(), "sheetsdb")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	count, err := tableToTSV(tmp, table.Schema(), rows)
	if err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	if skipped := rows.Skipped(); skipped > 0 {
		warnf("skipped %d malformed row(s) in table %s", skipped, cmd.table)
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), file); err != nil {
		return err
	}

	infof("retrieved %d row(s) from table %s to file %s", count, cmd.table, file)

	return nil
}
