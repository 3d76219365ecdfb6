package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sheetsdb/sheetsdb"
)

var CreateTableCmd = CreateTable{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type CreateTable struct {
	command
	name        string
	columns     string
	spreadsheet string
}

func (cmd *CreateTable) Name() string {
	return "create-table"
}

func (cmd *CreateTable) Description() string {
	return "Creates and registers a new table"
}

func (cmd *CreateTable) Usage() string {
	return "--name <table> --columns <name:type,...> [--spreadsheet <ID>]"
}

func (cmd *CreateTable) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] create-table [options] --name <table> --columns <columns>\n", APP)
	fmt.Println()
	fmt.Println("  Creates a backing spreadsheet for a new table (or adopts an existing one with")
	fmt.Println("  --spreadsheet), writes the header row and registers the table in the meta")
	fmt.Println("  spreadsheet. Column types are string, number, datetime and json")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s create-table --name users --columns "name:string,age:number"`+"\n", APP)
	fmt.Println()
}

func (cmd *CreateTable) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("create-table")

	flagset.StringVar(&cmd.name, "name", cmd.name, "Table name")
	flagset.StringVar(&cmd.columns, "columns", cmd.columns, "Column definitions e.g. 'name:string,age:number'")
	flagset.StringVar(&cmd.spreadsheet, "spreadsheet", cmd.spreadsheet, "ID of an existing spreadsheet to use as the backing sheet")

	return flagset
}

func (cmd *CreateTable) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.name) == "" {
		return fmt.Errorf("--name is a required option")
	}

	if strings.TrimSpace(cmd.columns) == "" {
		return fmt.Errorf("--columns is a required option")
	}

	schema, err := parseColumns(cmd.columns)
	if err != nil {
		return err
	}

	sdk, err := cmd.sdk(ctx, settings)
	if err != nil {
		return err
	}

	var entry sheetsdb.MetaEntry
	if spreadsheet := strings.TrimSpace(cmd.spreadsheet); spreadsheet != "" {
		entry, err = sdk.Register(ctx, cmd.name, spreadsheet, schema)
	} else {
		entry, err = sdk.CreateTable(ctx, cmd.name, schema)
	}

	if err != nil {
		return err
	}

	infof("created table %s backed by spreadsheet %s", entry.Name, entry.URL())

	return nil
}
