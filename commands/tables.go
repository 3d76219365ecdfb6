package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sheetsdb/sheetsdb"
)

var TablesCmd = Tables{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Tables struct {
	command
	refresh bool
}

func (cmd *Tables) Name() string {
	return "tables"
}

func (cmd *Tables) Description() string {
	return "Lists the tables in the registry"
}

func (cmd *Tables) Usage() string {
	return "[--refresh]"
}

func (cmd *Tables) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] tables [options]\n", APP)
	fmt.Println()
	fmt.Println("  Lists the registered tables with their cached row counts and backing spreadsheets")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s tables --refresh\n", APP)
	fmt.Println()
}

func (cmd *Tables) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("tables")

	flagset.BoolVar(&cmd.refresh, "refresh", cmd.refresh, "Recounts the rows of every table and updates the cached statistics")

	return flagset
}

func (cmd *Tables) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	sdk, err := cmd.sdk(ctx, settings)
	if err != nil {
		return err
	}

	var entries []sheetsdb.MetaEntry
	if cmd.refresh {
		entries, err = sdk.Registry().RefreshStats(ctx)
	} else {
		entries, err = sdk.Tables(ctx)
	}

	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)

	fmt.Fprintln(w, "TABLE\tROWS\tLAST MODIFIED\tSPREADSHEET")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			entry.Name,
			entry.NumRows,
			entry.LastModified.Format("2006-01-02 15:04:05"),
			entry.URL())
	}

	return w.Flush()
}
