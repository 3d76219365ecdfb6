package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sheetsdb/sheetsdb"
)

var SetupCmd = Setup{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Setup struct {
	command
	spreadsheet string
}

func (cmd *Setup) Name() string {
	return "setup"
}

func (cmd *Setup) Description() string {
	return "Creates (or adopts) the meta spreadsheet and stores its ID"
}

func (cmd *Setup) Usage() string {
	return "[--spreadsheet <ID>]"
}

func (cmd *Setup) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] setup [options]\n", APP)
	fmt.Println()
	fmt.Printf("  Creates a new meta spreadsheet titled '%s' (or verifies an existing one) and\n", sheetsdb.MetaTitle)
	fmt.Println("  stores its ID in the workdir for subsequent commands")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s setup\n", APP)
	fmt.Printf("    %s setup --spreadsheet 1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms\n", APP)
	fmt.Println()
}

func (cmd *Setup) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("setup")

	flagset.StringVar(&cmd.spreadsheet, "spreadsheet", cmd.spreadsheet, "ID of an existing meta spreadsheet to adopt. Omit to create a new one")

	return flagset
}

func (cmd *Setup) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	client, err := cmd.authorize(ctx, settings)
	if err != nil {
		return fmt.Errorf("authentication/authorization error (%v)", err)
	}

	api, err := sheetsdb.NewGoogleSheetsClient(ctx, client)
	if err != nil {
		return err
	}

	metaID := strings.TrimSpace(cmd.spreadsheet)

	if metaID == "" {
		metaID, err = sheetsdb.CreateMetaSpreadsheet(ctx, api)
		if err != nil {
			return fmt.Errorf("unable to create meta spreadsheet (%v)", err)
		}

		infof("created meta spreadsheet %s", metaID)
	} else {
		info, err := api.GetSpreadsheet(ctx, metaID)
		if err != nil {
			return fmt.Errorf("unable to fetch meta spreadsheet %s (%v)", metaID, err)
		}

		if info.Title != sheetsdb.MetaTitle {
			return fmt.Errorf("spreadsheet %s title '%s' does not match required title '%s'", metaID, info.Title, sheetsdb.MetaTitle)
		}
	}

	if err := saveMetaID(cmd.metafile(), metaID); err != nil {
		return err
	}

	infof("meta spreadsheet ID stored in %s", cmd.metafile())
	infof("meta spreadsheet: %s", sheetsdb.SpreadsheetURL(metaID))

	return nil
}
