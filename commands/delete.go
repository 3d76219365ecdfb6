package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

var DeleteCmd = Delete{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Delete struct {
	command
	table string
	where multiflag
	force bool
}

func (cmd *Delete) Name() string {
	return "delete"
}

func (cmd *Delete) Description() string {
	return "Deletes the rows matching a set of conditions"
}

func (cmd *Delete) Usage() string {
	return "--table <name> --where <condition>"
}

func (cmd *Delete) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] delete [options] --table <name> --where <condition>\n", APP)
	fmt.Println()
	fmt.Println("  Deletes every row matching the --where conditions. Deleting without any")
	fmt.Println("  conditions deletes ALL rows and requires --force")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s delete --table users --where "name=Ann"`+"\n", APP)
	fmt.Println()
}

func (cmd *Delete) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("delete")

	flagset.StringVar(&cmd.table, "table", cmd.table, "Table name")
	flagset.Var(&cmd.where, "where", "Condition e.g. 'name=Ann' or 'age>=30'. May be repeated")
	flagset.BoolVar(&cmd.force, "force", cmd.force, "Allows a delete without any --where conditions")

	return flagset
}

func (cmd *Delete) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.table) == "" {
		return fmt.Errorf("--table is a required option")
	}

	if len(cmd.where) == 0 && !cmd.force {
		return fmt.Errorf("delete without --where would delete ALL rows - use --force if that is intended")
	}

	where, err := parseWhere(cmd.where)
	if err != nil {
		return err
	}

	sdk, err := cmd.sdk(ctx, settings)
	if err != nil {
		return err
	}

	deleted, err := sdk.Delete(ctx, cmd.table, where...)
	if err != nil {
		return err
	}

	infof("deleted %d row(s) from table %s", deleted, cmd.table)

	return nil
}
