package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

var UpdateCmd = Update{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Update struct {
	command
	table string
	where multiflag
	set   multiflag
	force bool
}

func (cmd *Update) Name() string {
	return "update"
}

func (cmd *Update) Description() string {
	return "Updates the rows matching a set of conditions"
}

func (cmd *Update) Usage() string {
	return "--table <name> --where <condition> --set <assignment>"
}

func (cmd *Update) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] update [options] --table <name> --where <condition> --set <assignment>\n", APP)
	fmt.Println()
	fmt.Println("  Updates every row matching the --where conditions. Updating without any")
	fmt.Println("  conditions updates ALL rows and requires --force")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s update --table users --where "name=Ann" --set "age=31"`+"\n", APP)
	fmt.Println()
}

func (cmd *Update) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("update")

	flagset.StringVar(&cmd.table, "table", cmd.table, "Table name")
	flagset.Var(&cmd.where, "where", "Condition e.g. 'name=Ann' or 'age>=30'. May be repeated")
	flagset.Var(&cmd.set, "set", "Assignment e.g. 'age=31'. May be repeated")
	flagset.BoolVar(&cmd.force, "force", cmd.force, "Allows an update without any --where conditions")

	return flagset
}

func (cmd *Update) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.table) == "" {
		return fmt.Errorf("--table is a required option")
	}

	if len(cmd.set) == 0 {
		return fmt.Errorf("--set is a required option")
	}

	if len(cmd.where) == 0 && !cmd.force {
		return fmt.Errorf("update without --where would update ALL rows - use --force if that is intended")
	}

	where, err := parseWhere(cmd.where)
	if err != nil {
		return err
	}

	patch, err := parseSet(cmd.set)
	if err != nil {
		return err
	}

	sdk, err := cmd.sdk(ctx, settings)
	if err != nil {
		return err
	}

	updated, err := sdk.Update(ctx, cmd.table, patch, where...)
	if err != nil {
		return err
	}

	infof("updated %d row(s) in table %s", updated, cmd.table)

	return nil
}
