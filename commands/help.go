package commands

import (
	"context"
	"flag"
	"fmt"
)

// Help lists the available commands, or displays the detailed help for a
// single command.
type Help struct {
	cli     []Command
	flagset *flag.FlagSet
}

func NewHelp(cli []Command) *Help {
	return &Help{
		cli: cli,
	}
}

func (cmd *Help) Name() string {
	return "help"
}

func (cmd *Help) Description() string {
	return "Displays the help information"
}

func (cmd *Help) Usage() string {
	return "[command]"
}

func (cmd *Help) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s help [command]\n", APP)
	fmt.Println()
}

func (cmd *Help) FlagSet() *flag.FlagSet {
	if cmd.flagset == nil {
		cmd.flagset = flag.NewFlagSet("help", flag.ExitOnError)
	}

	return cmd.flagset
}

func (cmd *Help) Execute(ctx context.Context, options *Options) error {
	args := cmd.FlagSet().Args()

	if len(args) > 0 {
		for _, c := range cmd.cli {
			if c.Name() == args[0] {
				c.Help()
				return nil
			}
		}

		if args[0] == cmd.Name() {
			cmd.Help()
			return nil
		}

		return fmt.Errorf("invalid command '%s'", args[0])
	}

	cmd.usage()

	return nil
}

func (cmd *Help) usage() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] <command> [options]\n", APP)
	fmt.Println()
	fmt.Println("  Commands:")
	fmt.Println()

	for _, c := range cmd.cli {
		fmt.Printf("    %-13s %s\n", c.Name(), c.Description())
	}

	fmt.Printf("    %-13s %s\n", cmd.Name(), cmd.Description())

	fmt.Println()
	fmt.Printf("  Use '%s help <command>' for command specific information.\n", APP)
	fmt.Println()
}
