package commands

import (
	"context"
	"flag"
	"fmt"
)

const VERSION = "v0.1.0"

var VersionCmd = Version{}

type Version struct {
}

func (cmd *Version) Name() string {
	return "version"
}

func (cmd *Version) Description() string {
	return "Displays the current version"
}

func (cmd *Version) Usage() string {
	return ""
}

func (cmd *Version) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s version\n", APP)
	fmt.Println()
	fmt.Println("  Displays the current version")
	fmt.Println()
}

func (cmd *Version) FlagSet() *flag.FlagSet {
	return flag.NewFlagSet("version", flag.ExitOnError)
}

func (cmd *Version) Execute(ctx context.Context, options *Options) error {
	fmt.Printf("%s %s\n", APP, VERSION)

	return nil
}
