package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sheetsdb/sheetsdb/commands"
)

var cli = []commands.Command{
	&commands.AuthoriseCmd,
	&commands.SetupCmd,
	&commands.CreateTableCmd,
	&commands.TablesCmd,
	&commands.GetCmd,
	&commands.PutCmd,
	&commands.UpdateCmd,
	&commands.DeleteCmd,
	&commands.ServeCmd,
	&commands.VersionCmd,
}

var options = commands.Options{
	Debug: false,
}

func main() {
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.StringVar(&options.Config, "config", options.Config, "Path for the configuration file")
	flag.Parse()

	help := commands.NewHelp(cli)

	cmd, err := commands.Parse(append(cli, help), flag.Args())
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cmd == nil {
		help.Execute(ctx, &options)
		os.Exit(1)
	}

	commands.SetDebug(options.Debug)

	if err := cmd.Execute(ctx, &options); err != nil {
		fmt.Printf("\nERROR: %v\n\n", err)
		os.Exit(1)
	}
}
