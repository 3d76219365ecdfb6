package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sheetsdb/sheetsdb"
)

const APP = "sheetsdb"

var (
	DEFAULT_WORKDIR     = workdir()
	DEFAULT_CREDENTIALS = filepath.Join(workdir(), "credentials.json")
)

// Options are the global command line options, shared by all commands.
type Options struct {
	Debug  bool
	Config string
}

// Command is a CLI subcommand.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Help()
	FlagSet() *flag.FlagSet
	Execute(ctx context.Context, options *Options) error
}

// Parse matches the first non-flag argument against the command list and
// parses the remaining arguments with the command's flagset.
func Parse(cli []Command, args []string) (Command, error) {
	if len(args) == 0 {
		return nil, nil
	}

	for _, cmd := range cli {
		if cmd.Name() == args[0] {
			flagset := cmd.FlagSet()
			if flagset == nil {
				panic(fmt.Sprintf("command '%s' has no flagset", cmd.Name()))
			}

			return cmd, flagset.Parse(args[1:])
		}
	}

	return nil, fmt.Errorf("unrecognised command '%s'", args[0])
}

// command holds the options common to all commands that talk to the
// spreadsheet API.
type command struct {
	workdir     string
	credentials string
	tokens      string
	meta        string
	debug       bool
}

func (c *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&c.workdir, "workdir", c.workdir, "Directory for working files (tokens, meta spreadsheet ID, etc)")
	flagset.StringVar(&c.credentials, "credentials", c.credentials, "Path for the 'credentials.json' file")
	flagset.StringVar(&c.tokens, "tokens", c.tokens, "Path for the cached OAuth tokens file. Defaults to '<workdir>/tokens.json'")
	flagset.StringVar(&c.meta, "meta", c.meta, "Meta spreadsheet ID. Defaults to the ID stored by 'setup'")

	return flagset
}

// sdk authorises against the Sheets API and builds an SDK bound to the
// configured meta spreadsheet.
func (c *command) sdk(ctx context.Context, settings *Settings) (*sheetsdb.SDK, error) {
	metaID, err := c.metaSpreadsheetID(settings)
	if err != nil {
		return nil, err
	}

	client, err := c.authorize(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("authentication/authorization error (%v)", err)
	}

	debugf("using meta spreadsheet %s", metaID)

	return sheetsdb.NewService(ctx, client, metaID, sheetsdb.WithConfig(settings.Config()), sheetsdb.WithLogger(logger()))
}

// metaSpreadsheetID resolves the meta spreadsheet ID from (in order) the
// --meta flag, the settings file and the ID persisted by 'setup'. A missing
// ID is not an error here - the SDK surfaces it as setup-required.
func (c *command) metaSpreadsheetID(settings *Settings) (string, error) {
	if v := strings.TrimSpace(c.meta); v != "" {
		return v, nil
	}

	if v := strings.TrimSpace(settings.MetaSpreadsheet); v != "" {
		return v, nil
	}

	return loadMetaID(c.metafile())
}

func (c *command) metafile() string {
	return filepath.Join(c.workdir, "meta.json")
}

func (c *command) tokensfile() string {
	if strings.TrimSpace(c.tokens) != "" {
		return c.tokens
	}

	return filepath.Join(c.workdir, "tokens.json")
}

func helpOptions(flagset *flag.FlagSet) {
	fmt.Println("  Options:")
	fmt.Println()

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})
}

func workdir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".sheetsdb")
	}

	return ".sheetsdb"
}
