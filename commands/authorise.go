package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Authorise struct {
	command
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises sheetsdb to access the Google Sheets API"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options]\n", APP)
	fmt.Println()
	fmt.Println("  Runs the OAuth consent flow and caches the access token for subsequent commands")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s authorise --credentials "credentials.json"`+"\n", APP)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	return cmd.flagset("authorise")
}

func (cmd *Authorise) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	config, err := oauthConfig(cmd.credentials, settings.Config().Scopes)
	if err != nil {
		return fmt.Errorf("authorisation error (%v)", err)
	}

	token, err := tokenFromWeb(ctx, config)
	if err != nil {
		return fmt.Errorf("authorisation error (%v)", err)
	}

	if err := saveToken(cmd.tokensfile(), token); err != nil {
		return fmt.Errorf("unable to cache OAuth token (%v)", err)
	}

	infof("authorised - token cached to %s", cmd.tokensfile())

	return nil
}
