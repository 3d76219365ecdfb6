package commands

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sheetsdb/sheetsdb/httpd"
)

var ServeCmd = Serve{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
	},
}

type Serve struct {
	command
	listen string
}

func (cmd *Serve) Name() string {
	return "serve"
}

func (cmd *Serve) Description() string {
	return "Runs the web integration shim"
}

func (cmd *Serve) Usage() string {
	return "[--listen <address>]"
}

func (cmd *Serve) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] serve [options]\n", APP)
	fmt.Println()
	fmt.Println("  Serves the setup and table registry pages for the locally authorised identity")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf("    %s serve --listen localhost:8080\n", APP)
	fmt.Println()
}

func (cmd *Serve) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("serve")

	flagset.StringVar(&cmd.listen, "listen", cmd.listen, "Address to listen on. Defaults to the 'listen' setting (localhost:8080)")

	return flagset
}

func (cmd *Serve) Execute(ctx context.Context, options *Options) error {
	cmd.debug = options.Debug

	settings, err := loadSettings(options.Config)
	if err != nil {
		return err
	}

	listen := strings.TrimSpace(cmd.listen)
	if listen == "" {
		listen = settings.Listen
	}

	client, err := cmd.authorize(ctx, settings)
	if err != nil {
		return fmt.Errorf("authentication/authorization error (%v)", err)
	}

	// Single-user mode: every request runs as the locally authorised
	// identity. Multi-user deployments supply their own Authenticator.
	auth := localAuthenticator{
		identity: httpd.Identity{
			Email:  "local",
			Client: client,
		},
	}

	store := httpd.NewFileStore(filepath.Join(cmd.workdir, "httpd.json"))

	// Adopt the meta spreadsheet configured by 'setup', if any.
	if metaID, err := cmd.metaSpreadsheetID(settings); err == nil && metaID != "" {
		if current, _ := store.Get(auth.identity.Email); current == "" {
			if err := store.Put(auth.identity.Email, metaID); err != nil {
				warnf("could not store meta spreadsheet ID (%v)", err)
			}
		}
	}

	server := httpd.NewServer(&auth, store, settings.Config(), httpd.WithLogger(logger()))

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	infof("listening on %s", listen)

	if err := server.ListenAndServe(ctx, listen); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

type localAuthenticator struct {
	identity httpd.Identity
}

func (a *localAuthenticator) Authenticate(r *http.Request) (*httpd.Identity, error) {
	return &a.identity, nil
}
