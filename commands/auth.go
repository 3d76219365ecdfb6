package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// authorize builds an authorized HTTP client for the Sheets API, reusing the
// cached token when one exists and falling back to the interactive consent
// flow when it doesn't.
func (c *command) authorize(ctx context.Context, settings *Settings) (*http.Client, error) {
	config, err := oauthConfig(c.credentials, settings.Config().Scopes)
	if err != nil {
		return nil, err
	}

	tokens := c.tokensfile()

	token, err := tokenFromFile(tokens)
	if err != nil {
		token, err = tokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}

		if err := saveToken(tokens, token); err != nil {
			warnf("could not cache OAuth token (%v)", err)
		} else {
			infof("saved OAuth token to %s", tokens)
		}
	}

	return config.Client(ctx, token), nil
}

func oauthConfig(credentials string, scopes []string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, err
	}

	return config, nil
}

// tokenFromWeb runs the out-of-band consent flow: the user opens the
// authorisation URL in a browser and pastes the code back.
func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("unable to read authorization code (%v)", err)
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web (%v)", err)
	}

	return token, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0770); err != nil {
		return err
	}

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
