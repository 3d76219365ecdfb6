package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/sheetsdb/sheetsdb"
)

// Settings is the optional configuration file. Every field can also be set
// from the environment with a SHEETSDB_ prefix (e.g. SHEETSDB_CREDENTIALS),
// and the per-command flags override both.
type Settings struct {
	Credentials     string   `mapstructure:"credentials"`
	Workdir         string   `mapstructure:"workdir"`
	MetaSpreadsheet string   `mapstructure:"meta-spreadsheet"`
	Scopes          []string `mapstructure:"scopes"`
	Listen          string   `mapstructure:"listen"`
	SetupTemplate   string   `mapstructure:"setup-template"`
	IndexTemplate   string   `mapstructure:"index-template"`
}

// Config translates the settings into the SDK configuration object.
func (s *Settings) Config() sheetsdb.Config {
	cfg := sheetsdb.DefaultConfig()

	if len(s.Scopes) > 0 {
		cfg.Scopes = s.Scopes
	}

	cfg.SetupTemplate = s.SetupTemplate
	cfg.IndexTemplate = s.IndexTemplate

	return cfg
}

// loadSettings reads the configuration file (if any) and the environment.
func loadSettings(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("workdir", DEFAULT_WORKDIR)
	v.SetDefault("credentials", DEFAULT_CREDENTIALS)
	v.SetDefault("listen", "localhost:8080")
	v.SetDefault("scopes", []string{sheetsdb.ScopeSpreadsheets})

	v.SetEnvPrefix("SHEETSDB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not load configuration from %s (%v)", path, err)
		}
	} else {
		v.SetConfigName("sheetsdb")
		v.AddConfigPath(DEFAULT_WORKDIR)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	settings := Settings{}
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// loadMetaID reads the meta spreadsheet ID persisted by 'setup'. A missing
// file is not an error - it just means setup has not run yet.
func loadMetaID(file string) (string, error) {
	b, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	stored := struct {
		MetaSpreadsheetID string `json:"meta_spreadsheet_id"`
	}{}

	if err := json.Unmarshal(b, &stored); err != nil {
		return "", fmt.Errorf("invalid meta file %s (%v)", file, err)
	}

	return stored.MetaSpreadsheetID, nil
}

func saveMetaID(file, metaSpreadsheetID string) error {
	b, err := json.MarshalIndent(struct {
		MetaSpreadsheetID string `json:"meta_spreadsheet_id"`
	}{
		MetaSpreadsheetID: metaSpreadsheetID,
	}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "meta")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}
