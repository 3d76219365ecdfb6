package sheetsdb

// OAuth scopes required by the SDK. ScopeSpreadsheets (read/write) must be
// present in any configured scope list.
const (
	ScopeSpreadsheets         = "https://www.googleapis.com/auth/spreadsheets"
	ScopeSpreadsheetsReadOnly = "https://www.googleapis.com/auth/spreadsheets.readonly"
)

// Config is the process-wide configuration, passed explicitly at startup.
type Config struct {
	// Scopes are the OAuth scopes requested during authorisation.
	Scopes []string

	// App names the application for page titles and log fields.
	App string

	// SetupTemplate/IndexTemplate optionally point at template files that
	// override the built-in setup and table-listing pages.
	SetupTemplate string
	IndexTemplate string
}

func DefaultConfig() Config {
	return Config{
		Scopes: []string{ScopeSpreadsheets},
		App:    "sheetsdb",
	}
}
