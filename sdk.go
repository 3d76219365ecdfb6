package sheetsdb

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// SDK is the facade application code works with. It is a stateless
// composition of the meta registry and the table accessor, bound to one
// authenticated identity's API client, and is safe for concurrent use.
//
// Every operation fails with ErrSetupRequired - not a lower-level network
// error - while no meta spreadsheet has been configured, so web layers can
// redirect to setup instead of rendering a stack trace.
type SDK struct {
	api      API
	registry *Registry
	metaID   string
	cfg      Config
	log      *zap.Logger
}

type Option func(*SDK)

func WithLogger(log *zap.Logger) Option {
	return func(s *SDK) {
		s.log = log
	}
}

func WithConfig(cfg Config) Option {
	return func(s *SDK) {
		s.cfg = cfg
	}
}

func New(api API, metaSpreadsheetID string, opts ...Option) *SDK {
	sdk := SDK{
		api:    api,
		metaID: metaSpreadsheetID,
		cfg:    DefaultConfig(),
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&sdk)
	}

	sdk.registry = NewRegistry(api, metaSpreadsheetID, sdk.log)

	return &sdk
}

// NewService builds an SDK over the Google Sheets backend from an authorized
// HTTP client.
func NewService(ctx context.Context, client *http.Client, metaSpreadsheetID string, opts ...Option) (*SDK, error) {
	api, err := NewGoogleSheetsClient(ctx, client)
	if err != nil {
		return nil, err
	}

	return New(api, metaSpreadsheetID, opts...), nil
}

func (s *SDK) MetaSpreadsheetID() string {
	return s.metaID
}

func (s *SDK) Registry() *Registry {
	return s.registry
}

func (s *SDK) configured() error {
	if s.metaID == "" {
		return ErrSetupRequired
	}

	return nil
}

// Verify checks that the configured meta spreadsheet exists and carries the
// expected title.
func (s *SDK) Verify(ctx context.Context) error {
	if err := s.configured(); err != nil {
		return err
	}

	info, err := s.api.GetSpreadsheet(ctx, s.metaID)
	if err != nil {
		return err
	}

	if info.Title != MetaTitle {
		return fmt.Errorf("meta spreadsheet %s title '%s' does not match required title '%s'", s.metaID, info.Title, MetaTitle)
	}

	return nil
}

// Table resolves a logical table through the registry and returns its
// accessor.
func (s *SDK) Table(ctx context.Context, name string) (*Table, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}

	entry, err := s.registry.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	return &Table{
		api:      s.api,
		registry: s.registry,
		name:     entry.Name,
		id:       entry.SpreadsheetID,
		schema:   entry.Columns,
		log:      s.log,
	}, nil
}

// Tables lists the registered tables.
func (s *SDK) Tables(ctx context.Context) ([]MetaEntry, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}

	return s.registry.List(ctx)
}

// Register adds an existing spreadsheet to the registry as a table.
func (s *SDK) Register(ctx context.Context, name, spreadsheetID string, schema Schema) (MetaEntry, error) {
	if err := s.configured(); err != nil {
		return MetaEntry{}, err
	}

	return s.registry.Register(ctx, name, spreadsheetID, schema)
}

// CreateTable creates a backing spreadsheet for a new table, writes its
// header row and registers it.
func (s *SDK) CreateTable(ctx context.Context, name string, schema Schema) (MetaEntry, error) {
	if err := s.configured(); err != nil {
		return MetaEntry{}, err
	}

	if err := schema.Validate(); err != nil {
		return MetaEntry{}, err
	}

	spreadsheetID, err := s.api.CreateSpreadsheet(ctx, fmt.Sprintf("sheetsdb/%s", name))
	if err != nil {
		return MetaEntry{}, err
	}

	return s.registry.Register(ctx, name, spreadsheetID, schema)
}

func (s *SDK) Select(ctx context.Context, table string, conds ...Where) (*Rows, error) {
	t, err := s.Table(ctx, table)
	if err != nil {
		return nil, err
	}

	return t.Select(ctx, conds...)
}

func (s *SDK) Insert(ctx context.Context, table string, record Record) (int, error) {
	t, err := s.Table(ctx, table)
	if err != nil {
		return 0, err
	}

	return t.Insert(ctx, record)
}

func (s *SDK) Update(ctx context.Context, table string, patch Record, conds ...Where) (int, error) {
	t, err := s.Table(ctx, table)
	if err != nil {
		return 0, err
	}

	return t.Update(ctx, patch, conds...)
}

func (s *SDK) Delete(ctx context.Context, table string, conds ...Where) (int, error) {
	t, err := s.Table(ctx, table)
	if err != nil {
		return 0, err
	}

	return t.Delete(ctx, conds...)
}

// CreateMetaSpreadsheet creates a fresh meta spreadsheet with its header row
// and returns the new spreadsheet ID. Used by first-time setup flows before
// an SDK can be constructed.
func CreateMetaSpreadsheet(ctx context.Context, api API) (string, error) {
	spreadsheetID, err := api.CreateSpreadsheet(ctx, MetaTitle)
	if err != nil {
		return "", err
	}

	if err := api.UpdateRow(ctx, spreadsheetID, 0, metaHeader); err != nil {
		return "", err
	}

	return spreadsheetID, nil
}
