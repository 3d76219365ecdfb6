// Package httpd is the web integration shim for sheetsdb: it constructs an
// SDK from the authenticated request and injects it into handlers, and
// serves the first-time setup and table-listing pages.
package httpd

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sheetsdb/sheetsdb"
)

// Identity is an authenticated user plus the authorized HTTP client used for
// their spreadsheet API calls. Both are produced by an upstream collaborator.
type Identity struct {
	Email  string
	Client *http.Client
}

// Authenticator resolves the identity behind a request. It is the upstream
// authentication boundary - this package never performs logins or token
// refreshes itself.
type Authenticator interface {
	Authenticate(r *http.Request) (*Identity, error)
}

// APIFactory builds a spreadsheet backend for an identity's client. The
// default uses the Google Sheets service; tests substitute a fake.
type APIFactory func(ctx context.Context, client *http.Client) (sheetsdb.API, error)

// Server wires the SDK into a web application.
type Server struct {
	auth    Authenticator
	store   MetaStore
	api     APIFactory
	cfg     sheetsdb.Config
	log     *zap.Logger
	timeout time.Duration
}

type Option func(*Server)

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithAPIFactory overrides how the spreadsheet backend is constructed.
func WithAPIFactory(factory APIFactory) Option {
	return func(s *Server) {
		s.api = factory
	}
}

// WithTimeout bounds each SDK request. Expired deadlines surface as
// sheetsdb.ErrTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.timeout = timeout
	}
}

func NewServer(auth Authenticator, store MetaStore, cfg sheetsdb.Config, opts ...Option) *Server {
	srv := Server{
		auth:  auth,
		store: store,
		cfg:   cfg,
		log:   zap.NewNop(),
		api: func(ctx context.Context, client *http.Client) (sheetsdb.API, error) {
			return sheetsdb.NewGoogleSheetsClient(ctx, client)
		},
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(&srv)
	}

	return &srv
}

// Routes returns the shim's handler: the table-listing page at /, the setup
// pages at /setup and the JSON listing at /api/tables.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.WithSDK(s.index))
	mux.HandleFunc("GET /setup", s.setupForm)
	mux.HandleFunc("POST /setup", s.setupSave)
	mux.HandleFunc("GET /api/tables", s.WithSDK(s.apiTables))

	return s.logged(mux)
}

// ListenAndServe runs the shim until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdown)
	}
}
